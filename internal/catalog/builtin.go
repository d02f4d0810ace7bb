// Package catalog supplies the static formula catalog: builtin formula
// definitions with one hand-written inverse per variable, the default unit
// tables, and a loader that binds catalog rows from the database back to
// their functions.
package catalog

import (
	"math"

	"astrocalc/internal/formula"
	"astrocalc/internal/units"
)

// Physical constants, SI.
const (
	gravitationalConstant = 6.67430e-11    // m^3 kg^-1 s^-2
	speedOfLight          = 2.99792458e8   // m/s
	wienConstant          = 2.897771955e-3 // m K
	solarMass             = 1.98892e30     // kg
	solarLuminosity       = 3.828e26       // W
	astronomicalUnit      = 1.495978707e11 // m
	lightYear             = 9.4607304725808e15
	parsec                = 3.0856775814913673e16
	julianYear            = 3.15576e7 // s
)

// VariableDef declares one variable of a builtin formula. Default is the
// initial value in default-unit terms; Derive maps sibling values (same
// terms) to this variable's value and must be pure, returning NaN outside
// its domain.
type VariableDef struct {
	ID      formula.ID
	Name    string
	Symbol  string
	Default float64
	Unit    string // default unit, empty for dimensionless
	Derive  formula.Func
}

// FormulaDef declares a builtin formula. Variable declaration order is the
// initial recalculation chain.
type FormulaDef struct {
	ID          string
	Name        string
	Description string
	Variables   []VariableDef
}

// GroupDef declares a formula group.
type GroupDef struct {
	ID       string
	Name     string
	Formulas []FormulaDef
}

// DefaultKinds returns the builtin unit tables. The first unit of each
// kind is its base unit.
func DefaultKinds() []units.Kind {
	return []units.Kind{
		{ID: "length", Units: []units.Unit{
			{Name: "m", Factor: 1},
			{Name: "nm", Factor: 1e-9},
			{Name: "km", Factor: 1000},
			{Name: "au", Factor: astronomicalUnit},
			{Name: "ly", Factor: lightYear},
			{Name: "pc", Factor: parsec},
		}},
		{ID: "mass", Units: []units.Unit{
			{Name: "kg", Factor: 1},
			{Name: "g", Factor: 1e-3},
			{Name: "t", Factor: 1e3},
			{Name: "Msun", Factor: solarMass},
		}},
		{ID: "time", Units: []units.Unit{
			{Name: "s", Factor: 1},
			{Name: "h", Factor: 3600},
			{Name: "d", Factor: 86400},
			{Name: "yr", Factor: julianYear},
		}},
		{ID: "force", Units: []units.Unit{
			{Name: "N", Factor: 1},
			{Name: "dyn", Factor: 1e-5},
		}},
		{ID: "temperature", Units: []units.Unit{
			{Name: "K", Factor: 1},
		}},
		{ID: "power", Units: []units.Unit{
			{Name: "W", Factor: 1},
			{Name: "Lsun", Factor: solarLuminosity},
		}},
	}
}

// Definitions returns the builtin formula groups. Formulas are not
// symbolically invertible in general, so every variable carries its own
// closed-form inverse over its siblings.
func Definitions() []GroupDef {
	return []GroupDef{
		{
			ID:   "mechanics",
			Name: "Mechanics & Gravitation",
			Formulas: []FormulaDef{
				newtonGravitation(),
				keplerThirdLaw(),
			},
		},
		{
			ID:   "astrophysics",
			Name: "Stellar Astrophysics",
			Formulas: []FormulaDef{
				distanceModulus(),
				massLuminosity(),
				wienDisplacement(),
				schwarzschildRadius(),
			},
		},
	}
}

func newtonGravitation() FormulaDef {
	return FormulaDef{
		ID:          "gravity",
		Name:        "Newtonian gravitation",
		Description: "Gravitational attraction between two point masses, F = G m1 m2 / r^2.",
		Variables: []VariableDef{
			{
				ID: "F", Name: "Force", Symbol: "F",
				Default: gravitationalConstant * 5.972e24 * 7.342e22 / (3.844e8 * 3.844e8),
				Unit:    "N",
				Derive: func(vals map[formula.ID]float64) float64 {
					return gravitationalConstant * vals["m1"] * vals["m2"] / vals["r"] / vals["r"]
				},
			},
			{
				ID: "r", Name: "Separation", Symbol: "r",
				Default: 3.844e8,
				Unit:    "m",
				Derive: func(vals map[formula.ID]float64) float64 {
					return math.Sqrt(gravitationalConstant * vals["m1"] * vals["m2"] / vals["F"])
				},
			},
			{
				ID: "m1", Name: "First mass", Symbol: "m1",
				Default: 5.972e24,
				Unit:    "kg",
				Derive: func(vals map[formula.ID]float64) float64 {
					return vals["F"] * vals["r"] * vals["r"] / (gravitationalConstant * vals["m2"])
				},
			},
			{
				ID: "m2", Name: "Second mass", Symbol: "m2",
				Default: 7.342e22,
				Unit:    "kg",
				Derive: func(vals map[formula.ID]float64) float64 {
					return vals["F"] * vals["r"] * vals["r"] / (gravitationalConstant * vals["m1"])
				},
			},
		},
	}
}

func keplerThirdLaw() FormulaDef {
	fourPiSq := 4 * math.Pi * math.Pi
	return FormulaDef{
		ID:          "kepler3",
		Name:        "Kepler's third law",
		Description: "Orbital period around a central mass, T^2 = 4 pi^2 a^3 / (G M).",
		Variables: []VariableDef{
			{
				ID: "T", Name: "Orbital period", Symbol: "T",
				Default: julianYear,
				Unit:    "s",
				Derive: func(vals map[formula.ID]float64) float64 {
					return 2 * math.Pi * math.Sqrt(math.Pow(vals["a"], 3)/(gravitationalConstant*vals["M"]))
				},
			},
			{
				ID: "a", Name: "Semi-major axis", Symbol: "a",
				Default: astronomicalUnit,
				Unit:    "m",
				Derive: func(vals map[formula.ID]float64) float64 {
					return math.Cbrt(gravitationalConstant * vals["M"] * vals["T"] * vals["T"] / fourPiSq)
				},
			},
			{
				ID: "M", Name: "Central mass", Symbol: "M",
				Default: solarMass,
				Unit:    "kg",
				Derive: func(vals map[formula.ID]float64) float64 {
					return fourPiSq * math.Pow(vals["a"], 3) / (gravitationalConstant * vals["T"] * vals["T"])
				},
			},
		},
	}
}

func distanceModulus() FormulaDef {
	return FormulaDef{
		ID:          "distmod",
		Name:        "Distance modulus",
		Description: "Relates apparent and absolute magnitude to distance, m - M = 5 log10(d / 10 pc).",
		Variables: []VariableDef{
			{
				ID: "d", Name: "Distance", Symbol: "d",
				Default: 1000,
				Unit:    "pc",
				Derive: func(vals map[formula.ID]float64) float64 {
					return math.Pow(10, (vals["m"]-vals["M"]+5)/5)
				},
			},
			{
				ID: "M", Name: "Absolute magnitude", Symbol: "M",
				Default: -5,
				Derive: func(vals map[formula.ID]float64) float64 {
					return vals["m"] - 5*math.Log10(vals["d"]) + 5
				},
			},
			{
				ID: "m", Name: "Apparent magnitude", Symbol: "m",
				Default: 5,
				Derive: func(vals map[formula.ID]float64) float64 {
					return vals["M"] + 5*math.Log10(vals["d"]) - 5
				},
			},
		},
	}
}

// Mass-luminosity segment boundaries in solar luminosities, matching the
// mass breakpoints 0.43, 2 and 55 Msun.
var (
	massLumLowCut  = 0.23 * math.Pow(0.43, 2.3)
	massLumMidCut  = math.Pow(2, 4)
	massLumHighCut = 1.4 * math.Pow(55, 3.5)
)

func massLuminosity() FormulaDef {
	return FormulaDef{
		ID:          "masslum",
		Name:        "Mass-luminosity relation",
		Description: "Piecewise main-sequence mass-luminosity relation in solar units.",
		Variables: []VariableDef{
			{
				ID: "mass", Name: "Stellar mass", Symbol: "M",
				Default: 1,
				Unit:    "Msun",
				Derive: func(vals map[formula.ID]float64) float64 {
					l := vals["lum"]
					switch {
					case l <= 0 || math.IsNaN(l):
						return math.NaN()
					case l < massLumLowCut:
						return math.Pow(l/0.23, 1/2.3)
					case l < massLumMidCut:
						return math.Pow(l, 0.25)
					case l < massLumHighCut:
						return math.Pow(l/1.4, 1/3.5)
					default:
						return l / 32000
					}
				},
			},
			{
				ID: "lum", Name: "Luminosity", Symbol: "L",
				Default: 1,
				Unit:    "Lsun",
				Derive: func(vals map[formula.ID]float64) float64 {
					m := vals["mass"]
					switch {
					case m <= 0 || math.IsNaN(m):
						return math.NaN()
					case m < 0.43:
						return 0.23 * math.Pow(m, 2.3)
					case m < 2:
						return math.Pow(m, 4)
					case m < 55:
						return 1.4 * math.Pow(m, 3.5)
					default:
						return 32000 * m
					}
				},
			},
		},
	}
}

func wienDisplacement() FormulaDef {
	return FormulaDef{
		ID:          "wien",
		Name:        "Wien's displacement law",
		Description: "Peak blackbody wavelength, lambda_max = b / T.",
		Variables: []VariableDef{
			{
				ID: "T", Name: "Temperature", Symbol: "T",
				Default: 5778,
				Unit:    "K",
				Derive: func(vals map[formula.ID]float64) float64 {
					return wienConstant / vals["lambda"]
				},
			},
			{
				ID: "lambda", Name: "Peak wavelength", Symbol: "λ",
				Default: wienConstant / 5778,
				Unit:    "m",
				Derive: func(vals map[formula.ID]float64) float64 {
					return wienConstant / vals["T"]
				},
			},
		},
	}
}

func schwarzschildRadius() FormulaDef {
	cSq := speedOfLight * speedOfLight
	return FormulaDef{
		ID:          "schwarzschild",
		Name:        "Schwarzschild radius",
		Description: "Event-horizon radius of a non-rotating mass, r_s = 2 G M / c^2.",
		Variables: []VariableDef{
			{
				ID: "M", Name: "Mass", Symbol: "M",
				Default: solarMass,
				Unit:    "kg",
				Derive: func(vals map[formula.ID]float64) float64 {
					return vals["r"] * cSq / (2 * gravitationalConstant)
				},
			},
			{
				ID: "r", Name: "Schwarzschild radius", Symbol: "r_s",
				Default: 2 * gravitationalConstant * solarMass / (speedOfLight * speedOfLight),
				Unit:    "m",
				Derive: func(vals map[formula.ID]float64) float64 {
					return 2 * gravitationalConstant * vals["M"] / cSq
				},
			},
		},
	}
}
