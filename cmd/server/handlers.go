package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"astrocalc/internal/engine"
	"astrocalc/internal/formula"
	"astrocalc/internal/units"
)

type server struct {
	registry *units.Registry
	catalog  *formula.Catalog // pristine template, read-only after load
	sessions *sessionManager
}

type variableView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Prefix   string   `json:"prefix"`
	Mantissa string   `json:"mantissa"`
	Exponent string   `json:"exponent"`
	Value    string   `json:"value"`
	Unit     string   `json:"unit,omitempty"`
	Units    []string `json:"units,omitempty"`
}

type formulaView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Order       []string       `json:"order"`
	Variables   []variableView `json:"variables"`
}

type formulaListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type groupView struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Formulas []formulaListItem `json:"formulas"`
}

type fieldEditRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type unitChangeRequest struct {
	Unit string `json:"unit"`
}

// handleGroups lists the catalog, optionally filtered by a case-blind
// substring over formula names and descriptions.
func (s *server) handleGroups(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	groups := make([]groupView, 0, len(s.catalog.Order))
	for _, gid := range s.catalog.Order {
		g := s.catalog.Groups[gid]
		view := groupView{ID: g.ID, Name: g.Name, Formulas: make([]formulaListItem, 0, len(g.Order))}
		for _, fid := range g.Order {
			f := g.Formulas[fid]
			if query != "" &&
				!strings.Contains(strings.ToLower(f.Name), query) &&
				!strings.Contains(strings.ToLower(f.Description), query) {
				continue
			}
			view.Formulas = append(view.Formulas, formulaListItem{
				ID:          f.ID,
				Name:        f.Name,
				Description: f.Description,
			})
		}
		if query == "" || len(view.Formulas) > 0 {
			groups = append(groups, view)
		}
	}

	writeJSON(w, http.StatusOK, groups)
}

func (s *server) handleFormula(w http.ResponseWriter, r *http.Request) {
	s.withFormula(w, r, func(f *formula.Formula) error { return nil })
}

func (s *server) handleVariableInput(w http.ResponseWriter, r *http.Request) {
	var req fieldEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	variable := formula.ID(chi.URLParam(r, "variable"))
	s.withFormula(w, r, func(f *formula.Formula) error {
		return engine.Input(f, variable, engine.Field(req.Field), req.Value)
	})
}

func (s *server) handleVariableCommit(w http.ResponseWriter, r *http.Request) {
	variable := formula.ID(chi.URLParam(r, "variable"))
	s.withFormula(w, r, func(f *formula.Formula) error {
		return engine.Commit(f, variable)
	})
}

func (s *server) handleVariableFocus(w http.ResponseWriter, r *http.Request) {
	variable := formula.ID(chi.URLParam(r, "variable"))
	s.withFormula(w, r, func(f *formula.Formula) error {
		return f.Reorder(variable)
	})
}

func (s *server) handleVariableUnit(w http.ResponseWriter, r *http.Request) {
	var req unitChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	variable := formula.ID(chi.URLParam(r, "variable"))
	s.withFormula(w, r, func(f *formula.Formula) error {
		return engine.SetUnit(s.registry, f, variable, req.Unit)
	})
}

// withFormula resolves the request's formula inside the session's catalog
// copy, applies op to it, and renders the (possibly mutated) formula view.
func (s *server) withFormula(w http.ResponseWriter, r *http.Request, op func(f *formula.Formula) error) {
	groupID := chi.URLParam(r, "group")
	formulaID := chi.URLParam(r, "formula")

	var view formulaView
	err := s.sessions.do(sessionID(r), func(cat *formula.Catalog) error {
		f, err := cat.Formula(groupID, formulaID)
		if err != nil {
			return err
		}
		if err := op(f); err != nil {
			return err
		}
		view = s.formulaView(f)
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *server) formulaView(f *formula.Formula) formulaView {
	view := formulaView{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Order:       make([]string, 0, len(f.Order)),
		Variables:   make([]variableView, 0, len(f.Order)),
	}
	for _, id := range f.Order {
		view.Order = append(view.Order, string(id))
		v := f.Vars[id]
		view.Variables = append(view.Variables, variableView{
			ID:       string(v.ID),
			Name:     v.Name,
			Symbol:   v.Symbol,
			Prefix:   string(v.Prefix),
			Mantissa: formatNumber(v.Mantissa),
			Exponent: formatNumber(v.Exponent),
			Value:    formatNumber(v.Value),
			Unit:     v.Unit,
			Units:    s.unitChoices(v),
		})
	}
	return view
}

// unitChoices returns the selectable units for a variable's kind. Lookup
// failures fail closed: no options rather than a guessed unit.
func (s *server) unitChoices(v *formula.Variable) []string {
	if v.DefaultUnit == "" {
		return nil
	}
	kind, err := s.registry.KindOf(v.DefaultUnit)
	if err != nil {
		return nil
	}
	return s.registry.UnitsOfKind(kind)
}

// formatNumber renders values for JSON transport; non-finite values are
// not representable as JSON numbers, so everything travels as text.
func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, formula.ErrUnknownFormula), errors.Is(err, formula.ErrUnknownVariable):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, units.ErrUnitNotFound), errors.Is(err, engine.ErrUnknownField):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing useful left to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
