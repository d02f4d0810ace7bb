package main

import (
	"testing"

	"astrocalc/internal/formula"
)

func sessionTestManager() *sessionManager {
	template := &formula.Catalog{
		Order: []string{"g"},
		Groups: map[string]*formula.Group{
			"g": {
				ID:    "g",
				Name:  "Group",
				Order: []string{"f"},
				Formulas: map[string]*formula.Formula{
					"f": {
						ID:    "f",
						Order: []formula.ID{"x"},
						Vars: map[formula.ID]*formula.Variable{
							"x": {ID: "x", Value: 1, Mantissa: 1, UnitRatio: 1},
						},
					},
				},
			},
		},
	}
	return newSessionManager("test-secret", template)
}

func TestSessionValue_RoundTrip(t *testing.T) {
	m := sessionTestManager()

	value := m.createSessionValue("session-123")
	id, ok := m.verifySessionValue(value)
	if !ok {
		t.Fatalf("expected signed value to verify")
	}
	if id != "session-123" {
		t.Fatalf("id = %q, want %q", id, "session-123")
	}
}

func TestSessionValue_RejectsTampering(t *testing.T) {
	m := sessionTestManager()

	value := m.createSessionValue("session-123")
	for _, bad := range []string{
		"",
		"no-separator",
		value + "00",
		"x" + value,
		value[:len(value)-1],
	} {
		if _, ok := m.verifySessionValue(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}

	other := newSessionManager("other-secret", m.template)
	if _, ok := other.verifySessionValue(value); ok {
		t.Fatalf("expected value signed with a different secret to be rejected")
	}
}

func TestSessionState_IsolatedPerSession(t *testing.T) {
	m := sessionTestManager()

	err := m.do("alice", func(cat *formula.Catalog) error {
		f, err := cat.Formula("g", "f")
		if err != nil {
			return err
		}
		f.Vars["x"].Value = 42
		return nil
	})
	if err != nil {
		t.Fatalf("mutate alice state: %v", err)
	}

	err = m.do("bob", func(cat *formula.Catalog) error {
		f, err := cat.Formula("g", "f")
		if err != nil {
			return err
		}
		if f.Vars["x"].Value != 1 {
			t.Fatalf("bob sees alice's edit: x = %v", f.Vars["x"].Value)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read bob state: %v", err)
	}

	if m.template.Groups["g"].Formulas["f"].Vars["x"].Value != 1 {
		t.Fatalf("template was mutated by a session edit")
	}
}
