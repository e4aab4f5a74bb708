package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	fired := ""
	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "One", Action: func() tea.Cmd { fired = "one"; return nil }},
		{Label: "Off", Disabled: true},
		{Label: "Two", Action: func() tea.Cmd { fired = "two"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Fatalf("Selected after down = %d, want 3", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if fired != "two" {
		t.Errorf("fired = %q, want two", fired)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Errorf("Selected after up = %d, want 1", m.Selected)
	}
}

func TestMenu_WrapsAndJumps(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "A"}, {Label: "B"}, {Label: "C", Disabled: true}})

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Fatalf("up from top = %d, want 1", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 0 {
		t.Fatalf("down from last enabled = %d, want 0", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnd})
	if m.Selected != 1 {
		t.Fatalf("end = %d, want 1", m.Selected)
	}

	all := NewMenu([]MenuItem{{Label: "X", Disabled: true}})
	all, cmd := all.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil || all.Selected != 0 {
		t.Errorf("all-disabled menu reacted: %d", all.Selected)
	}
}

func TestMultiChoice_DirectPickAndSubmit(t *testing.T) {
	mc := NewMultiChoice("Best drink?", []string{"Water", "Soda", "Syrup", "Juice"}, 0, "Water has no sugar.")

	mc, _ = mc.Update(key('c'))
	if mc.Selected != 2 {
		t.Fatalf("Selected = %d, want 2", mc.Selected)
	}
	mc, _ = mc.Update(key('1'))
	if mc.Selected != 0 {
		t.Fatalf("Selected = %d, want 0", mc.Selected)
	}
	mc, _ = mc.Update(key('9'))
	if mc.Selected != 0 {
		t.Fatalf("out of range key moved selection to %d", mc.Selected)
	}

	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !mc.IsCorrect() {
		t.Error("expected correct answer")
	}

	// Locked after submit.
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if mc.ChosenIndex != 0 || mc.Selected != 0 {
		t.Error("selection changed after submit")
	}
	if !strings.Contains(mc.View(60), "Water has no sugar.") {
		t.Error("explanation not shown after submit")
	}
}

func TestMultiChoice_Wrong(t *testing.T) {
	mc := NewMultiChoice("q", []string{"a", "b"}, 0, "")
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	mc, _ = mc.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if mc.IsCorrect() {
		t.Error("expected wrong answer")
	}
	if mc.ChosenIndex != 1 {
		t.Errorf("ChosenIndex = %d, want 1", mc.ChosenIndex)
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	if v := NewProgressBar("Done", 150, 40).View(); !strings.Contains(v, "150%") {
		t.Errorf("unexpected view %q", v)
	}
	if v := NewProgressBar("", -5, 10).View(); v == "" {
		t.Error("empty view")
	}
}
