package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

type pickedMsg struct{ label string }

func testMenu() Menu {
	item := func(label string, disabled bool) MenuItem {
		return MenuItem{
			Label:    label,
			Disabled: disabled,
			Action: func() tea.Cmd {
				return func() tea.Msg { return pickedMsg{label} }
			},
		}
	}
	return NewMenu([]MenuItem{
		item("Normal", false),
		item("History", true),
		item("Exit", false),
	})
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := testMenu()
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 0 {
		t.Errorf("Selected = %d, want 0", m.Selected)
	}
}

func TestMenu_NumberShortcut(t *testing.T) {
	m := testMenu()
	m, cmd := m.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if got := cmd().(pickedMsg).label; got != "Exit" {
		t.Errorf("picked %q, want Exit", got)
	}
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2", m.Selected)
	}

	m, cmd = m.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	if cmd != nil || m.Selected != 2 {
		t.Error("a disabled item must not be picked by number")
	}
}

func TestMenu_View(t *testing.T) {
	view := testMenu().View()
	for _, want := range []string{"1. Normal", "2. History", "3. Exit"} {
		if !strings.Contains(view, want) {
			t.Errorf("menu view missing %q", want)
		}
	}
}

func TestTextInput_Submit(t *testing.T) {
	ti := NewTextInput("Artist:", "who?", 10)
	ti.Model.SetValue("abba")
	if ti.Submitted() {
		t.Fatal("new input must not be submitted")
	}
	ti.Submit(true)
	if !ti.Submitted() {
		t.Error("expected Submitted after Submit")
	}

	// Submitted input ignores further typing.
	ti, _ = ti.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if ti.Value() != "abba" {
		t.Errorf("Value = %q, want abba", ti.Value())
	}
	if !strings.Contains(ti.View(), "Artist:") {
		t.Error("expected the label in the view")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 0, 0},
		{1, 4, 0.25},
		{5, 4, 1},
	}
	for _, tt := range tests {
		p := NewProgressBar("Mastered", tt.done, tt.total, 40)
		if got := p.Percent(); got != tt.want {
			t.Errorf("Percent(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
	if !strings.Contains(NewProgressBar("Mastered", 1, 4, 40).View(), "1/4") {
		t.Error("expected the count in the view")
	}
}
