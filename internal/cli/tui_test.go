package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tracelayer/gridroute/pkg/problem"
)

// browserFixture builds a model over three requests, one of them failed.
func browserFixture() NetBrowserModel {
	p := &problem.Problem{
		Requests: []problem.Request{
			{Net: "a", Src: problem.Endpoint{Layer: "m1", Rect: problem.Rect{100, 100, 200, 200}}, Dst: problem.Endpoint{Layer: "m1", Rect: problem.Rect{100, 700, 200, 800}}},
			{Net: "b", Src: problem.Endpoint{Layer: "m1", Rect: problem.Rect{300, 100, 400, 200}}, Dst: problem.Endpoint{Layer: "m2", Rect: problem.Rect{700, 300, 800, 400}}},
			{Net: "c", Src: problem.Endpoint{Layer: "m2", Rect: problem.Rect{100, 500, 200, 600}}, Dst: problem.Endpoint{Layer: "m2", Rect: problem.Rect{700, 500, 800, 600}}},
		},
	}
	res := &problem.Result{
		Name:   "triple",
		Routed: 2,
		Failed: 1,
		Vias:   1,
		Requests: []problem.RequestResult{
			{Net: "a", Routed: true},
			{Net: "b", Routed: true},
			{Net: "c", Routed: false, Error: "no path between endpoints"},
		},
	}
	return NewNetBrowserModel(p, res)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m NetBrowserModel, msg tea.Msg) NetBrowserModel {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(NetBrowserModel)
	if !ok {
		t.Fatalf("Update() returned %T, want NetBrowserModel", next)
	}
	return got
}

func TestNetBrowserNavigation(t *testing.T) {
	m := browserFixture()

	m = update(t, m, key("down"))
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after down, want 1", m.Cursor)
	}

	m = update(t, m, key("j"))
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d after j, want 2", m.Cursor)
	}

	// Clamped at the last request.
	m = update(t, m, key("down"))
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d after down at end, want 2", m.Cursor)
	}

	m = update(t, m, key("up"))
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after up, want 1", m.Cursor)
	}

	m = update(t, m, key("g"))
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after g, want 0", m.Cursor)
	}

	m = update(t, m, key("G"))
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d after G, want 2", m.Cursor)
	}

	// Clamped at the first request.
	m = update(t, m, key("g"))
	m = update(t, m, key("k"))
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after k at start, want 0", m.Cursor)
	}
}

func TestNetBrowserScrollOffset(t *testing.T) {
	m := browserFixture()
	m.Height = 2

	m = update(t, m, key("down"))
	m = update(t, m, key("down"))
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}

	m = update(t, m, key("g"))
	if m.Offset != 0 {
		t.Errorf("Offset = %d after g, want 0", m.Offset)
	}
}

func TestNetBrowserQuit(t *testing.T) {
	m := browserFixture()

	for _, k := range []string{"q", "esc"} {
		msg := key(k)
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("Update(%q) returned nil cmd, want quit", k)
		}
	}
}

func TestNetBrowserResize(t *testing.T) {
	m := browserFixture()

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	if m.Height != 26 {
		t.Errorf("Height = %d, want 26", m.Height)
	}

	// Tiny windows keep a minimum list height.
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})
	if m.Height != 5 {
		t.Errorf("Height = %d, want 5", m.Height)
	}
}

func TestNetBrowserView(t *testing.T) {
	m := browserFixture()
	view := m.View()

	for _, want := range []string{"Route Status: triple", "2 routed", "1 failed", "1 vias", "a", "src", "dst"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestNetBrowserDetailShowsError(t *testing.T) {
	m := browserFixture()
	m = update(t, m, key("G"))

	view := m.View()
	if !strings.Contains(view, "no path between endpoints") {
		t.Error("View() should show the failed net's error in the detail pane")
	}
}
