package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"bigrsa/internal/observ"
)

func TestSearchModelCollectsPrimes(t *testing.T) {
	events := make(chan Event)
	m := NewSearchModel("search 64-bit", 2, events).(*searchModel)

	m.Update(eventMsg(Event{Stats: observ.StatsReport{Candidates: 12}}))
	if len(m.found) != 0 || m.stats.Candidates != 12 {
		t.Fatalf("stats-only event changed state: %+v", m)
	}

	m.Update(eventMsg(Event{Worker: 3, Prime: "0xc3", Stats: observ.StatsReport{Candidates: 40, Found: 1}}))
	if len(m.found) != 1 || m.found[0].worker != 3 {
		t.Fatalf("found = %+v", m.found)
	}
	view := m.View()
	for _, want := range []string{"search 64-bit (1/2)", "worker 3", "0xc3", "searching", "40 candidates"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatalf("done message did not finish the model")
	}
	if msg := cmd(); !isQuit(msg) {
		t.Fatalf("done returned %T, want tea.QuitMsg", msg)
	}
	if !strings.Contains(m.View(), "done: search 64-bit") {
		t.Fatalf("final view:\n%s", m.View())
	}
}

func TestListenForEventClosedChannel(t *testing.T) {
	events := make(chan Event)
	close(events)
	m := NewSearchModel("x", 1, events).(*searchModel)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatalf("closed channel must produce doneMsg")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"0x0000000000001eef", 0, "0x0000000000001eef"},
		{"0x0000000000001eef", 40, "0x0000000000001eef"},
		{"0x0000000000001eef", 10, "0x00000..."},
		{"0x0000000000001eef", 17, "0x000000000000..."},
		{"0x0000000000001eef", 3, "0x0"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func isQuit(msg tea.Msg) bool {
	_, ok := msg.(tea.QuitMsg)
	return ok
}
