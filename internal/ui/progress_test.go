package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"dbc/internal/driver"
)

func newModel(files ...string) *progressModel {
	return NewProgressModel("check", files, nil).(*progressModel)
}

func TestApplyEventTracksFiles(t *testing.T) {
	m := newModel("a.dbc", "b.dbc")

	m.applyEvent(driver.Event{File: "a.dbc", Stage: driver.StageParse, Status: driver.StatusWorking})
	if got := m.items[0].status; got != "parsing" {
		t.Fatalf("status: %s", got)
	}
	m.applyEvent(driver.Event{File: "a.dbc", Stage: driver.StageParse, Status: driver.StatusDone})
	if m.items[0].status != "parsed" || m.items[0].finished {
		t.Fatalf("a parsed file is not finished: %+v", m.items[0])
	}
	m.applyEvent(driver.Event{File: "a.dbc", Stage: driver.StageInstrument, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.dbc", Stage: driver.StageLoad, Status: driver.StatusError, Err: errors.New("denied")})
	if !m.items[0].finished || m.items[1].status != "error" {
		t.Fatalf("items: %+v", m.items)
	}
	if p := m.percent(); p != 1 {
		t.Fatalf("percent: %v", p)
	}

	// an errored file keeps its state
	m.applyEvent(driver.Event{File: "b.dbc", Stage: driver.StageInstrument, Status: driver.StatusDone})
	if m.items[1].status != "error" {
		t.Fatalf("error must stick, got %s", m.items[1].status)
	}
	// unknown files are ignored
	if cmd := m.applyEvent(driver.Event{File: "c.dbc", Stage: driver.StageParse, Status: driver.StatusWorking}); cmd != nil {
		t.Fatalf("unknown file must not move the bar")
	}
}

func TestPipelineEventsSetHeader(t *testing.T) {
	m := newModel("a.dbc")
	m.applyEvent(driver.Event{Stage: driver.StageLink, Status: driver.StatusWorking})
	if m.stageLabel != "link: linking" {
		t.Fatalf("stage label: %q", m.stageLabel)
	}
	if !strings.Contains(m.View(), "check (link: linking)") {
		t.Fatalf("header missing:\n%s", m.View())
	}
	if p := m.percent(); p != 0.05 {
		t.Fatalf("pipeline events do not move files, got %v", p)
	}
}

func TestDoneQuits(t *testing.T) {
	m := newModel("a.dbc")
	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatalf("done must quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if !strings.Contains(m.View(), "done: check") {
		t.Fatalf("view:\n%s", m.View())
	}
}

func TestListenForEventDrainsChannel(t *testing.T) {
	ch := make(chan driver.Event, 1)
	m := NewProgressModel("check", []string{"a.dbc"}, ch).(*progressModel)
	ch <- driver.Event{File: "a.dbc", Stage: driver.StageLoad, Status: driver.StatusWorking}
	if msg, ok := m.listenForEvent()().(eventMsg); !ok || msg.File != "a.dbc" {
		t.Fatalf("expected the queued event, got %#v", msg)
	}
	close(ch)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatalf("closed channel must finish the model")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("src/very/long/path.dbc", 10); got != "src/..." {
		t.Fatalf("truncate: %q", got)
	}
	if got := truncate("a.dbc", 10); got != "a.dbc" {
		t.Fatalf("short names stay: %q", got)
	}
}
