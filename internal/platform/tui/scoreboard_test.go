package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-invaders/internal/storage"
)

func TestScoreboardTabs(t *testing.T) {
	store := openStore(t)
	store.SaveScore("invaders", 300, "hard")
	store.SaveScore("invaders", 120, "")
	if err := store.PutSave(storage.SaveSlot{Name: "quick", GameID: "invaders", Frame: 90, Score: 20, State: []byte{1}}); err != nil {
		t.Fatal(err)
	}

	m := NewScoreboardModel(store, "invaders", "Space Invaders", 100, 30)
	if got := len(m.table.Rows()); got != 2 {
		t.Fatalf("scores tab has %d rows, want 2", got)
	}
	if m.table.Rows()[0][1] != "300" || m.table.Rows()[1][2] != "-" {
		t.Errorf("unexpected score rows %v", m.table.Rows())
	}
	if !strings.Contains(m.View(), "Games: 2") {
		t.Error("sidebar should show the games count")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if m.tab != tabSaves {
		t.Fatal("tab should switch to saves")
	}
	if rows := m.table.Rows(); len(rows) != 1 || rows[0][0] != "quick" {
		t.Fatalf("saves tab rows = %v", rows)
	}

	next, _ = m.Update(runeKey('x'))
	m = next.(ScoreboardModel)
	if len(m.saves) != 0 || m.err != nil {
		t.Errorf("delete left saves=%v err=%v", m.saves, m.err)
	}
	if _, err := store.GetSave("quick"); err == nil {
		t.Error("slot should be gone from the store")
	}
}

func TestScoreboardDeleteOnlyOnSavesTab(t *testing.T) {
	store := openStore(t)
	store.SaveScore("invaders", 10, "")

	m := NewScoreboardModel(store, "invaders", "Space Invaders", 60, 20)
	next, _ := m.Update(runeKey('x'))
	m = next.(ScoreboardModel)
	if len(m.scores) != 1 {
		t.Error("delete on the scores tab should do nothing")
	}
	if m.showSidebar {
		t.Error("narrow layout should hide the sidebar")
	}
}

func TestScoreboardWithoutStore(t *testing.T) {
	m := NewScoreboardModel(nil, "invaders", "Space Invaders", 100, 30)
	if !strings.Contains(m.View(), "No scores recorded yet") {
		t.Error("empty scoreboard should say so")
	}
	next, cmd := m.Update(runeKey('q'))
	if !next.(ScoreboardModel).IsQuitting() || cmd == nil {
		t.Error("q should quit the scoreboard")
	}
}
