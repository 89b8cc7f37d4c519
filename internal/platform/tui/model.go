package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sim"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/replay"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

// QuickSaveSlot is the save slot used by the quick-save keys.
const QuickSaveSlot = "quick"

// holdTicks is how long a movement key stays held after its last repeat.
// Terminal key repeat runs at roughly 30Hz, slower than the tick rate.
const holdTicks = 6

// Saver is implemented by games that support quick-save.
type Saver interface {
	SaveState() ([]byte, error)
	LoadState(data []byte) error
}

// simGame exposes the simulation of an invaders game for recordings.
type simGame interface {
	Sim() *sim.State
}

// rulesReporter is implemented by games that can fall back to built-in rules.
type rulesReporter interface {
	RulesErr() error
}

// Options configures a game session beyond the runtime config.
type Options struct {
	// Difficulty is stored next to saved scores and recordings.
	Difficulty config.DifficultyPreset

	// RecordPath, when set, records the first game's input to this file.
	RecordPath string

	// Logger receives session events. Nil discards them.
	Logger *log.Logger
}

// Model is the Bubble Tea model for running a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	opts       Options
	logger     *log.Logger
	keys       KeyMap
	help       help.Model
	held       heldKeys
	inputFrame core.InputFrame
	gameState  core.GameState
	tick       int
	width      int
	height     int

	status      string
	statusUntil int

	recorder  *replay.Recorder
	recording *replay.Recording // Set once recording has stopped

	quitting   bool
	scoreSaved bool // Whether score has been saved for current game
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		config:     cfg,
		opts:       opts,
		logger:     logger,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		held:       newHeldKeys(holdTicks),
		inputFrame: core.NewInputFrame(),
		width:      cfg.ScreenW,
		height:     cfg.ScreenH,
	}
	if opts.RecordPath != "" {
		m.recorder = replay.NewRecorder(opts.Difficulty)
	}
	m.layout()
	return m
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	if g, ok := m.game.(rulesReporter); ok && g.RulesErr() != nil {
		m.logger.Error("config rejected", "game", m.game.ID(), "err", g.RulesErr())
	}
	m.logger.Info("game started", "game", m.game.ID(), "difficulty", m.opts.Difficulty)
	// Note: gameState will be set on first tick (value receiver limitation)

	// Start the tick loop
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	}

	switch action := m.keys.MapKey(msg); action {
	case core.ActionQuit:
		m.finish()
		m.quitting = true
		return m, tea.Quit
	case core.ActionSave:
		m.quickSave()
	case core.ActionLoad:
		m.quickLoad()
	case core.ActionLeft, core.ActionRight:
		m.held.press(action, m.tick)
		m.inputFrame.Set(action)
	case core.ActionRestart:
		if m.gameState.GameOver {
			m.inputFrame.Set(action)
		}
	case core.ActionNone:
	default:
		m.inputFrame.Set(action)
	}

	return m, nil
}

// handleResize processes window resize events. The simulation runs at a
// fixed resolution, so the game keeps going at the new size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.layout()
	return m, nil
}

// layout sizes the game screen to the space above the footer.
func (m *Model) layout() {
	h := m.height - lipgloss.Height(m.helpView())
	if h < 0 {
		h = 0
	}
	m.config.ScreenW = m.width
	m.config.ScreenH = h
	m.screen.Resize(m.width, h)
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.tick++
	m.held.apply(&m.inputFrame, m.tick)

	// Check for restart
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.stopRecording("restart")
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.scoreSaved = false
		m.held.release()
		m.inputFrame.Clear()
		m.logger.Info("game restarted")
		return m, tickCmd(m.config.TickRate)
	}

	prevFrame := m.gameState.Frame
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if m.recorder != nil && m.recording == nil && m.gameState.Frame > prevFrame {
		m.recorder.Record(invaders.InputFor(m.inputFrame))
	}

	// Save score on game over (once)
	if m.gameState.GameOver && !m.scoreSaved {
		m.logger.Info("board cleared", "score", m.gameState.Score, "frame", m.gameState.Frame)
		m.saveScore()
	}

	// Clear input for next frame
	m.inputFrame.Clear()

	// Continue ticking
	return m, tickCmd(m.config.TickRate)
}

// saveScore stores the current score once per game.
func (m *Model) saveScore() {
	if m.scoreSaved {
		return
	}
	m.scoreSaved = true
	if m.store == nil || m.gameState.Score <= 0 {
		return
	}
	if _, err := m.store.SaveScore(m.game.ID(), m.gameState.Score, string(m.opts.Difficulty)); err != nil {
		m.logger.Error("could not save score", "error", err)
		return
	}
	m.logger.Info("score saved", "score", m.gameState.Score)
}

// finish saves the score and closes the recording when the session ends.
// Safe to call more than once.
func (m *Model) finish() {
	m.saveScore()
	m.stopRecording("quit")
}

// stopRecording freezes the recording at the current frame. Later games
// and loaded states cannot be reproduced from a fresh board.
func (m *Model) stopRecording(reason string) {
	if m.recorder == nil || m.recording != nil {
		return
	}
	rec := m.recorder.Recording()
	if g, ok := m.game.(simGame); ok && g.Sim() != nil {
		rec.FinalHash = g.Sim().Hash()
	}
	m.recording = &rec
	m.logger.Info("recording stopped", "reason", reason, "frames", rec.Len())
}

// Recording returns the finished recording, if one was made.
func (m Model) Recording() (replay.Recording, bool) {
	if m.recording == nil {
		return replay.Recording{}, false
	}
	return *m.recording, true
}

// setStatus shows a message in the footer for two seconds.
func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusUntil = m.tick + 2*m.config.TickRate
}

// quickSave writes the running game to the quick-save slot.
func (m *Model) quickSave() {
	saver, ok := m.game.(Saver)
	if !ok || m.store == nil {
		m.setStatus("Quick-save unavailable")
		return
	}
	data, err := saver.SaveState()
	if err != nil {
		m.logger.Error("quick-save failed", "error", err)
		m.setStatus("Save failed")
		return
	}
	state := m.game.State()
	err = m.store.PutSave(storage.SaveSlot{
		Name:   QuickSaveSlot,
		GameID: m.game.ID(),
		Frame:  state.Frame,
		Score:  state.Score,
		State:  data,
	})
	if err != nil {
		m.logger.Error("quick-save failed", "error", err)
		m.setStatus("Save failed")
		return
	}
	m.logger.Info("quick-saved", "frame", state.Frame, "bytes", len(data))
	m.setStatus("Saved at frame %d", state.Frame)
}

// quickLoad restores the quick-save slot.
func (m *Model) quickLoad() {
	saver, ok := m.game.(Saver)
	if !ok || m.store == nil {
		m.setStatus("Quick-load unavailable")
		return
	}
	slot, err := m.store.GetSave(QuickSaveSlot)
	if errors.Is(err, storage.ErrSaveNotFound) {
		m.setStatus("No quick-save yet")
		return
	}
	if err == nil && slot.GameID != m.game.ID() {
		err = fmt.Errorf("slot belongs to %q", slot.GameID)
	}
	if err == nil {
		err = saver.LoadState(slot.State)
	}
	if err != nil {
		m.logger.Error("quick-load failed", "error", err)
		m.setStatus("Load failed")
		return
	}

	m.stopRecording("load")
	m.gameState = m.game.State()
	m.scoreSaved = m.gameState.GameOver
	m.held.release()
	m.inputFrame.Clear()
	m.logger.Info("quick-loaded", "frame", slot.Frame)
	m.setStatus("Loaded frame %d", slot.Frame)
}

var footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

func (m Model) helpView() string {
	return footerStyle.Render(m.help.View(m.keys))
}

// footer renders the status line or the key help.
func (m Model) footer() string {
	if m.status != "" && m.tick < m.statusUntil {
		return footerStyle.Render(m.status)
	}
	return m.helpView()
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Render game to screen buffer
	m.game.Render(m.screen)

	return RenderScreen(m.screen) + "\n" + m.footer()
}

// Run starts the Bubble Tea program with the given model and returns the
// finished model.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts Options) (Model, error) {
	model := NewModel(game, store, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return model, err
	}
	m, ok := final.(Model)
	if !ok {
		return model, nil
	}
	m.finish()

	if rec, ok := m.Recording(); ok && opts.RecordPath != "" {
		if err := replay.Save(opts.RecordPath, rec); err != nil {
			return m, err
		}
		m.logger.Info("recording saved", "path", opts.RecordPath, "frames", rec.Len())
	}
	return m, nil
}
