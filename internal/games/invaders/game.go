// Package invaders adapts the invaders simulation to the arcade platform:
// it registers the game, maps platform actions to simulation input and
// rasterizes the simulation's draw list into the terminal screen buffer.
package invaders

import (
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sim"
	"github.com/vovakirdan/tui-invaders/internal/registry"
)

// GameID is the registry and score-table identifier of the game.
const GameID = "invaders"

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names select the
// table as loaded.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParseDifficulty(preset)
}

// Difficulty returns the preset new games are built with.
func Difficulty() config.DifficultyPreset {
	return difficultyPreset
}

// LoadRules loads the table from path (see config.LoadInvaders), applies the
// preset and binds the embedded art.
func LoadRules(path string, preset config.DifficultyPreset) (*sim.Rules, error) {
	cfg, err := config.LoadInvaders(path)
	if err != nil {
		return nil, err
	}
	if preset != "" {
		config.ApplyInvadersPreset(&cfg, preset)
	}
	return sim.NewRules(cfg, nil)
}

// Game implements registry.Game on top of a sim.State.
type Game struct {
	rules    *sim.Rules
	rulesErr error // Why the configured table was rejected, if it was
	state    *sim.State

	runtime  core.RuntimeConfig
	frame    int
	paused   bool
	gameOver bool

	fb *Frame // Reused raster target
}

// New creates an invaders game. Reset must be called before use.
func New() *Game {
	return &Game{}
}

// NewWithRules creates a game bound to the given rules, ignoring the
// package-level config path and preset.
func NewWithRules(r *sim.Rules) *Game {
	return &Game{rules: r}
}

func init() {
	registry.Register(GameID, func() registry.Game {
		return New()
	})
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return GameID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Space Invaders"
}

// Reset starts a new game. A table that fails to load falls back to the
// built-in defaults and the load error is kept for RulesErr.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	if g.rules == nil {
		r, err := LoadRules(configPath, difficultyPreset)
		if err != nil {
			g.rulesErr = fmt.Errorf("invaders: using built-in rules: %w", err)
			r = sim.DefaultRules()
		}
		g.rules = r
	}

	g.state = g.rules.NewState()
	g.frame = 0
	g.paused = false
	g.gameOver = false
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionRestart) && g.gameOver {
		g.Reset(g.runtime)
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.gameOver {
		g.paused = !g.paused
	}
	if g.paused || g.gameOver {
		return core.StepResult{State: g.State()}
	}

	g.state.Step(InputFor(in))
	g.frame++

	// The board is over once every enemy has finished dying.
	if g.state.Cleared() {
		g.gameOver = true
	}

	return core.StepResult{State: g.State()}
}

// InputFor maps platform actions to one frame of simulation input.
func InputFor(in core.InputFrame) sim.Input {
	return sim.Input{
		Left:  in.Has(core.ActionLeft),
		Right: in.Has(core.ActionRight),
		Fire:  in.Has(core.ActionFire),
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.state == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.state.CurrentScore(),
		Lives:    g.state.CurrentLives(),
		Frame:    g.frame,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Sim returns the running simulation state. Callers must not step it.
func (g *Game) Sim() *sim.State {
	return g.state
}

// RulesErr reports why the configured table was replaced by the built-in
// defaults, or nil when it loaded.
func (g *Game) RulesErr() error {
	return g.rulesErr
}

// Rules returns the rules the game was built with.
func (g *Game) Rules() *sim.Rules {
	return g.rules
}
