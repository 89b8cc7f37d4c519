// Package sim is the deterministic invaders simulation. A State advances one
// frame per Step; nothing in the package reads clocks, randomness or files.
package sim

import (
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sprite"
)

// Rules binds the layout table and the art set. It is immutable once built
// and may be shared by any number of states.
type Rules struct {
	cfg config.InvadersConfig
	art *sprite.Set
}

// NewRules validates cfg and checks that the art set matches its sizes.
// A nil set loads the embedded art with the table's palette.
func NewRules(cfg config.InvadersConfig, set *sprite.Set) (*Rules, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if set == nil {
		var err error
		set, err = sprite.Load(PaletteFor(cfg), cfg.Gameplay.SpriteScale)
		if err != nil {
			return nil, err
		}
	}

	check := func(name string, b *sprite.Bitmap, w, h int) error {
		if b == nil {
			return fmt.Errorf("sim: sprite %s is missing", name)
		}
		if b.W != w || b.H != h {
			return fmt.Errorf("sim: sprite %s is %dx%d, table expects %dx%d", name, b.W, b.H, w, h)
		}
		return nil
	}
	ew, eh := cfg.Enemies.Width, cfg.Enemies.Height
	for i := 0; i < cfg.Enemies.Rows; i++ {
		if err := check(fmt.Sprintf("invader_init_%d", i+1), set.Init[i], ew, eh); err != nil {
			return nil, err
		}
		if err := check(fmt.Sprintf("invader_flip_%d", i+1), set.Flip[i], ew, eh); err != nil {
			return nil, err
		}
	}
	for i := range set.Hit {
		if err := check(fmt.Sprintf("invader_hit_%d", i+1), set.Hit[i], ew, eh); err != nil {
			return nil, err
		}
	}
	if err := check("player_ship", set.Ship, cfg.Ship.Width, cfg.Ship.Height); err != nil {
		return nil, err
	}
	if err := check("shield", set.Shield, cfg.Shields.Width, cfg.Shields.Height); err != nil {
		return nil, err
	}
	for d := range set.Digits {
		if set.Digits[d] == nil {
			return nil, fmt.Errorf("sim: sprite digit_%d is missing", d)
		}
	}

	return &Rules{cfg: cfg, art: set}, nil
}

// DefaultRules returns rules for the built-in table and embedded art.
// It panics if they do not load, which only a broken build can cause.
func DefaultRules() *Rules {
	r, err := NewRules(config.DefaultInvadersConfig(), nil)
	if err != nil {
		panic(err)
	}
	return r
}

// PaletteFor returns the sprite palette described by a table.
func PaletteFor(cfg config.InvadersConfig) sprite.Palette {
	return sprite.Palette{
		Enemy:  cfg.Colors.Enemy.Color(),
		Ship:   cfg.Colors.Ship.Color(),
		Shield: cfg.Colors.Shield.Color(),
		Digits: cfg.Colors.LeftMarker.Color(),
	}
}

// Config returns a copy of the bound table.
func (r *Rules) Config() config.InvadersConfig {
	cfg := r.cfg
	cfg.Shields.Positions = append([]config.Point(nil), r.cfg.Shields.Positions...)
	return cfg
}

// Sprites returns the bound art set. It must not be modified.
func (r *Rules) Sprites() *sprite.Set {
	return r.art
}

// State is the whole game. All exported fields are part of the persisted
// record. A State must be created by Rules.NewState or a decoder.
type State struct {
	Lives          int
	Score          int
	Ship           Player
	ShipLaser      *Laser // nil when the player has no laser in flight
	Shields        []Shield
	Enemies        []Enemy // Index == Enemy.ID
	EnemyShotDelay int
	EnemyLasers    []Laser

	rules *Rules
}

// NewState creates the opening position.
func (r *Rules) NewState() *State {
	cfg := &r.cfg
	x1, _ := cfg.ShipLimits()

	s := &State{
		Lives: cfg.Gameplay.Lives,
		Score: 0,
		Ship: Player{
			X:     x1,
			Y:     cfg.Screen.SkyToGround - cfg.Ship.Height,
			W:     cfg.Ship.Width,
			H:     cfg.Ship.Height,
			Speed: cfg.Ship.Speed,
			Color: cfg.Colors.Ship.Color(),
		},
		EnemyShotDelay: cfg.Lasers.EnemyShotDelay,
		EnemyLasers:    []Laser{},
		rules:          r,
	}

	for _, p := range cfg.Shields.Positions {
		s.Shields = append(s.Shields, Shield{X: p.X, Y: p.Y, Bitmap: r.art.Shield.Clone()})
	}

	e := cfg.Enemies
	xOffset := e.Width + e.XSpace
	yOffset := e.Height + e.YSpace
	s.Enemies = make([]Enemy, 0, e.Rows*e.PerRow)
	for row := 0; row < e.Rows; row++ {
		for col := 0; col < e.PerRow; col++ {
			s.Enemies = append(s.Enemies, Enemy{
				X:           e.StartX + col*xOffset,
				Y:           e.StartY + row*yOffset,
				Row:         row,
				Col:         col,
				ID:          len(s.Enemies),
				Alive:       true,
				MoveCounter: e.Period,
				MoveRight:   true,
				Orientation: OrientationInit,
			})
		}
	}
	return s
}

// Rules returns the rules the state runs under.
func (s *State) Rules() *Rules {
	return s.rules
}

// CurrentScore returns the score. It never decreases.
func (s *State) CurrentScore() int {
	return s.Score
}

// CurrentLives returns the current lives counter. Nothing in the simulation
// changes it.
func (s *State) CurrentLives() int {
	return s.Lives
}

// AliveEnemies counts enemies still on the board, dying ones included.
func (s *State) AliveEnemies() int {
	n := 0
	for i := range s.Enemies {
		if s.Enemies[i].Alive {
			n++
		}
	}
	return n
}

// Cleared reports whether every enemy has been destroyed.
func (s *State) Cleared() bool {
	return s.AliveEnemies() == 0
}

// Step advances the game by one frame. Order matters: an enemy in its death
// animation is still collidable, and fire is decided after the march.
func (s *State) Step(in Input) {
	s.ageLasers()

	s.moveShip(in)
	if s.ShipLaser == nil && in.Fire {
		s.ShipLaser = s.rules.newLaser(s.Ship.X+s.Ship.W/2, s.Ship.Y, Up)
	}

	s.laserEnemyCollisions()
	s.shiftEnemies()
	s.tickDeathAnimations()
	s.fireVolley()
	s.moveEnemyLasers()
	s.moveShipLaser()
	s.missCheck()
}

// ageLasers advances the blink counter of every laser in flight.
func (s *State) ageLasers() {
	if s.ShipLaser != nil {
		s.ShipLaser.T++
	}
	for i := range s.EnemyLasers {
		s.EnemyLasers[i].T++
	}
}

// moveShip applies horizontal input (left wins) and clamps to the corridor.
func (s *State) moveShip(in Input) {
	if in.Left {
		s.Ship.X -= s.Ship.Speed
	} else if in.Right {
		s.Ship.X += s.Ship.Speed
	}

	x1, x2 := s.rules.cfg.ShipLimits()
	if s.Ship.X > x2 {
		s.Ship.X = x2
	} else if s.Ship.X < x1 {
		s.Ship.X = x1
	}
}

// newLaser creates a laser at (x, y) with t = 0.
func (r *Rules) newLaser(x, y int, dir Direction) *Laser {
	return &Laser{
		X:        x,
		Y:        y,
		W:        r.cfg.Lasers.Width,
		H:        r.cfg.Lasers.Height,
		T:        0,
		Movement: dir,
		Speed:    r.cfg.Lasers.Speed,
		Color:    r.cfg.Colors.Laser.Color(),
	}
}

// Clone returns a deep copy sharing only the rules.
func (s *State) Clone() *State {
	c := *s
	if s.ShipLaser != nil {
		l := *s.ShipLaser
		c.ShipLaser = &l
	}
	c.Shields = make([]Shield, len(s.Shields))
	for i, sh := range s.Shields {
		c.Shields[i] = Shield{X: sh.X, Y: sh.Y, Bitmap: sh.Bitmap.Clone()}
	}
	c.Enemies = append([]Enemy(nil), s.Enemies...)
	c.EnemyLasers = append([]Laser{}, s.EnemyLasers...)
	return &c
}

// Equal reports whether two states hold the same values field for field,
// shield pixels included.
func (s *State) Equal(o *State) bool {
	if s.Lives != o.Lives || s.Score != o.Score || s.Ship != o.Ship || s.EnemyShotDelay != o.EnemyShotDelay {
		return false
	}
	if (s.ShipLaser == nil) != (o.ShipLaser == nil) {
		return false
	}
	if s.ShipLaser != nil && *s.ShipLaser != *o.ShipLaser {
		return false
	}
	if len(s.Shields) != len(o.Shields) || len(s.Enemies) != len(o.Enemies) || len(s.EnemyLasers) != len(o.EnemyLasers) {
		return false
	}
	for i := range s.Shields {
		a, b := s.Shields[i], o.Shields[i]
		if a.X != b.X || a.Y != b.Y || !a.Bitmap.Equal(b.Bitmap) {
			return false
		}
	}
	for i := range s.Enemies {
		if s.Enemies[i] != o.Enemies[i] {
			return false
		}
	}
	for i := range s.EnemyLasers {
		if s.EnemyLasers[i] != o.EnemyLasers[i] {
			return false
		}
	}
	return true
}

// Hash returns a hash of the whole state for determinism checks.
func (s *State) Hash() uint64 {
	h := uint64(17)
	mix := func(v int) {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}
	flag := func(b bool) {
		if b {
			mix(1)
		} else {
			mix(0)
		}
	}
	laser := func(l *Laser) {
		mix(l.X)
		mix(l.Y)
		mix(l.W)
		mix(l.H)
		mix(l.T)
		mix(int(l.Movement))
		mix(l.Speed)
	}

	mix(s.Lives)
	mix(s.Score)
	mix(s.Ship.X)
	mix(s.Ship.Y)
	mix(s.EnemyShotDelay)

	flag(s.ShipLaser != nil)
	if s.ShipLaser != nil {
		laser(s.ShipLaser)
	}
	for i := range s.EnemyLasers {
		laser(&s.EnemyLasers[i])
	}
	mix(len(s.EnemyLasers))

	for i := range s.Enemies {
		e := &s.Enemies[i]
		mix(e.X)
		mix(e.Y)
		flag(e.Alive)
		mix(e.DeathCounter)
		mix(e.MoveCounter)
		flag(e.MoveRight)
		mix(int(e.Orientation))
	}

	for _, sh := range s.Shields {
		mix(sh.X)
		mix(sh.Y)
		for _, on := range sh.Bitmap.Pixels {
			flag(on)
		}
	}
	return h
}
