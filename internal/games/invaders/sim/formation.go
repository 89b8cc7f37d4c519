package sim

import (
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sprite"
)

// EnemyRect returns an enemy's bounding box.
func (r *Rules) EnemyRect(e *Enemy) core.Rect {
	return core.NewRect(e.X, e.Y, r.cfg.Enemies.Width, r.cfg.Enemies.Height)
}

// EnemySprite returns the bitmap an enemy currently shows. The result is
// shared art and must not be modified.
//
// A dying enemy shows one of the hit frames chosen by how far its death
// clock has run; the damage grows as the clock approaches zero.
func (r *Rules) EnemySprite(e *Enemy) *sprite.Bitmap {
	if e.DeathCounter > 0 {
		d := r.cfg.Death
		for i := 0; i < sprite.HitFrames; i++ {
			bound := d.Frames - (d.FirstBand + i*d.Band)
			if e.DeathCounter > bound {
				return r.art.Hit[i]
			}
		}
		panic(fmt.Sprintf("sim: enemy %d has a broken death clock (%d)", e.ID, e.DeathCounter))
	}
	if e.Row < 0 || e.Row >= sprite.InvaderKinds {
		panic(fmt.Sprintf("sim: enemy %d has no sprite for row %d", e.ID, e.Row))
	}
	if e.Orientation == OrientationFlip {
		return r.art.Flip[e.Row]
	}
	return r.art.Init[e.Row]
}

// patrol returns the column's left and right patrol bounds.
func (r *Rules) patrol(col int) (start, end int) {
	pitch := r.cfg.ColumnPitch()
	return r.cfg.Enemies.StartX + col*pitch, r.cfg.Enemies.EndX + col*pitch
}

// shift runs one frame of an enemy's patrol. Every enemy shares the period
// and starting counter, so the formation moves in lock-step.
func (r *Rules) shift(e *Enemy) {
	if e.MoveCounter != 0 {
		e.MoveCounter--
		return
	}

	start, end := r.patrol(e.Col)
	switch e.X {
	case start:
		e.MoveRight = true
	case end:
		e.MoveRight = false
	}
	if e.MoveRight {
		e.X += r.cfg.Enemies.Delta
	} else {
		e.X -= r.cfg.Enemies.Delta
	}
	e.Orientation = e.Orientation.Toggle()
	e.MoveCounter = r.cfg.Enemies.Period
}

// shiftEnemies advances the patrol of every roster entry.
func (s *State) shiftEnemies() {
	for i := range s.Enemies {
		s.rules.shift(&s.Enemies[i])
	}
}

// tickDeathAnimations runs every death clock. An enemy whose clock reaches
// zero leaves the board and pays out.
func (s *State) tickDeathAnimations() {
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if e.DeathCounter == 0 {
			continue
		}
		e.DeathCounter--
		if e.DeathCounter == 0 {
			e.Alive = false
			s.Score += s.rules.cfg.Score.Award
		}
	}
}

// activeWeaponEnemyIDs returns, per column that still has living enemies,
// the frontmost (highest row) living member. Columns appear in the order
// their first living member appears in the roster.
func (s *State) activeWeaponEnemyIDs() []int {
	var cols []int
	front := make(map[int]int)
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if !e.Alive {
			continue
		}
		id, seen := front[e.Col]
		if !seen {
			cols = append(cols, e.Col)
			front[e.Col] = e.ID
			continue
		}
		if e.Row >= s.Enemies[id].Row {
			front[e.Col] = e.ID
		}
	}

	out := make([]int, 0, len(cols))
	for _, c := range cols {
		out = append(out, front[c])
	}
	return out
}

// fireVolley counts down the shot delay and, when it runs out, makes every
// column's front enemy fire. No volley starts while more than the cap of
// enemy lasers are in flight, but one volley may exceed the cap.
func (s *State) fireVolley() {
	cfg := &s.rules.cfg
	if len(s.EnemyLasers) > cfg.Lasers.EnemyLaserCap {
		return
	}
	s.EnemyShotDelay--
	if s.EnemyShotDelay > 0 {
		return
	}
	s.EnemyShotDelay = cfg.Lasers.EnemyShotDelay

	for _, id := range s.activeWeaponEnemyIDs() {
		cx, cy := s.rules.EnemyRect(&s.Enemies[id]).Center()
		s.EnemyLasers = append(s.EnemyLasers, *s.rules.newLaser(cx, cy, Down))
	}
}
