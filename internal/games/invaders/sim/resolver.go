package sim

import (
	"slices"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

// laserEnemyCollisions finds the first living enemy, in roster order, whose
// visible pixels the player laser covers. The laser is consumed on any such
// hit; the death clock starts only if it is not already running.
func (s *State) laserEnemyCollisions() {
	if s.ShipLaser == nil {
		return
	}
	lr := s.ShipLaser.Rect()

	hit := -1
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if !e.Alive {
			continue
		}
		// Broad phase first, pixels only on overlap.
		if !lr.Intersects(s.rules.EnemyRect(e)) {
			continue
		}
		if Collides(lr, e.X, e.Y, s.rules.EnemySprite(e)) {
			hit = e.ID
			break
		}
	}
	if hit < 0 {
		return
	}

	e := &s.Enemies[hit]
	s.ShipLaser = nil
	if e.DeathCounter == 0 {
		e.DeathCounter = s.rules.cfg.Death.Frames
	}
}

// laserShieldCheck erodes the first shield r damages and reports whether
// any shield was hit.
func (s *State) laserShieldCheck(r core.Rect) bool {
	for i := range s.Shields {
		sh := &s.Shields[i]
		if !r.Intersects(sh.Rect()) {
			continue
		}
		if Erode(r, sh.X, sh.Y, sh.Bitmap) {
			return true
		}
	}
	return false
}

// moveEnemyLasers moves every enemy laser down one pixel at a time, removing
// lasers that hit a shield.
func (s *State) moveEnemyLasers() {
	var hits []int
	for i := range s.EnemyLasers {
		l := &s.EnemyLasers[i]
		for step := 0; step < l.Speed; step++ {
			l.Y++
			if s.laserShieldCheck(l.Rect()) {
				hits = append(hits, i)
				break
			}
		}
	}
	s.removeEnemyLasers(hits)
}

// moveShipLaser moves the player laser up one pixel at a time. After every
// pixel it is tested against the shields and then against the enemies.
func (s *State) moveShipLaser() {
	if s.ShipLaser == nil {
		return
	}
	speed := s.ShipLaser.Speed
	for step := 0; step < speed; step++ {
		if s.ShipLaser == nil {
			break
		}
		s.ShipLaser.Y--
		if s.laserShieldCheck(s.ShipLaser.Rect()) {
			s.ShipLaser = nil
			break
		}
		s.laserEnemyCollisions()
	}
}

// missCheck removes lasers that have left the playfield.
func (s *State) missCheck() {
	if s.ShipLaser != nil && s.ShipLaser.Y < 0 {
		s.ShipLaser = nil
	}

	var gone []int
	for i := range s.EnemyLasers {
		if s.EnemyLasers[i].Y > s.rules.cfg.Screen.Height {
			gone = append(gone, i)
		}
	}
	s.removeEnemyLasers(gone)
}

// removeEnemyLasers deletes the lasers at the given ascending indexes.
// Removal runs from the highest index down so earlier indexes stay valid.
func (s *State) removeEnemyLasers(idx []int) {
	for i := len(idx) - 1; i >= 0; i-- {
		s.EnemyLasers = slices.Delete(s.EnemyLasers, idx[i], idx[i]+1)
	}
}
