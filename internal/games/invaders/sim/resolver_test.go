package sim

import (
	"testing"

	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sprite"
)

// lowestLit returns the first lit pixel of the bottom-most lit row.
func lowestLit(t *testing.T, b *sprite.Bitmap) (int, int) {
	t.Helper()
	for y := b.H - 1; y >= 0; y-- {
		for x := 0; x < b.W; x++ {
			if b.At(x, y) {
				return x, y
			}
		}
	}
	t.Fatal("bitmap has no lit pixels")
	return 0, 0
}

func TestLaserHitStartsDeathClock(t *testing.T) {
	s := DefaultRules().NewState()
	e := &s.Enemies[0]
	px, py := lowestLit(t, s.rules.EnemySprite(e))

	s.ShipLaser = s.rules.newLaser(e.X+px, e.Y+py, Up)
	s.laserEnemyCollisions()

	if s.ShipLaser != nil {
		t.Error("laser should be consumed by the hit")
	}
	if e.DeathCounter != 29 || !e.Alive {
		t.Errorf("enemy after hit: counter=%d alive=%v, expected 29 true", e.DeathCounter, e.Alive)
	}
	if s.Score != 0 {
		t.Errorf("score changed on hit: %d", s.Score)
	}
}

func TestLaserMissesUnlitPixels(t *testing.T) {
	s := DefaultRules().NewState()
	e := &s.Enemies[0]

	// Bottom two rows of the invader art are empty
	s.ShipLaser = s.rules.newLaser(e.X+7, e.Y+8, Up)
	s.ShipLaser.H = 2
	s.laserEnemyCollisions()

	if s.ShipLaser == nil || e.Dying() {
		t.Error("a laser over unlit pixels must not hit")
	}
}

func TestHitOnDyingEnemyKeepsClock(t *testing.T) {
	s := DefaultRules().NewState()
	e := &s.Enemies[3]
	e.DeathCounter = 10
	px, py := lowestLit(t, s.rules.EnemySprite(e))

	s.ShipLaser = s.rules.newLaser(e.X+px, e.Y+py, Up)
	s.laserEnemyCollisions()

	if s.ShipLaser != nil {
		t.Error("laser should be consumed by a dying enemy")
	}
	if e.DeathCounter != 10 {
		t.Errorf("death clock restarted: %d", e.DeathCounter)
	}
}

func TestLaserKillsEnemyThroughStep(t *testing.T) {
	s := DefaultRules().NewState()
	e := &s.Enemies[30] // front of column 0
	px, py := lowestLit(t, s.rules.EnemySprite(e))

	// One pixel below the enemy: the hit happens during movement
	s.ShipLaser = s.rules.newLaser(e.X+px, e.Y+py+1, Up)
	s.Step(Input{})

	if s.ShipLaser != nil {
		t.Fatal("laser should hit while moving")
	}
	if e.DeathCounter != 29 {
		t.Fatalf("death counter = %d, expected 29", e.DeathCounter)
	}

	for i := 1; i <= 29; i++ {
		s.Step(Input{})
		if i < 29 {
			if !e.Alive || e.DeathCounter != 29-i || s.Score != 0 {
				t.Fatalf("frame %d: alive=%v counter=%d score=%d", i, e.Alive, e.DeathCounter, s.Score)
			}
			continue
		}
		if e.Alive || e.DeathCounter != 0 || s.Score != 10 {
			t.Errorf("countdown end: alive=%v counter=%d score=%d", e.Alive, e.DeathCounter, s.Score)
		}
	}

	// Dead enemies are neither hit nor drawn
	s.ShipLaser = s.rules.newLaser(e.X+px, e.Y+py, Up)
	s.laserEnemyCollisions()
	if s.ShipLaser == nil {
		t.Error("dead enemy absorbed a laser")
	}
}

func TestEnemyLaserErodesShield(t *testing.T) {
	s := DefaultRules().NewState()
	sh := &s.Shields[0]
	before := sh.Bitmap.Clone()

	// Bottom edge just above the shield's top row (lit at x 88..95)
	s.EnemyLasers = []Laser{*s.rules.newLaser(90, sh.Y-11, Down)}
	s.Step(Input{})

	if len(s.EnemyLasers) != 0 {
		t.Fatal("laser should be destroyed by the shield")
	}
	if sh.Bitmap.At(6, 0) || sh.Bitmap.At(7, 0) {
		t.Error("contact pixels should be eroded")
	}
	if got := before.OnCount() - sh.Bitmap.OnCount(); got != 2 {
		t.Errorf("eroded %d pixels, expected 2", got)
	}
	if !sh.Bitmap.SubsetOf(before) {
		t.Error("erosion lit a pixel")
	}
}

func TestShipLaserErodesShieldFromBelow(t *testing.T) {
	s := DefaultRules().NewState()
	sh := &s.Shields[0]
	before := sh.Bitmap.Clone()

	// x 90..91 runs up the shield's notch (unlit rows 14..17) into row 13
	s.ShipLaser = s.rules.newLaser(90, sh.Y+sh.Bitmap.H+1, Up)
	s.Step(Input{})
	if s.ShipLaser == nil {
		t.Fatal("laser should still be in the notch")
	}
	s.Step(Input{})
	if s.ShipLaser != nil {
		t.Fatal("laser should hit row 13")
	}
	if sh.Bitmap.At(6, 13) || sh.Bitmap.At(7, 13) {
		t.Error("row 13 contact pixels should be eroded")
	}
	if got := before.OnCount() - sh.Bitmap.OnCount(); got != 2 {
		t.Errorf("eroded %d pixels, expected 2", got)
	}
}

func TestOffscreenLasersAreRemoved(t *testing.T) {
	s := DefaultRules().NewState()
	s.EnemyLasers = []Laser{
		*s.rules.newLaser(10, 208, Down),
		*s.rules.newLaser(20, 100, Down),
		*s.rules.newLaser(30, 209, Down),
	}
	s.Step(Input{})

	if len(s.EnemyLasers) != 1 {
		t.Fatalf("lasers left = %d, expected 1", len(s.EnemyLasers))
	}
	if l := s.EnemyLasers[0]; l.X != 20 || l.Y != 103 {
		t.Errorf("wrong survivor at (%d,%d)", l.X, l.Y)
	}

	s.ShipLaser = s.rules.newLaser(300, 1, Up)
	s.Step(Input{})
	if s.ShipLaser != nil {
		t.Error("ship laser above the playfield should be removed")
	}
}

func TestBlinkParity(t *testing.T) {
	l := Laser{}
	want := []bool{true, true, false, false, true, true, false, false}
	for i, v := range want {
		l.T = i
		if l.Visible() != v {
			t.Errorf("t=%d: Visible() = %v, expected %v", i, l.Visible(), v)
		}
	}
}

func TestRemoveEnemyLasersKeepsOrder(t *testing.T) {
	s := DefaultRules().NewState()
	for i := 0; i < 6; i++ {
		s.EnemyLasers = append(s.EnemyLasers, Laser{X: i})
	}
	s.removeEnemyLasers([]int{0, 2, 5})

	if len(s.EnemyLasers) != 3 {
		t.Fatalf("len = %d, expected 3", len(s.EnemyLasers))
	}
	for i, x := range []int{1, 3, 4} {
		if s.EnemyLasers[i].X != x {
			t.Errorf("laser %d has X=%d, expected %d", i, s.EnemyLasers[i].X, x)
		}
	}
}
