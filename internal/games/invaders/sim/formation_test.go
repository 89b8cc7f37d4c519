package sim

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sprite"
)

func TestEnemyShiftTiming(t *testing.T) {
	r := DefaultRules()
	e := r.NewState().Enemies[0]

	for i := 0; i < 32; i++ {
		r.shift(&e)
		if e.X != 44 {
			t.Fatalf("enemy moved early at frame %d", i+1)
		}
	}
	if e.MoveCounter != 0 {
		t.Fatalf("MoveCounter = %d, expected 0", e.MoveCounter)
	}

	r.shift(&e)
	if e.X != 46 || !e.MoveRight {
		t.Errorf("after first move X=%d right=%v, expected 46 true", e.X, e.MoveRight)
	}
	if e.Orientation != OrientationFlip {
		t.Errorf("Orientation = %v, expected flip", e.Orientation)
	}
	if e.MoveCounter != 32 {
		t.Errorf("MoveCounter = %d, expected 32", e.MoveCounter)
	}
}

func TestEnemyPatrolReversesAtColumnBounds(t *testing.T) {
	r := DefaultRules()
	e := r.NewState().Enemies[2] // col 2: patrol [108, 162]

	step := func() {
		e.MoveCounter = 0
		r.shift(&e)
	}

	for i := 0; i < 27; i++ {
		step()
	}
	if e.X != 162 {
		t.Fatalf("X = %d, expected right bound 162", e.X)
	}
	step()
	if e.X != 160 || e.MoveRight {
		t.Errorf("at right bound: X=%d right=%v, expected 160 false", e.X, e.MoveRight)
	}
	for i := 0; i < 26; i++ {
		step()
	}
	if e.X != 108 {
		t.Fatalf("X = %d, expected left bound 108", e.X)
	}
	step()
	if e.X != 110 || !e.MoveRight {
		t.Errorf("at left bound: X=%d right=%v, expected 110 true", e.X, e.MoveRight)
	}
	// 55 moves, odd number of toggles
	if e.Orientation != OrientationFlip {
		t.Errorf("Orientation = %v, expected flip", e.Orientation)
	}
}

func TestFormationMarchesInLockStep(t *testing.T) {
	s := DefaultRules().NewState()
	for i := 0; i < 500; i++ {
		s.Step(Input{})
	}

	ref := s.Enemies[0]
	for _, e := range s.Enemies {
		if off := e.X - (44 + e.Col*32); off != ref.X-44 {
			t.Errorf("enemy %d offset %d, expected %d", e.ID, off, ref.X-44)
		}
		if e.Orientation != ref.Orientation || e.MoveRight != ref.MoveRight {
			t.Errorf("enemy %d out of phase", e.ID)
		}
		if e.Y != 31+e.Row*18 {
			t.Errorf("enemy %d changed height to %d", e.ID, e.Y)
		}
	}
}

func TestEnemySpriteSelection(t *testing.T) {
	r := DefaultRules()
	art := r.Sprites()

	tests := []struct {
		counter int
		want    *sprite.Bitmap
	}{
		{29, art.Hit[0]},
		{25, art.Hit[0]},
		{24, art.Hit[1]},
		{17, art.Hit[1]},
		{16, art.Hit[2]},
		{9, art.Hit[2]},
		{8, art.Hit[3]},
		{1, art.Hit[3]},
	}
	for _, tc := range tests {
		e := Enemy{Row: 2, DeathCounter: tc.counter, Alive: true}
		if got := r.EnemySprite(&e); got != tc.want {
			t.Errorf("death counter %d: wrong hit frame", tc.counter)
		}
	}

	for row := 0; row < sprite.InvaderKinds; row++ {
		e := Enemy{Row: row, Orientation: OrientationInit}
		if r.EnemySprite(&e) != art.Init[row] {
			t.Errorf("row %d init: wrong frame", row)
		}
		e.Orientation = OrientationFlip
		if r.EnemySprite(&e) != art.Flip[row] {
			t.Errorf("row %d flip: wrong frame", row)
		}
	}
}

func TestEnemySpritePanicsOnUnknownRow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for row outside the art set")
		}
	}()
	DefaultRules().EnemySprite(&Enemy{Row: sprite.InvaderKinds})
}

func TestDeathAnimationAwardsOnce(t *testing.T) {
	s := DefaultRules().NewState()
	s.Enemies[7].DeathCounter = 3

	s.tickDeathAnimations()
	s.tickDeathAnimations()
	if s.Score != 0 || !s.Enemies[7].Alive {
		t.Fatalf("enemy died early: score=%d alive=%v", s.Score, s.Enemies[7].Alive)
	}
	s.tickDeathAnimations()
	if s.Score != 10 || s.Enemies[7].Alive || s.Enemies[7].DeathCounter != 0 {
		t.Errorf("after countdown: score=%d alive=%v counter=%d",
			s.Score, s.Enemies[7].Alive, s.Enemies[7].DeathCounter)
	}
	s.tickDeathAnimations()
	if s.Score != 10 {
		t.Errorf("score paid twice: %d", s.Score)
	}
}

func TestActiveWeaponEnemyIDs(t *testing.T) {
	s := DefaultRules().NewState()
	if got, want := s.activeWeaponEnemyIDs(), []int{30, 31, 32, 33, 34, 35}; !reflect.DeepEqual(got, want) {
		t.Errorf("full roster: got %v, expected %v", got, want)
	}

	s.Enemies[30].Alive = false // col 0 front
	for row := 0; row < 6; row++ {
		s.Enemies[row*6+1].Alive = false // all of col 1
	}
	if got, want := s.activeWeaponEnemyIDs(), []int{24, 32, 33, 34, 35}; !reflect.DeepEqual(got, want) {
		t.Errorf("after kills: got %v, expected %v", got, want)
	}
}

func TestFireVolley(t *testing.T) {
	s := DefaultRules().NewState()

	for i := 0; i < 49; i++ {
		s.fireVolley()
	}
	if len(s.EnemyLasers) != 0 || s.EnemyShotDelay != 1 {
		t.Fatalf("before volley: lasers=%d delay=%d", len(s.EnemyLasers), s.EnemyShotDelay)
	}

	s.fireVolley()
	if len(s.EnemyLasers) != 6 {
		t.Fatalf("volley fired %d lasers, expected one per column (6)", len(s.EnemyLasers))
	}
	if s.EnemyShotDelay != 50 {
		t.Errorf("EnemyShotDelay = %d, expected reset to 50", s.EnemyShotDelay)
	}
	for c, l := range s.EnemyLasers {
		if l.X != 52+c*32 || l.Y != 126 {
			t.Errorf("laser %d at (%d,%d), expected (%d,126)", c, l.X, l.Y, 52+c*32)
		}
		if l.Movement != Down || l.T != 0 {
			t.Errorf("laser %d: movement=%v t=%d", c, l.Movement, l.T)
		}
	}

	// Over the cap: no countdown, no volley
	s.fireVolley()
	if s.EnemyShotDelay != 50 || len(s.EnemyLasers) != 6 {
		t.Errorf("volley gate ignored: delay=%d lasers=%d", s.EnemyShotDelay, len(s.EnemyLasers))
	}
}
