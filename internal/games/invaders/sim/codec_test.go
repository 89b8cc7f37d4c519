package sim

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// midGame plays a scripted game long enough to have damaged shields, dying
// enemies and lasers in flight.
func midGame(t *testing.T) *State {
	t.Helper()
	s := DefaultRules().NewState()
	for i := 0; i < 700; i++ {
		s.Step(scriptedInput(i))
	}
	for i := range s.Enemies {
		if e := &s.Enemies[i]; e.Alive && !e.Dying() {
			e.DeathCounter = 12
			break
		}
	}
	if s.ShipLaser == nil {
		s.ShipLaser = s.rules.newLaser(150, 90, Up)
	}
	return s
}

func TestJSONRoundTrip(t *testing.T) {
	s := midGame(t)
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	back, err := s.Rules().DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if !back.Equal(s) {
		t.Fatal("decoded state differs from the original")
	}
	if back.Hash() != s.Hash() {
		t.Error("hash changed across the round trip")
	}

	// The copy keeps playing identically
	for i := 0; i < 300; i++ {
		s.Step(scriptedInput(i))
		back.Step(scriptedInput(i))
	}
	if !back.Equal(s) {
		t.Error("decoded state diverged")
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	s := midGame(t)
	data, err := s.MarshalMsgpack()
	if err != nil {
		t.Fatalf("MarshalMsgpack failed: %v", err)
	}
	back, err := s.Rules().DecodeMsgpack(data)
	if err != nil {
		t.Fatalf("DecodeMsgpack failed: %v", err)
	}
	if !back.Equal(s) {
		t.Error("decoded state differs from the original")
	}

	if _, err := s.Rules().DecodeMsgpack(data[:len(data)/2]); !errors.Is(err, ErrMalformedState) {
		t.Errorf("truncated blob: expected ErrMalformedState, got %v", err)
	}
}

func TestJSONShape(t *testing.T) {
	s := DefaultRules().NewState()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"ship_laser":null`, `"enemy_lasers":[]`, `"orientation":"init"`, `"pixels":["....XXXXXXXX....",`} {
		if !strings.Contains(text, want) {
			t.Errorf("JSON lacks %s", want)
		}
	}
}

// mutateJSON decodes a state into generic maps, applies fn and re-encodes.
func mutateJSON(t *testing.T, s *State, fn func(m map[string]any)) []byte {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	fn(m)
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return out
}

func TestDecodeRejectsMalformedState(t *testing.T) {
	enemy := func(m map[string]any, i int) map[string]any {
		return m["enemies"].([]any)[i].(map[string]any)
	}

	tests := []struct {
		name   string
		mutate func(m map[string]any)
		substr string
	}{
		{"missing score", func(m map[string]any) { delete(m, "score") }, "missing field score"},
		{"missing ship color", func(m map[string]any) {
			delete(m["ship"].(map[string]any), "color")
		}, "ship.color"},
		{"missing enemy field", func(m map[string]any) { delete(enemy(m, 5), "move_counter") }, "enemies[5].move_counter"},
		{"unknown field", func(m map[string]any) { m["bonus"] = 1 }, "unknown field"},
		{"bad orientation", func(m map[string]any) { enemy(m, 0)["orientation"] = "sideways" }, "sideways"},
		{"wrong enemy count", func(m map[string]any) {
			m["enemies"] = m["enemies"].([]any)[:35]
		}, "expected 36 enemies"},
		{"shuffled identity", func(m map[string]any) { enemy(m, 2)["id"] = 9 }, "has id 9"},
		{"dead but dying", func(m map[string]any) {
			enemy(m, 1)["alive"] = false
			enemy(m, 1)["death_counter"] = 4
		}, "dead but still dying"},
		{"bad shield art", func(m map[string]any) {
			shield := m["shields"].([]any)[0].(map[string]any)
			shield["pixels"].([]any)[0] = "....XXXX#XXX...."
		}, "cannot construct pixel"},
		{"upward enemy laser", func(m map[string]any) {
			m["enemy_lasers"] = []any{map[string]any{
				"x": 1, "y": 1, "w": 2, "h": 11, "t": 0, "movement": "up", "speed": 3,
				"color": map[string]any{"r": 1, "g": 2, "b": 3},
			}}
		}, "must move down"},
		{"missing ship laser", func(m map[string]any) { delete(m, "ship_laser") }, "missing field ship_laser"},
		{"missing enemy lasers", func(m map[string]any) { delete(m, "enemy_lasers") }, "missing field enemy_lasers"},
		{"null enemy lasers", func(m map[string]any) { m["enemy_lasers"] = nil }, "missing field enemy_lasers"},
		{"still laser", func(m map[string]any) {
			m["enemy_lasers"] = []any{map[string]any{
				"x": 1, "y": 1, "w": 2, "h": 11, "t": 0, "movement": "down", "speed": 0,
				"color": map[string]any{"r": 1, "g": 2, "b": 3},
			}}
		}, "enemy_lasers[0].speed must be positive"},
		{"flat ship laser", func(m map[string]any) {
			m["ship_laser"] = map[string]any{
				"x": 1, "y": 1, "w": 2, "h": -1, "t": 0, "movement": "up", "speed": 5,
				"color": map[string]any{"r": 1, "g": 2, "b": 3},
			}
		}, "ship_laser.h must be positive"},
		{"negative move counter", func(m map[string]any) { enemy(m, 0)["move_counter"] = -5 }, "move_counter -5 outside"},
		{"move counter above period", func(m map[string]any) { enemy(m, 0)["move_counter"] = 100000 }, "outside [0,"},
		{"enemy out of step", func(m map[string]any) { enemy(m, 3)["move_counter"] = 0 }, "enemies[3] has move_counter 0, the formation is at"},
		{"x between grid steps", func(m map[string]any) {
			enemy(m, 0)["x"] = enemy(m, 0)["x"].(float64) + 1
		}, "enemies[0] has x"},
		{"x past patrol end", func(m map[string]any) { enemy(m, 7)["x"] = 100000 }, "off the patrol grid"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultRules().NewState()
			data := mutateJSON(t, s, tc.mutate)
			_, err := s.Rules().DecodeJSON(data)
			if !errors.Is(err, ErrMalformedState) {
				t.Fatalf("expected ErrMalformedState, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.substr) {
				t.Errorf("error %q should mention %q", err, tc.substr)
			}
		})
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	s := DefaultRules().NewState()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, err := s.Rules().DecodeJSON(append(data, []byte(" {}")...)); !errors.Is(err, ErrMalformedState) {
		t.Errorf("expected ErrMalformedState, got %v", err)
	}
	if _, err := s.Rules().DecodeJSON(append(data, '\n')); err != nil {
		t.Errorf("trailing newline should be accepted: %v", err)
	}
}

func TestDirectionAndOrientationText(t *testing.T) {
	var d Direction
	if err := d.UnmarshalText([]byte("down")); err != nil || d != Down {
		t.Errorf("UnmarshalText(down) = %v, %v", d, err)
	}
	if err := d.UnmarshalText([]byte("left")); !errors.Is(err, ErrMalformedState) {
		t.Errorf("unknown direction: %v", err)
	}
	var o Orientation
	if err := o.UnmarshalText([]byte("flip")); err != nil || o != OrientationFlip {
		t.Errorf("UnmarshalText(flip) = %v, %v", o, err)
	}
	if o.Toggle() != OrientationInit {
		t.Error("Toggle() should alternate")
	}
}

func TestMsgpackRejectsMalformedState(t *testing.T) {
	s := DefaultRules().NewState()
	data, err := s.MarshalMsgpack()
	if err != nil {
		t.Fatalf("MarshalMsgpack failed: %v", err)
	}

	_, err = s.Rules().DecodeMsgpack(append(data, 0xc0))
	if !errors.Is(err, ErrMalformedState) || !strings.Contains(err.Error(), "trailing") {
		t.Errorf("trailing byte: expected ErrMalformedState, got %v", err)
	}

	var m map[string]any
	if err := msgpack.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	delete(m, "ship_laser")
	stripped, err := msgpack.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	_, err = s.Rules().DecodeMsgpack(stripped)
	if !errors.Is(err, ErrMalformedState) || !strings.Contains(err.Error(), "missing field ship_laser") {
		t.Errorf("missing ship_laser: expected ErrMalformedState, got %v", err)
	}

	if _, err := s.Rules().DecodeMsgpack(data); err != nil {
		t.Errorf("null ship_laser should decode: %v", err)
	}
}

func TestDecodedFormationKeepsMarching(t *testing.T) {
	s := DefaultRules().NewState()
	for i := 0; i < 200; i++ {
		s.Step(Input{})
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := s.Rules().DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}

	for i := 0; i < 500; i++ {
		back.Step(Input{})
	}
	start, _ := back.rules.patrol(0)
	offset := back.Enemies[0].X - start
	for i := range back.Enemies {
		e := &back.Enemies[i]
		colStart, colEnd := back.rules.patrol(e.Col)
		if e.X-colStart != offset || e.X > colEnd {
			t.Fatalf("enemy %d at x=%d left the formation (offset %d, want %d)", i, e.X, e.X-colStart, offset)
		}
		if e.MoveCounter != back.Enemies[0].MoveCounter {
			t.Errorf("enemy %d move_counter %d out of step", i, e.MoveCounter)
		}
	}
}
