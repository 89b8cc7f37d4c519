package replay

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sim"
)

func scriptedInputs(n int) []sim.Input {
	out := make([]sim.Input, n)
	for i := range out {
		out[i] = sim.Input{
			Left:  (i/40)%2 == 0,
			Right: (i/40)%2 == 1,
			Fire:  i%7 == 0,
		}
	}
	return out
}

func TestKeysRoundTrip(t *testing.T) {
	tests := []struct {
		in   sim.Input
		keys string
	}{
		{sim.Input{}, ""},
		{sim.Input{Left: true}, "L"},
		{sim.Input{Right: true, Fire: true}, "RF"},
		{sim.Input{Left: true, Right: true, Fire: true}, "LRF"},
	}
	for _, tt := range tests {
		if got := encodeKeys(tt.in); got != tt.keys {
			t.Errorf("encodeKeys(%+v) = %q, want %q", tt.in, got, tt.keys)
		}
		got, err := decodeKeys(tt.keys)
		if err != nil {
			t.Fatalf("decodeKeys(%q) failed: %v", tt.keys, err)
		}
		if got != tt.in {
			t.Errorf("decodeKeys(%q) = %+v, want %+v", tt.keys, got, tt.in)
		}
	}
}

func TestDecodeKeysErrors(t *testing.T) {
	for _, keys := range []string{"X", "LL", "fire"} {
		if _, err := decodeKeys(keys); err == nil {
			t.Errorf("decodeKeys(%q) should fail", keys)
		}
	}
}

func TestRecorderRunLength(t *testing.T) {
	r := NewRecorder(config.DifficultyNormal)
	for i := 0; i < 3; i++ {
		r.Record(sim.Input{Left: true})
	}
	r.Record(sim.Input{Fire: true})
	r.Record(sim.Input{})
	r.Record(sim.Input{})

	rec := r.Recording()
	want := []Segment{{Keys: "L", Repeat: 3}, {Keys: "F", Repeat: 1}, {Keys: "", Repeat: 2}}
	if !reflect.DeepEqual(rec.Frames, want) {
		t.Errorf("Frames = %+v, want %+v", rec.Frames, want)
	}
	if rec.Len() != 6 {
		t.Errorf("Len() = %d, want 6", rec.Len())
	}
	if rec.ID == uuid.Nil {
		t.Error("recording should have an ID")
	}
	if rec.Difficulty != config.DifficultyNormal {
		t.Errorf("Difficulty = %q", rec.Difficulty)
	}

	// The snapshot must not alias the recorder's buffer
	r.Record(sim.Input{})
	if rec.Frames[2].Repeat != 2 {
		t.Error("Recording() returned an aliased slice")
	}
}

func TestInputsExpansion(t *testing.T) {
	in := scriptedInputs(300)
	r := NewRecorder("")
	for _, i := range in {
		r.Record(i)
	}
	rec := r.Recording()
	got, err := rec.Inputs()
	if err != nil {
		t.Fatalf("Inputs() failed: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Error("Inputs() does not reproduce the recorded frames")
	}
}

func TestInputsRejectsBadSegments(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
	}{
		{"zero repeat", Segment{Keys: "L", Repeat: 0}},
		{"negative repeat", Segment{Keys: "", Repeat: -2}},
		{"bad key", Segment{Keys: "Q", Repeat: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recording{Frames: []Segment{tt.seg}}
			if _, err := rec.Inputs(); err == nil {
				t.Error("Inputs() should fail")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	r := NewRecorder(config.DifficultyHard)
	for _, i := range scriptedInputs(120) {
		r.Record(i)
	}
	rec := r.Recording()
	rec.FinalHash = 1<<63 + 5

	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := Save(path, rec); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), rec.ID.String()) {
		t.Errorf("saved file should contain the recording ID:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("Load() = %+v, want %+v", got, rec)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	content := "id: 00000000-0000-0000-0000-000000000000\nframes:\n  - keys: LZ\n    repeat: 3\n"
	if err := os.WriteFile(bad, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load() with a bad key should fail")
	}
}

func TestPlayMatchesDirectStepping(t *testing.T) {
	rules := sim.DefaultRules()
	inputs := scriptedInputs(600)

	direct := rules.NewState()
	r := NewRecorder("")
	for _, in := range inputs {
		direct.Step(in)
		r.Record(in)
	}

	res, err := Play(rules, r.Recording())
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if len(res.Hashes) != len(inputs) {
		t.Fatalf("hash trail has %d entries, want %d", len(res.Hashes), len(inputs))
	}
	if !res.Final.Equal(direct) {
		t.Error("playback diverged from direct stepping")
	}
	if res.Hashes[len(res.Hashes)-1] != direct.Hash() {
		t.Error("last trail hash should be the final state hash")
	}

	// Playback is deterministic
	again, err := Play(rules, r.Recording())
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if !reflect.DeepEqual(again.Hashes, res.Hashes) {
		t.Error("two playbacks produced different hash trails")
	}
}

func TestPlayEmptyRecording(t *testing.T) {
	rules := sim.DefaultRules()
	res, err := Play(rules, Recording{})
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if len(res.Hashes) != 0 {
		t.Errorf("empty recording produced %d hashes", len(res.Hashes))
	}
	if !res.Final.Equal(rules.NewState()) {
		t.Error("empty playback should leave the initial state")
	}
}

func TestVerify(t *testing.T) {
	rules := sim.DefaultRules()
	r := NewRecorder("")
	for _, in := range scriptedInputs(200) {
		r.Record(in)
	}
	rec := r.Recording()

	res, err := Play(rules, rec)
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	want := res.Final.Hash()

	if _, err := Verify(rules, rec, want); err != nil {
		t.Errorf("Verify() with the right hash failed: %v", err)
	}
	if _, err := Verify(rules, rec, want+1); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Verify() err = %v, want ErrHashMismatch", err)
	}
}
