// Package replay records per-frame simulation input and plays it back
// headlessly. Recordings are run-length encoded and stored as YAML, so a
// session of a few minutes fits in a short human-readable file.
package replay

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sim"
)

// ErrHashMismatch is returned by Verify when playback diverges.
var ErrHashMismatch = errors.New("replay: final state hash mismatch")

// Segment is one input held for Repeat consecutive frames.
// Keys is a subset of "LRF" in that order; empty means no input.
type Segment struct {
	Keys   string `yaml:"keys"`
	Repeat int    `yaml:"repeat"`
}

// Recording is a replayable input log.
type Recording struct {
	ID         uuid.UUID               `yaml:"id"`
	Difficulty config.DifficultyPreset `yaml:"difficulty,omitempty"`
	FinalHash  uint64                  `yaml:"final_hash,omitempty"`
	Frames     []Segment               `yaml:"frames"`
}

// encodeKeys formats an input as its segment key string.
func encodeKeys(in sim.Input) string {
	var b strings.Builder
	if in.Left {
		b.WriteByte('L')
	}
	if in.Right {
		b.WriteByte('R')
	}
	if in.Fire {
		b.WriteByte('F')
	}
	return b.String()
}

// decodeKeys parses a segment key string.
func decodeKeys(keys string) (sim.Input, error) {
	var in sim.Input
	for _, r := range keys {
		var flag *bool
		switch r {
		case 'L':
			flag = &in.Left
		case 'R':
			flag = &in.Right
		case 'F':
			flag = &in.Fire
		default:
			return sim.Input{}, fmt.Errorf("replay: unknown key %q in %q", r, keys)
		}
		if *flag {
			return sim.Input{}, fmt.Errorf("replay: duplicate key %q in %q", r, keys)
		}
		*flag = true
	}
	return in, nil
}

// Len returns the number of frames in the recording.
func (r *Recording) Len() int {
	n := 0
	for _, seg := range r.Frames {
		n += seg.Repeat
	}
	return n
}

// Inputs expands the recording into one input per frame.
func (r *Recording) Inputs() ([]sim.Input, error) {
	out := make([]sim.Input, 0, r.Len())
	for i, seg := range r.Frames {
		if seg.Repeat <= 0 {
			return nil, fmt.Errorf("replay: segment %d: repeat must be positive, got %d", i, seg.Repeat)
		}
		in, err := decodeKeys(seg.Keys)
		if err != nil {
			return nil, fmt.Errorf("replay: segment %d: %w", i, err)
		}
		for j := 0; j < seg.Repeat; j++ {
			out = append(out, in)
		}
	}
	return out, nil
}

// Recorder accumulates inputs into a Recording.
type Recorder struct {
	rec Recording
}

// NewRecorder starts a recording with a fresh ID.
func NewRecorder(difficulty config.DifficultyPreset) *Recorder {
	return &Recorder{rec: Recording{ID: uuid.New(), Difficulty: difficulty}}
}

// Record appends one frame of input.
func (r *Recorder) Record(in sim.Input) {
	keys := encodeKeys(in)
	if n := len(r.rec.Frames); n > 0 && r.rec.Frames[n-1].Keys == keys {
		r.rec.Frames[n-1].Repeat++
		return
	}
	r.rec.Frames = append(r.rec.Frames, Segment{Keys: keys, Repeat: 1})
}

// Recording returns a copy of what has been recorded so far.
func (r *Recorder) Recording() Recording {
	out := r.rec
	out.Frames = append([]Segment(nil), r.rec.Frames...)
	return out
}

// Save writes the recording to path as YAML.
func Save(path string, rec Recording) error {
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("replay: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //#nosec G306 -- recordings are not secret
		return fmt.Errorf("replay: write %s: %w", path, err)
	}
	return nil
}

// Load reads a recording written by Save.
func Load(path string) (Recording, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided replay path
	if err != nil {
		return Recording{}, fmt.Errorf("replay: read %s: %w", path, err)
	}
	var rec Recording
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Recording{}, fmt.Errorf("replay: parse %s: %w", path, err)
	}
	if _, err := rec.Inputs(); err != nil {
		return Recording{}, fmt.Errorf("replay: %s: %w", path, err)
	}
	return rec, nil
}

// Result is the outcome of a playback.
type Result struct {
	Final  *sim.State
	Hashes []uint64 // State hash after every frame
}

// Play runs the recording from a fresh state under rules.
func Play(rules *sim.Rules, rec Recording) (Result, error) {
	inputs, err := rec.Inputs()
	if err != nil {
		return Result{}, err
	}
	s := rules.NewState()
	res := Result{Hashes: make([]uint64, 0, len(inputs))}
	for _, in := range inputs {
		s.Step(in)
		res.Hashes = append(res.Hashes, s.Hash())
	}
	res.Final = s
	return res, nil
}

// Verify plays the recording and checks the final state hash.
func Verify(rules *sim.Rules, rec Recording, expected uint64) (Result, error) {
	res, err := Play(rules, rec)
	if err != nil {
		return res, err
	}
	if got := res.Final.Hash(); got != expected {
		return res, fmt.Errorf("%w: got %d, want %d", ErrHashMismatch, got, expected)
	}
	return res, nil
}
