package invaders

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sim"
)

// Snapshot summarizes the game for determinism checks and status lines.
// Uses primitive types only for stable serialization.
type Snapshot struct {
	Frame        int
	Score        int
	Lives        int
	ShipX        int
	ShipLaser    bool
	EnemyLasers  int
	EnemiesAlive int
	ShieldPixels int
	GameOver     bool
	StateHash    uint64 // sim.State.Hash of the full state
}

// Snapshot returns the current game state as a Snapshot.
func (g *Game) Snapshot() Snapshot {
	s := g.state
	pixels := 0
	for _, sh := range s.Shields {
		pixels += sh.Bitmap.OnCount()
	}
	return Snapshot{
		Frame:        g.frame,
		Score:        s.CurrentScore(),
		Lives:        s.CurrentLives(),
		ShipX:        s.Ship.X,
		ShipLaser:    s.ShipLaser != nil,
		EnemyLasers:  len(s.EnemyLasers),
		EnemiesAlive: s.AliveEnemies(),
		ShieldPixels: pixels,
		GameOver:     g.gameOver,
		StateHash:    s.Hash(),
	}
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := uint64(snap.Frame)              //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Score)        //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Lives)        //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.ShipX)        //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.EnemyLasers)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.EnemiesAlive) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.ShieldPixels) //#nosec G115 -- hash computation
	if snap.ShipLaser {
		h = h*31 + 1
	}
	if snap.GameOver {
		h = h*31 + 2
	}
	return h*31 + snap.StateHash
}

// ErrNoGame is returned when saving before Reset.
var ErrNoGame = errors.New("invaders: no game in progress")

// saveBlob is the quick-save format: the frame counter next to the
// msgpack-encoded simulation state.
type saveBlob struct {
	Frame int                `msgpack:"frame"`
	State msgpack.RawMessage `msgpack:"state"`
}

// SaveState encodes the running game as a compact msgpack blob.
func (g *Game) SaveState() ([]byte, error) {
	if g.state == nil {
		return nil, ErrNoGame
	}
	state, err := g.state.MarshalMsgpack()
	if err != nil {
		return nil, fmt.Errorf("invaders: encode state: %w", err)
	}
	return msgpack.Marshal(&saveBlob{Frame: g.frame, State: state})
}

// DecodeSave unpacks a blob written by SaveState under the given rules.
func DecodeSave(r *sim.Rules, data []byte) (frame int, s *sim.State, err error) {
	var blob saveBlob
	if err := msgpack.Unmarshal(data, &blob); err != nil {
		return 0, nil, fmt.Errorf("invaders: decode save: %w", err)
	}
	if blob.Frame < 0 {
		return 0, nil, fmt.Errorf("invaders: decode save: negative frame %d", blob.Frame)
	}
	s, err = r.DecodeMsgpack(blob.State)
	if err != nil {
		return 0, nil, fmt.Errorf("invaders: decode save: %w", err)
	}
	return blob.Frame, s, nil
}

// LoadState replaces the running game with a saved one. The game is left
// unchanged on error. A loaded game starts unpaused.
func (g *Game) LoadState(data []byte) error {
	if g.rules == nil {
		return ErrNoGame
	}
	frame, s, err := DecodeSave(g.rules, data)
	if err != nil {
		return err
	}
	g.state = s
	g.frame = frame
	g.paused = false
	g.gameOver = s.Cleared()
	return nil
}
