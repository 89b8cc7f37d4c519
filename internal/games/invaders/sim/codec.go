package sim

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sprite"
)

// ErrMalformedState is wrapped by every decode failure.
var ErrMalformedState = errors.New("sim: malformed state")

// The persisted record. Scalars are pointers so a missing field can be told
// apart from a zero one. ship_laser may be null but must be written; its
// presence is recorded in shipLaserSet.
type (
	colorRecord struct {
		R *uint8 `json:"r" msgpack:"r"`
		G *uint8 `json:"g" msgpack:"g"`
		B *uint8 `json:"b" msgpack:"b"`
	}

	playerRecord struct {
		X     *int         `json:"x" msgpack:"x"`
		Y     *int         `json:"y" msgpack:"y"`
		W     *int         `json:"w" msgpack:"w"`
		H     *int         `json:"h" msgpack:"h"`
		Speed *int         `json:"speed" msgpack:"speed"`
		Color *colorRecord `json:"color" msgpack:"color"`
	}

	laserRecord struct {
		X        *int         `json:"x" msgpack:"x"`
		Y        *int         `json:"y" msgpack:"y"`
		W        *int         `json:"w" msgpack:"w"`
		H        *int         `json:"h" msgpack:"h"`
		T        *int         `json:"t" msgpack:"t"`
		Movement *Direction   `json:"movement" msgpack:"movement"`
		Speed    *int         `json:"speed" msgpack:"speed"`
		Color    *colorRecord `json:"color" msgpack:"color"`
	}

	enemyRecord struct {
		X            *int         `json:"x" msgpack:"x"`
		Y            *int         `json:"y" msgpack:"y"`
		Row          *int         `json:"row" msgpack:"row"`
		Col          *int         `json:"col" msgpack:"col"`
		ID           *int         `json:"id" msgpack:"id"`
		Alive        *bool        `json:"alive" msgpack:"alive"`
		DeathCounter *int         `json:"death_counter" msgpack:"death_counter"`
		MoveCounter  *int         `json:"move_counter" msgpack:"move_counter"`
		MoveRight    *bool        `json:"move_right" msgpack:"move_right"`
		Orientation  *Orientation `json:"orientation" msgpack:"orientation"`
	}

	shieldRecord struct {
		X      *int         `json:"x" msgpack:"x"`
		Y      *int         `json:"y" msgpack:"y"`
		Color  *colorRecord `json:"color" msgpack:"color"`
		Pixels []string     `json:"pixels" msgpack:"pixels"`
	}

	stateRecord struct {
		Lives          *int           `json:"lives" msgpack:"lives"`
		Score          *int           `json:"score" msgpack:"score"`
		Ship           *playerRecord  `json:"ship" msgpack:"ship"`
		ShipLaser      *laserRecord   `json:"ship_laser" msgpack:"ship_laser"`
		Shields        []shieldRecord `json:"shields" msgpack:"shields"`
		Enemies        []enemyRecord  `json:"enemies" msgpack:"enemies"`
		EnemyShotDelay *int           `json:"enemy_shot_delay" msgpack:"enemy_shot_delay"`
		EnemyLasers    []laserRecord  `json:"enemy_lasers" msgpack:"enemy_lasers"`

		shipLaserSet bool
	}
)

func ptr[T any](v T) *T {
	return &v
}

func colorToRecord(c core.Color) *colorRecord {
	return &colorRecord{R: ptr(c.R), G: ptr(c.G), B: ptr(c.B)}
}

func laserToRecord(l *Laser) laserRecord {
	return laserRecord{
		X: ptr(l.X), Y: ptr(l.Y), W: ptr(l.W), H: ptr(l.H), T: ptr(l.T),
		Movement: ptr(l.Movement), Speed: ptr(l.Speed), Color: colorToRecord(l.Color),
	}
}

func (s *State) record() *stateRecord {
	rec := &stateRecord{
		Lives: ptr(s.Lives),
		Score: ptr(s.Score),
		Ship: &playerRecord{
			X: ptr(s.Ship.X), Y: ptr(s.Ship.Y), W: ptr(s.Ship.W), H: ptr(s.Ship.H),
			Speed: ptr(s.Ship.Speed), Color: colorToRecord(s.Ship.Color),
		},
		Shields:        make([]shieldRecord, 0, len(s.Shields)),
		Enemies:        make([]enemyRecord, 0, len(s.Enemies)),
		EnemyShotDelay: ptr(s.EnemyShotDelay),
		EnemyLasers:    make([]laserRecord, 0, len(s.EnemyLasers)),
	}
	if s.ShipLaser != nil {
		l := laserToRecord(s.ShipLaser)
		rec.ShipLaser = &l
	}
	for _, sh := range s.Shields {
		rec.Shields = append(rec.Shields, shieldRecord{
			X: ptr(sh.X), Y: ptr(sh.Y), Color: colorToRecord(sh.Bitmap.Color), Pixels: sh.Bitmap.Rows(),
		})
	}
	for _, e := range s.Enemies {
		rec.Enemies = append(rec.Enemies, enemyRecord{
			X: ptr(e.X), Y: ptr(e.Y), Row: ptr(e.Row), Col: ptr(e.Col), ID: ptr(e.ID),
			Alive: ptr(e.Alive), DeathCounter: ptr(e.DeathCounter), MoveCounter: ptr(e.MoveCounter),
			MoveRight: ptr(e.MoveRight), Orientation: ptr(e.Orientation),
		})
	}
	for i := range s.EnemyLasers {
		rec.EnemyLasers = append(rec.EnemyLasers, laserToRecord(&s.EnemyLasers[i]))
	}
	return rec
}

// MarshalJSON implements json.Marshaler.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.record())
}

// MarshalMsgpack implements msgpack.Marshaler.
func (s *State) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal(s.record())
}

// DecodeJSON restores a state written by State.MarshalJSON. Missing or
// unknown fields and values the rules cannot run with are errors.
func (r *Rules) DecodeJSON(data []byte) (*State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var rec stateRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after state", ErrMalformedState)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	_, rec.shipLaserSet = keys["ship_laser"]
	return r.fromRecord(&rec)
}

// DecodeMsgpack restores a state written by State.MarshalMsgpack.
func (r *Rules) DecodeMsgpack(data []byte) (*State, error) {
	rd := bytes.NewReader(data)
	dec := msgpack.NewDecoder(rd)
	dec.DisallowUnknownFields(true)

	var rec stateRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	if rd.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after state", ErrMalformedState, rd.Len())
	}

	var keys map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	_, rec.shipLaserSet = keys["ship_laser"]
	return r.fromRecord(&rec)
}

// fieldReader collects missing-field errors while a record is unpacked.
type fieldReader struct {
	errs []error
}

func (f *fieldReader) missing(name string) {
	f.errs = append(f.errs, fmt.Errorf("missing field %s", name))
}

func (f *fieldReader) fail(format string, args ...any) {
	f.errs = append(f.errs, fmt.Errorf(format, args...))
}

func readField[T any](f *fieldReader, name string, p *T) T {
	var zero T
	if p == nil {
		f.missing(name)
		return zero
	}
	return *p
}

// positive reads a field that must be greater than zero.
func (f *fieldReader) positive(name string, p *int) int {
	v := readField(f, name, p)
	if p != nil && v <= 0 {
		f.fail("%s must be positive, got %d", name, v)
	}
	return v
}

func (f *fieldReader) color(name string, c *colorRecord) core.Color {
	if c == nil {
		f.missing(name)
		return core.Color{}
	}
	return core.RGB(
		readField(f, name+".r", c.R),
		readField(f, name+".g", c.G),
		readField(f, name+".b", c.B),
	)
}

func (f *fieldReader) laser(name string, rec *laserRecord) Laser {
	return Laser{
		X:        readField(f, name+".x", rec.X),
		Y:        readField(f, name+".y", rec.Y),
		W:        f.positive(name+".w", rec.W),
		H:        f.positive(name+".h", rec.H),
		T:        readField(f, name+".t", rec.T),
		Movement: readField(f, name+".movement", rec.Movement),
		Speed:    f.positive(name+".speed", rec.Speed),
		Color:    f.color(name+".color", rec.Color),
	}
}

func (f *fieldReader) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrMalformedState, errors.Join(f.errs...))
}

// fromRecord unpacks and checks a decoded record against the rules.
func (r *Rules) fromRecord(rec *stateRecord) (*State, error) {
	f := &fieldReader{}
	cfg := &r.cfg

	s := &State{
		Lives:          readField(f, "lives", rec.Lives),
		Score:          readField(f, "score", rec.Score),
		EnemyShotDelay: readField(f, "enemy_shot_delay", rec.EnemyShotDelay),
		EnemyLasers:    make([]Laser, 0, len(rec.EnemyLasers)),
		rules:          r,
	}

	if rec.Ship == nil {
		f.missing("ship")
	} else {
		s.Ship = Player{
			X:     readField(f, "ship.x", rec.Ship.X),
			Y:     readField(f, "ship.y", rec.Ship.Y),
			W:     readField(f, "ship.w", rec.Ship.W),
			H:     readField(f, "ship.h", rec.Ship.H),
			Speed: readField(f, "ship.speed", rec.Ship.Speed),
			Color: f.color("ship.color", rec.Ship.Color),
		}
	}

	if !rec.shipLaserSet {
		f.missing("ship_laser")
	}
	if rec.EnemyLasers == nil {
		f.missing("enemy_lasers")
	}
	if rec.ShipLaser != nil {
		l := f.laser("ship_laser", rec.ShipLaser)
		if l.Movement != Up {
			f.fail("ship_laser must move up")
		}
		s.ShipLaser = &l
	}
	for i := range rec.EnemyLasers {
		l := f.laser(fmt.Sprintf("enemy_lasers[%d]", i), &rec.EnemyLasers[i])
		if l.Movement != Down {
			f.fail("enemy_lasers[%d] must move down", i)
		}
		s.EnemyLasers = append(s.EnemyLasers, l)
	}

	if len(rec.Shields) != config.ShieldCount {
		f.fail("expected %d shields, got %d", config.ShieldCount, len(rec.Shields))
	}
	for i, sr := range rec.Shields {
		name := fmt.Sprintf("shields[%d]", i)
		sh := Shield{
			X: readField(f, name+".x", sr.X),
			Y: readField(f, name+".y", sr.Y),
		}
		color := f.color(name+".color", sr.Color)
		if sr.Pixels == nil {
			f.missing(name + ".pixels")
			continue
		}
		b, err := sprite.FromRows(sr.Pixels, color)
		if err != nil {
			f.fail("%s.pixels: %w", name, err)
			continue
		}
		if b.W != cfg.Shields.Width || b.H != cfg.Shields.Height {
			f.fail("%s is %dx%d, expected %dx%d", name, b.W, b.H, cfg.Shields.Width, cfg.Shields.Height)
		}
		sh.Bitmap = b
		s.Shields = append(s.Shields, sh)
	}

	want := cfg.Enemies.Rows * cfg.Enemies.PerRow
	if len(rec.Enemies) != want {
		f.fail("expected %d enemies, got %d", want, len(rec.Enemies))
	}
	s.Enemies = make([]Enemy, 0, len(rec.Enemies))
	period := -1
	for i, er := range rec.Enemies {
		name := fmt.Sprintf("enemies[%d]", i)
		e := Enemy{
			X:            readField(f, name+".x", er.X),
			Y:            readField(f, name+".y", er.Y),
			Row:          readField(f, name+".row", er.Row),
			Col:          readField(f, name+".col", er.Col),
			ID:           readField(f, name+".id", er.ID),
			Alive:        readField(f, name+".alive", er.Alive),
			DeathCounter: readField(f, name+".death_counter", er.DeathCounter),
			MoveCounter:  readField(f, name+".move_counter", er.MoveCounter),
			MoveRight:    readField(f, name+".move_right", er.MoveRight),
			Orientation:  readField(f, name+".orientation", er.Orientation),
		}
		start, end := r.patrol(e.Col)
		switch {
		case e.ID != i:
			f.fail("%s has id %d", name, e.ID)
		case e.Row != i/cfg.Enemies.PerRow || e.Col != i%cfg.Enemies.PerRow:
			f.fail("%s has grid position (%d, %d)", name, e.Row, e.Col)
		case e.X < start || e.X > end || (e.X-start)%cfg.Enemies.Delta != 0:
			f.fail("%s has x %d off the patrol grid %d..%d step %d", name, e.X, start, end, cfg.Enemies.Delta)
		case e.MoveCounter < 0 || e.MoveCounter > cfg.Enemies.Period:
			f.fail("%s has move_counter %d outside [0, %d]", name, e.MoveCounter, cfg.Enemies.Period)
		case er.MoveCounter != nil && period >= 0 && e.MoveCounter != period:
			f.fail("%s has move_counter %d, the formation is at %d", name, e.MoveCounter, period)
		case e.DeathCounter < 0 || e.DeathCounter > cfg.Death.Frames:
			f.fail("%s has death_counter %d outside [0, %d]", name, e.DeathCounter, cfg.Death.Frames)
		case !e.Alive && e.DeathCounter != 0:
			f.fail("%s is dead but still dying", name)
		}
		if period < 0 && er.MoveCounter != nil {
			period = e.MoveCounter
		}
		s.Enemies = append(s.Enemies, e)
	}

	if err := f.err(); err != nil {
		return nil, err
	}
	return s, nil
}
