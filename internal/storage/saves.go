package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSaveNotFound is returned when a save slot does not exist.
var ErrSaveNotFound = errors.New("storage: save not found")

// SaveSlot is a named snapshot of a game in progress.
type SaveSlot struct {
	Name      string
	GameID    string
	Frame     int
	Score     int
	State     []byte // Encoded by the game, opaque to the store
	CreatedAt time.Time
}

// PutSave writes a save slot, replacing any slot with the same name.
func (s *Store) PutSave(slot SaveSlot) error {
	if slot.Name == "" {
		return fmt.Errorf("storage: save name must not be empty")
	}
	_, err := s.db.Exec(
		`INSERT INTO saves (name, game_id, frame, score, state, created_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET
		   game_id = excluded.game_id,
		   frame = excluded.frame,
		   score = excluded.score,
		   state = excluded.state,
		   created_at = excluded.created_at`,
		slot.Name, slot.GameID, slot.Frame, slot.Score, slot.State,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write save %q: %w", slot.Name, err)
	}
	return nil
}

// GetSave reads a save slot by name.
func (s *Store) GetSave(name string) (*SaveSlot, error) {
	var slot SaveSlot
	var createdAt any
	err := s.db.QueryRow(
		`SELECT name, game_id, frame, score, state, created_at FROM saves WHERE name = ?`,
		name,
	).Scan(&slot.Name, &slot.GameID, &slot.Frame, &slot.Score, &slot.State, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSaveNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot read save %q: %w", name, err)
	}
	slot.CreatedAt = parseTime(createdAt)
	return &slot, nil
}

// ListSaves returns all save slots of a game without their state blobs,
// most recent first.
func (s *Store) ListSaves(gameID string) ([]SaveSlot, error) {
	rows, err := s.db.Query(
		`SELECT name, game_id, frame, score, created_at
		 FROM saves
		 WHERE game_id = ?
		 ORDER BY created_at DESC, name ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list saves: %w", err)
	}
	defer rows.Close()

	var slots []SaveSlot
	for rows.Next() {
		var slot SaveSlot
		var createdAt any
		if err := rows.Scan(&slot.Name, &slot.GameID, &slot.Frame, &slot.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		slot.CreatedAt = parseTime(createdAt)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return slots, nil
}

// DeleteSave removes a save slot.
func (s *Store) DeleteSave(name string) error {
	res, err := s.db.Exec("DELETE FROM saves WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("storage: cannot delete save %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot delete save %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrSaveNotFound, name)
	}
	return nil
}
