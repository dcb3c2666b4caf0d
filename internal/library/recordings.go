package library

import (
	"context"
	"database/sql"
	"errors"

	"clipper/internal/clip"
)

const recordingColumns = "id, name, created_at, updated_at"

func scanRecording(scanner interface{ Scan(dest ...any) error }) (*Recording, error) {
	var (
		rec              Recording
		created, updated int64
	)
	if err := scanner.Scan(&rec.ID, &rec.Name, &created, &updated); err != nil {
		return nil, err
	}
	rec.CreatedAt = fromMillis(created)
	rec.UpdatedAt = fromMillis(updated)
	return &rec, nil
}

// CreateRecording inserts a new, empty recording.
func (s *Store) CreateRecording(ctx context.Context, name string) (*Recording, error) {
	const op = "create recording"
	name, err := requireName(op, name)
	if err != nil {
		return nil, err
	}
	id := newID()
	now := nowMillis()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO recordings (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, name, now, now,
	); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "insert", err)
	}
	return s.GetRecording(ctx, id)
}

// ListRecordings returns every recording, newest first.
func (s *Store) ListRecordings(ctx context.Context) ([]Recording, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordingColumns+` FROM recordings ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, "list recordings", "query", err)
	}
	defer rows.Close()

	var recordings []Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, clip.Wrap(clip.ErrIO, "list recordings", "scan", err)
		}
		recordings = append(recordings, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, clip.Wrap(clip.ErrIO, "list recordings", "iterate", err)
	}
	return recordings, nil
}

// GetRecording fetches a recording by identifier.
func (s *Store) GetRecording(ctx context.Context, id string) (*Recording, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordingColumns+` FROM recordings WHERE id = ?`, id)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get recording", "recording", id)
	}
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, "get recording", "", err)
	}
	return rec, nil
}

// RenameRecording changes a recording's display name.
func (s *Store) RenameRecording(ctx context.Context, id, name string) error {
	const op = "rename recording"
	name, err := requireName(op, name)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE recordings SET name = ?, updated_at = ? WHERE id = ?`,
		name, nowMillis(), id,
	)
	if err != nil {
		return clip.Wrap(clip.ErrIO, op, "update", err)
	}
	return expectAffected(res, op, "recording", id)
}

// DeleteRecording removes a recording together with its takes and clips.
func (s *Store) DeleteRecording(ctx context.Context, id string) error {
	const op = "delete recording"
	res, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return clip.Wrap(clip.ErrIO, op, "delete", err)
	}
	return expectAffected(res, op, "recording", id)
}

func touchRecording(ctx context.Context, tx *sql.Tx, id string, now int64) error {
	if _, err := tx.ExecContext(ctx, `UPDATE recordings SET updated_at = ? WHERE id = ?`, now, id); err != nil {
		return clip.Wrap(clip.ErrIO, "touch recording", "", err)
	}
	return nil
}
