package library

import (
	"context"
	"database/sql"
	"errors"

	"clipper/internal/clip"
)

const takeColumns = "id, recording_id, file_path, take_number, created_at"

func scanTake(scanner interface{ Scan(dest ...any) error }) (*Take, error) {
	var (
		take     Take
		filePath sql.NullString
		created  int64
	)
	if err := scanner.Scan(&take.ID, &take.RecordingID, &filePath, &take.TakeNumber, &created); err != nil {
		return nil, err
	}
	take.FilePath = filePath.String
	take.CreatedAt = fromMillis(created)
	return &take, nil
}

// AddTake appends a take to a recording, numbering it after the highest
// existing take. filePath may be empty and filled in later.
func (s *Store) AddTake(ctx context.Context, recordingID, filePath string) (*Take, error) {
	const op = "add take"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM recordings WHERE id = ?`, recordingID).Scan(&exists); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "lookup recording", err)
	}
	if exists == 0 {
		return nil, notFound(op, "recording", recordingID)
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(take_number), 0) + 1 FROM takes WHERE recording_id = ?`, recordingID,
	).Scan(&next); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "next take number", err)
	}

	id := newID()
	now := nowMillis()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO takes (id, recording_id, file_path, take_number, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, recordingID, nullableString(filePath), next, now,
	); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "insert", err)
	}
	if err := touchRecording(ctx, tx, recordingID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "commit", err)
	}
	return s.GetTake(ctx, id)
}

// GetTake fetches a take by identifier.
func (s *Store) GetTake(ctx context.Context, id string) (*Take, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+takeColumns+` FROM takes WHERE id = ?`, id)
	take, err := scanTake(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get take", "take", id)
	}
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, "get take", "", err)
	}
	return take, nil
}

// TakesForRecording lists a recording's takes by take number.
func (s *Store) TakesForRecording(ctx context.Context, recordingID string) ([]Take, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+takeColumns+` FROM takes WHERE recording_id = ? ORDER BY take_number ASC`,
		recordingID,
	)
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, "list takes", "query", err)
	}
	defer rows.Close()

	var takes []Take
	for rows.Next() {
		take, err := scanTake(rows)
		if err != nil {
			return nil, clip.Wrap(clip.ErrIO, "list takes", "scan", err)
		}
		takes = append(takes, *take)
	}
	if err := rows.Err(); err != nil {
		return nil, clip.Wrap(clip.ErrIO, "list takes", "iterate", err)
	}
	return takes, nil
}

// UpdateTakeFilePath records where a take's media was written.
func (s *Store) UpdateTakeFilePath(ctx context.Context, id, filePath string) error {
	const op = "update take"
	res, err := s.db.ExecContext(ctx, `UPDATE takes SET file_path = ? WHERE id = ?`, nullableString(filePath), id)
	if err != nil {
		return clip.Wrap(clip.ErrIO, op, "update", err)
	}
	return expectAffected(res, op, "take", id)
}

// DeleteTake removes a take and its clips.
func (s *Store) DeleteTake(ctx context.Context, id string) error {
	const op = "delete take"
	res, err := s.db.ExecContext(ctx, `DELETE FROM takes WHERE id = ?`, id)
	if err != nil {
		return clip.Wrap(clip.ErrIO, op, "delete", err)
	}
	return expectAffected(res, op, "take", id)
}
