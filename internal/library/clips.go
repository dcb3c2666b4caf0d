package library

import (
	"context"
	"database/sql"
	"fmt"

	"clipper/internal/clip"
)

const clipColumns = "id, recording_id, take_id, source_start_time, source_end_time, position, text, archived, created_at"

func scanClip(scanner interface{ Scan(dest ...any) error }) (*StoredClip, error) {
	var (
		c        StoredClip
		text     sql.NullString
		archived int
		created  int64
	)
	if err := scanner.Scan(&c.ID, &c.RecordingID, &c.TakeID, &c.Start, &c.End, &c.Position, &text, &archived, &created); err != nil {
		return nil, err
	}
	c.Text = text.String
	c.Archived = archived != 0
	c.CreatedAt = fromMillis(created)
	return &c, nil
}

// SaveClipsForTake replaces the active clips detected from a take. Archived
// clips of the take are kept. New clips are positioned after the recording's
// remaining active clips, in the order given.
func (s *Store) SaveClipsForTake(ctx context.Context, takeID string, clips []clip.Clip) ([]StoredClip, error) {
	const op = "save clips"
	take, err := s.GetTake(ctx, takeID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clips WHERE take_id = ? AND archived = 0`, takeID); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "delete previous clips", err)
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM clips WHERE recording_id = ? AND archived = 0`,
		take.RecordingID,
	).Scan(&next); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "next position", err)
	}

	now := nowMillis()
	saved := make([]StoredClip, 0, len(clips))
	for i, c := range clips {
		stored := StoredClip{
			ID:          newID(),
			RecordingID: take.RecordingID,
			TakeID:      takeID,
			Start:       c.Start,
			End:         c.End,
			Position:    next + i,
			CreatedAt:   fromMillis(now),
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO clips (`+clipColumns+`) VALUES (?, ?, ?, ?, ?, ?, NULL, 0, ?)`,
			stored.ID, stored.RecordingID, stored.TakeID, stored.Start, stored.End, stored.Position, now,
		); err != nil {
			return nil, clip.Wrap(clip.ErrIO, op, fmt.Sprintf("insert clip %d", i), err)
		}
		saved = append(saved, stored)
	}

	if err := touchRecording(ctx, tx, take.RecordingID, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "commit", err)
	}
	return saved, nil
}

// ClipsForRecording lists the recording's active clips in position order.
func (s *Store) ClipsForRecording(ctx context.Context, recordingID string) ([]StoredClip, error) {
	return s.queryClips(ctx, "list clips",
		`SELECT `+clipColumns+` FROM clips WHERE recording_id = ? AND archived = 0 ORDER BY position ASC, created_at ASC`,
		recordingID,
	)
}

// ArchivedClips lists the recording's archived clips in position order.
func (s *Store) ArchivedClips(ctx context.Context, recordingID string) ([]StoredClip, error) {
	return s.queryClips(ctx, "list archived clips",
		`SELECT `+clipColumns+` FROM clips WHERE recording_id = ? AND archived = 1 ORDER BY position ASC, created_at ASC`,
		recordingID,
	)
}

func (s *Store) queryClips(ctx context.Context, op, query string, args ...any) ([]StoredClip, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "query", err)
	}
	defer rows.Close()

	var clips []StoredClip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, clip.Wrap(clip.ErrIO, op, "scan", err)
		}
		clips = append(clips, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "iterate", err)
	}
	return clips, nil
}

// ArchiveClip hides a clip from the recording's active list.
func (s *Store) ArchiveClip(ctx context.Context, id string) error {
	return s.setArchived(ctx, "archive clip", id, true)
}

// RestoreClip returns an archived clip to the active list.
func (s *Store) RestoreClip(ctx context.Context, id string) error {
	return s.setArchived(ctx, "restore clip", id, false)
}

func (s *Store) setArchived(ctx context.Context, op, id string, archived bool) error {
	flag := 0
	if archived {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE clips SET archived = ? WHERE id = ?`, flag, id)
	if err != nil {
		return clip.Wrap(clip.ErrIO, op, "update", err)
	}
	return expectAffected(res, op, "clip", id)
}

// ReorderClips assigns each listed clip its index as position. Every ID must
// belong to the recording; otherwise nothing changes.
func (s *Store) ReorderClips(ctx context.Context, recordingID string, clipIDs []string) error {
	const op = "reorder clips"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return clip.Wrap(clip.ErrIO, op, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, id := range clipIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE clips SET position = ? WHERE id = ? AND recording_id = ?`,
			i, id, recordingID,
		)
		if err != nil {
			return clip.Wrap(clip.ErrIO, op, "update", err)
		}
		if err := expectAffected(res, op, "clip", id); err != nil {
			return err
		}
	}
	if err := touchRecording(ctx, tx, recordingID, nowMillis()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return clip.Wrap(clip.ErrIO, op, "commit", err)
	}
	return nil
}

// ExportList returns the recording's active clips, in position order, as
// clips cut from their take's media file.
func (s *Store) ExportList(ctx context.Context, recordingID string) ([]clip.Clip, error) {
	const op = "export list"
	if _, err := s.GetRecording(ctx, recordingID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, t.file_path, c.source_start_time, c.source_end_time
         FROM clips c JOIN takes t ON t.id = c.take_id
         WHERE c.recording_id = ? AND c.archived = 0
         ORDER BY c.position ASC, c.created_at ASC`,
		recordingID,
	)
	if err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "query", err)
	}
	defer rows.Close()

	var clips []clip.Clip
	for rows.Next() {
		var (
			id       string
			filePath sql.NullString
			c        clip.Clip
		)
		if err := rows.Scan(&id, &filePath, &c.Start, &c.End); err != nil {
			return nil, clip.Wrap(clip.ErrIO, op, "scan", err)
		}
		if !filePath.Valid || filePath.String == "" {
			return nil, clip.Wrap(clip.ErrNotFound, op, fmt.Sprintf("clip %q belongs to a take without media", id), nil)
		}
		c.Source = filePath.String
		clips = append(clips, c)
	}
	if err := rows.Err(); err != nil {
		return nil, clip.Wrap(clip.ErrIO, op, "iterate", err)
	}
	return clips, nil
}
