package cuestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"subparse/internal/session"
	"subparse/internal/ssa"
)

// SessionRecord describes one stored decode session.
type SessionRecord struct {
	ID         string
	Source     string
	Codec      string
	Encoding   string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the session is open
	CueCount   int
}

// Cue is one stored chunk. Start and Duration are ssa.TimeNone when unknown.
type Cue struct {
	SessionID string
	Seq       int
	Start     time.Duration
	Duration  time.Duration
	Text      string
}

// BeginSession records a new session reading from source.
func (s *Store) BeginSession(ctx context.Context, id, source string) error {
	if err := s.exec(ctx,
		"INSERT INTO sessions (id, source, started_at) VALUES (?, ?, ?)",
		id, source, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SetTags stores the codec and encoding reported for a session.
func (s *Store) SetTags(ctx context.Context, id string, tags session.Tags) error {
	if err := s.exec(ctx,
		"UPDATE sessions SET codec = ?, encoding = ? WHERE id = ?",
		tags.Codec, tags.Encoding, id,
	); err != nil {
		return fmt.Errorf("update session tags: %w", err)
	}
	return nil
}

// AddCue stores one chunk and bumps the session's cue count.
func (s *Store) AddCue(ctx context.Context, chunk session.TextChunk) error {
	if err := s.exec(ctx,
		"INSERT INTO cues (session_id, seq, start_ms, duration_ms, text) VALUES (?, ?, ?, ?, ?)",
		chunk.SessionID, chunk.Seq, nullableMillis(chunk.Start), nullableMillis(chunk.Duration), chunk.Text,
	); err != nil {
		return fmt.Errorf("insert cue %d: %w", chunk.Seq, err)
	}
	if err := s.exec(ctx, "UPDATE sessions SET cue_count = cue_count + 1 WHERE id = ?", chunk.SessionID); err != nil {
		return fmt.Errorf("update cue count: %w", err)
	}
	return nil
}

// FinishSession stamps the session as complete.
func (s *Store) FinishSession(ctx context.Context, id string) error {
	if err := s.exec(ctx,
		"UPDATE sessions SET finished_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// ListSessions returns stored sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source, codec, encoding, started_at, finished_at, cue_count FROM sessions ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			rec                 SessionRecord
			codec, encoding     sql.NullString
			started, finishedAt sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &codec, &encoding, &started, &finishedAt, &rec.CueCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.Codec = codec.String
		rec.Encoding = encoding.String
		rec.StartedAt = parseTime(started)
		rec.FinishedAt = parseTime(finishedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListCues returns the cues of one session in emission order. A session ID
// prefix is accepted when it is unambiguous.
func (s *Store) ListCues(ctx context.Context, sessionID string) ([]Cue, error) {
	id, err := s.resolveSessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id, seq, start_ms, duration_ms, text FROM cues WHERE session_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, fmt.Errorf("list cues: %w", err)
	}
	defer rows.Close()

	var out []Cue
	for rows.Next() {
		var (
			cue             Cue
			start, duration sql.NullInt64
		)
		if err := rows.Scan(&cue.SessionID, &cue.Seq, &start, &duration, &cue.Text); err != nil {
			return nil, fmt.Errorf("scan cue: %w", err)
		}
		cue.Start = fromMillis(start)
		cue.Duration = fromMillis(duration)
		out = append(out, cue)
	}
	return out, rows.Err()
}

func (s *Store) resolveSessionID(ctx context.Context, prefix string) (string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM sessions WHERE id LIKE ? || '%' LIMIT 2", prefix)
	if err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("session %q not found", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("session prefix %q is ambiguous", prefix)
	}
}

func nullableMillis(d time.Duration) any {
	if d == ssa.TimeNone {
		return nil
	}
	return d.Milliseconds()
}

func fromMillis(v sql.NullInt64) time.Duration {
	if !v.Valid {
		return ssa.TimeNone
	}
	return time.Duration(v.Int64) * time.Millisecond
}

func parseTime(v sql.NullString) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
