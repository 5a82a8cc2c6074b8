package cuestore

import (
	"context"

	"subparse/internal/session"
)

// Sink stores every chunk of one session.
type Sink struct {
	store     *Store
	sessionID string
}

// Sink returns a session.Sink writing chunks for sessionID. The session row
// must exist (see BeginSession). Closing the sink stamps the session finished.
func (s *Store) Sink(sessionID string) *Sink {
	return &Sink{store: s, sessionID: sessionID}
}

func (k *Sink) Push(ctx context.Context, chunk session.TextChunk) error {
	chunk.SessionID = k.sessionID
	return k.store.AddCue(ctx, chunk)
}

func (k *Sink) Tags(ctx context.Context, tags session.Tags) error {
	return k.store.SetTags(ctx, k.sessionID, tags)
}

func (k *Sink) Close() error {
	return k.store.FinishSession(context.Background(), k.sessionID)
}
