package cuestore_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"subparse/internal/cuestore"
	"subparse/internal/session"
	"subparse/internal/ssa"
	"subparse/internal/testsupport"
)

func TestSessionRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.BeginSession(ctx, "abc-123", "movie.ass"); err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	sink := store.Sink("abc-123")
	if err := sink.Tags(ctx, session.Tags{Codec: session.CodecName, Encoding: "UTF-8"}); err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	chunks := []session.TextChunk{
		{Seq: 1, Start: time.Second, Duration: 1500 * time.Millisecond, Text: "Hello"},
		{Seq: 2, Start: ssa.TimeNone, Duration: ssa.TimeNone, Text: "Untimed"},
	}
	for _, chunk := range chunks {
		if err := sink.Push(ctx, chunk); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.ID != "abc-123" || got.Source != "movie.ass" || got.Codec != session.CodecName || got.Encoding != "UTF-8" {
		t.Fatalf("unexpected session: %#v", got)
	}
	if got.CueCount != 2 {
		t.Fatalf("expected cue count 2, got %d", got.CueCount)
	}
	if got.StartedAt.IsZero() || got.FinishedAt.IsZero() {
		t.Fatalf("expected start and finish times, got %#v", got)
	}

	cues, err := store.ListCues(ctx, "abc")
	if err != nil {
		t.Fatalf("ListCues failed: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != time.Second || cues[0].Duration != 1500*time.Millisecond || cues[0].Text != "Hello" {
		t.Fatalf("unexpected first cue: %#v", cues[0])
	}
	if cues[1].Start != ssa.TimeNone || cues[1].Duration != ssa.TimeNone {
		t.Fatalf("expected unknown times to round trip, got %#v", cues[1])
	}
}

func TestListCuesUnknownSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.ListCues(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestListCuesAmbiguousPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"aa-1", "aa-2"} {
		if err := store.BeginSession(ctx, id, "x.ass"); err != nil {
			t.Fatalf("BeginSession failed: %v", err)
		}
	}
	_, err := store.ListCues(ctx, "aa")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("expected ambiguous prefix error, got %v", err)
	}
}

func TestDuplicateCueRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.BeginSession(ctx, "s1", "x.ass"); err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	chunk := session.TextChunk{SessionID: "s1", Seq: 1, Text: "a"}
	if err := store.AddCue(ctx, chunk); err != nil {
		t.Fatalf("AddCue failed: %v", err)
	}
	if err := store.AddCue(ctx, chunk); err == nil {
		t.Fatal("expected duplicate sequence to fail")
	}
}

func TestOpenRejectsSecondWriter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_ = testsupport.MustOpenStore(t, cfg)

	_, err := cuestore.Open(context.Background(), cfg.Store.Path)
	if !errors.Is(err, cuestore.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestOpenReadOnlyWhileWriterHoldsLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	if err := store.BeginSession(ctx, "s1", "x.ass"); err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}

	ro, err := cuestore.OpenReadOnly(ctx, cfg.Store.Path)
	if err != nil {
		t.Fatalf("OpenReadOnly failed: %v", err)
	}
	defer ro.Close()

	sessions, err := ro.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if err := ro.BeginSession(ctx, "s2", "y.ass"); err == nil {
		t.Fatal("expected write on read-only store to fail")
	}
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := cuestore.OpenReadOnly(context.Background(), cfg.Store.Path); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := cuestore.Open(ctx, cfg.Store.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.Store.Path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update schema version: %v", err)
	}
	_ = db.Close()

	_, err = cuestore.Open(ctx, cfg.Store.Path)
	if !errors.Is(err, cuestore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestSessionPumpsIntoStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	s, err := session.New(session.Options{Sink: store.Sink("run-1"), SessionID: "run-1"})
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	if err := store.BeginSession(ctx, s.ID(), "stdin"); err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	script := testsupport.Script(
		"Dialogue: 0,0:00:01.00,0:00:02.00,First",
		"Dialogue: 0,0:00:03.00,0:00:04.50,Second",
	)
	if _, err := session.Pump(ctx, strings.NewReader(script), s, 7); err != nil {
		t.Fatalf("Pump failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	cues, err := store.ListCues(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListCues failed: %v", err)
	}
	if len(cues) != 2 || cues[0].Text != "First" || cues[1].Text != "Second" {
		t.Fatalf("unexpected cues: %#v", cues)
	}
	if cues[1].Duration != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s duration, got %v", cues[1].Duration)
	}
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if sessions[0].Encoding == "" || sessions[0].FinishedAt.IsZero() {
		t.Fatalf("expected tags and finish stamp, got %#v", sessions[0])
	}
}
