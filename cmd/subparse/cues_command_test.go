package main

import (
	"encoding/json"
	"strings"
	"testing"

	"subparse/internal/testsupport"
)

func TestParseStoreAndListCues(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeScript(t, "movie.ass", []byte(testsupport.Script(strings.Split(twoLineScript, "\n")...)))

	out, _, err := runCLI(t, []string{"parse", "--store", path}, env.configPath)
	if err != nil {
		t.Fatalf("parse --store: %v", err)
	}
	requireContains(t, out, "Stored as session")

	out, _, err = runCLI(t, []string{"cues", "sessions", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cues sessions: %v", err)
	}
	var sessions []struct {
		ID       string `json:"id"`
		Source   string `json:"source"`
		Codec    string `json:"codec"`
		CueCount int    `json:"cue_count"`
	}
	if err := json.Unmarshal([]byte(out), &sessions); err != nil {
		t.Fatalf("decode sessions: %v (%s)", err, out)
	}
	if len(sessions) != 1 || sessions[0].CueCount != 2 || sessions[0].Source != path {
		t.Fatalf("unexpected sessions: %#v", sessions)
	}
	if sessions[0].Codec != "SubStation Alpha" {
		t.Fatalf("expected codec tag to be stored, got %q", sessions[0].Codec)
	}

	out, _, err = runCLI(t, []string{"cues", "sessions"}, env.configPath)
	if err != nil {
		t.Fatalf("cues sessions table: %v", err)
	}
	requireContains(t, out, sessions[0].ID[:8])

	out, _, err = runCLI(t, []string{"cues", "list", "--session", sessions[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("cues list: %v", err)
	}
	requireContains(t, out, "Hello")
	requireContains(t, out, "0:00:03.000")
}

func TestCuesWithoutStore(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cues", "sessions"}, env.configPath)
	if err != nil {
		t.Fatalf("cues sessions: %v", err)
	}
	requireContains(t, out, "No cue store")
}

func TestCuesListRequiresSession(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"cues", "list"}, env.configPath); err == nil {
		t.Fatal("expected error without --session")
	}
}

func TestParseStoresWhenEnabledInConfig(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStore())
	path := env.writeScript(t, "movie.ass", []byte(testsupport.Script("Dialogue: 0,0:00:01.00,0:00:02.00,Kept")))

	out, _, err := runCLI(t, []string{"parse", path}, env.configPath)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	requireContains(t, out, "Stored as session")

	out, _, err = runCLI(t, []string{"cues", "sessions", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cues sessions: %v", err)
	}
	var sessions []struct {
		Source   string `json:"source"`
		CueCount int    `json:"cue_count"`
	}
	if err := json.Unmarshal([]byte(out), &sessions); err != nil {
		t.Fatalf("decode sessions: %v (%s)", err, out)
	}
	if len(sessions) != 1 || !strings.HasSuffix(sessions[0].Source, "movie.ass") || sessions[0].CueCount != 1 {
		t.Fatalf("unexpected sessions: %#v", sessions)
	}
}
