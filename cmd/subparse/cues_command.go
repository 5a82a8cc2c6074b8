package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subparse/internal/cuestore"
	"subparse/internal/session"
	"subparse/internal/ssa"
)

func newCuesCommand(ctx *commandContext) *cobra.Command {
	cuesCmd := &cobra.Command{
		Use:   "cues",
		Short: "Browse chunks saved to the cue store",
	}
	cuesCmd.AddCommand(newCuesSessionsCommand(ctx))
	cuesCmd.AddCommand(newCuesListCommand(ctx))
	return cuesCmd
}

func newCuesSessionsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored decode sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReadOnlyStore(cmd, ctx, func(store *cuestore.Store) error {
				sessions, err := store.ListSessions(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, sessionsJSON(sessions))
				}
				if len(sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions stored")
					return nil
				}
				rows := make([][]string, 0, len(sessions))
				for _, rec := range sessions {
					finished := "running"
					if !rec.FinishedAt.IsZero() {
						finished = humanize.Time(rec.FinishedAt)
					}
					rows = append(rows, []string{
						shortID(rec.ID),
						rec.Source,
						valueOrDash(rec.Encoding),
						strconv.Itoa(rec.CueCount),
						humanize.Time(rec.StartedAt),
						finished,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Source", "Encoding", "Cues", "Started", "Finished"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newCuesListCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the chunks of one session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID = strings.TrimSpace(sessionID)
			if sessionID == "" {
				return errors.New("--session is required")
			}
			return withReadOnlyStore(cmd, ctx, func(store *cuestore.Store) error {
				cues, err := store.ListCues(cmd.Context(), sessionID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, cuesJSON(cues))
				}
				if len(cues) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Session has no cues")
					return nil
				}
				rows := make([][]string, 0, len(cues))
				for _, cue := range cues {
					rows = append(rows, []string{
						strconv.Itoa(cue.Seq),
						ssa.FormatTimestamp(cue.Start),
						ssa.FormatTimestamp(cue.Duration),
						singleLine(cue.Text),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "Start", "Duration", "Text"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID or unique prefix")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func withReadOnlyStore(cmd *cobra.Command, ctx *commandContext, fn func(*cuestore.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := cuestore.OpenReadOnly(cmd.Context(), cfg.Store.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(cmd.OutOrStdout(), "No cue store at %s (run parse with --store first)\n", cfg.Store.Path)
			return nil
		}
		return err
	}
	defer store.Close()
	return fn(store)
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

type sessionJSON struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Codec      string `json:"codec,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	CueCount   int    `json:"cue_count"`
}

func sessionsJSON(records []cuestore.SessionRecord) []sessionJSON {
	out := make([]sessionJSON, 0, len(records))
	for _, rec := range records {
		item := sessionJSON{
			ID:        rec.ID,
			Source:    rec.Source,
			Codec:     rec.Codec,
			Encoding:  rec.Encoding,
			StartedAt: rec.StartedAt.Format(time.RFC3339),
			CueCount:  rec.CueCount,
		}
		if !rec.FinishedAt.IsZero() {
			item.FinishedAt = rec.FinishedAt.Format(time.RFC3339)
		}
		out = append(out, item)
	}
	return out
}

type cueJSON struct {
	Seq        int    `json:"seq"`
	StartMS    *int64 `json:"start_ms,omitempty"`
	DurationMS *int64 `json:"duration_ms,omitempty"`
	Text       string `json:"text"`
}

func cuesJSON(cues []cuestore.Cue) []cueJSON {
	out := make([]cueJSON, 0, len(cues))
	for _, cue := range cues {
		out = append(out, cueJSON{
			Seq:        cue.Seq,
			StartMS:    session.Millis(cue.Start),
			DurationMS: session.Millis(cue.Duration),
			Text:       cue.Text,
		})
	}
	return out
}
