package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"subparse/internal/cuestore"
	"subparse/internal/logging"
	"subparse/internal/session"
	"subparse/internal/ssa"
)

type parseOptions struct {
	chunkSize    int
	encoding     string
	maxDuration  time.Duration
	headerPath   string
	stockHeader  bool
	output       string
	store        bool
	discontEvery int
}

func newParseCommand(ctx *commandContext) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Decode an SSA/ASS script into timed text chunks",
		Long: "Stream a script through a decoding session and print the dialogue chunks it emits.\n" +
			"Use - to read from standard input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("chunk-size") {
				opts.chunkSize = cfg.Input.ChunkSize
			}
			if !cmd.Flags().Changed("max-duration") {
				opts.maxDuration = cfg.MaxDuration()
			}
			if !cmd.Flags().Changed("store") {
				opts.store = cfg.Store.Enabled
			}
			switch opts.output {
			case "table", "json", "srt":
			default:
				return fmt.Errorf("unsupported output %q (want table, json or srt)", opts.output)
			}

			source := args[0]
			input, closeInput, err := openInput(cmd, source)
			if err != nil {
				return err
			}
			defer closeInput()

			var rows [][]string
			var out session.Sink
			switch opts.output {
			case "json":
				out = session.NewJSONLinesSink(cmd.OutOrStdout())
			case "srt":
				out = session.NewSRTSink(cmd.OutOrStdout())
			default:
				out = session.FuncSink(func(_ context.Context, chunk session.TextChunk) error {
					rows = append(rows, []string{
						strconv.Itoa(chunk.Seq),
						ssa.FormatTimestamp(chunk.Start),
						ssa.FormatTimestamp(chunk.Duration),
						singleLine(chunk.Text),
					})
					return nil
				})
			}

			sessionID := uuid.NewString()
			sink := out
			if opts.store {
				store, err := cuestore.Open(cmd.Context(), cfg.Store.Path)
				if err != nil {
					return fmt.Errorf("open cue store: %w", err)
				}
				defer store.Close()
				if err := store.BeginSession(cmd.Context(), sessionID, source); err != nil {
					return err
				}
				sink = session.MultiSink{out, store.Sink(sessionID)}
			}

			s, err := session.New(session.Options{
				Sink:            sink,
				Charset:         ladderOptions(cfg, opts.encoding),
				MaxDuration:     opts.maxDuration,
				PrimeFromHeader: opts.headerPath != "" || opts.stockHeader,
				SessionID:       sessionID,
				Logger:          logger,
			})
			if err != nil {
				return err
			}

			switch {
			case opts.headerPath != "":
				header, err := os.ReadFile(opts.headerPath)
				if err != nil {
					return fmt.Errorf("read header: %w", err)
				}
				if err := s.SetHeader(header); err != nil {
					return err
				}
			case opts.stockHeader:
				if err := s.SetHeader(ssa.DefaultHeader()); err != nil {
					return err
				}
			}

			runCtx := logging.WithSessionID(cmd.Context(), sessionID)
			runErr := runParse(runCtx, input, s, opts)
			if err := s.Close(); err != nil && runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return runErr
			}

			if opts.output == "table" {
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No dialogue found")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), renderTable(
						[]string{"#", "Start", "Duration", "Text"},
						rows,
						[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
					))
				}
			}

			summaryOut := cmd.OutOrStdout()
			if opts.output != "table" {
				summaryOut = cmd.ErrOrStderr()
			}
			writeParseSummary(summaryOut, s, opts.store)
			logging.WithContext(runCtx, logger).Debug("parse complete",
				logging.Int("chunks", s.Stats().Chunks),
				logging.Int64("bytes", s.Stats().Bytes),
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", session.DefaultChunkSize, "Bytes per input buffer")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "Fallback encoding for input that is not valid UTF-8")
	cmd.Flags().DurationVar(&opts.maxDuration, "max-duration", 0, "Clamp chunk durations (0 disables)")
	cmd.Flags().StringVar(&opts.headerPath, "header", "", "Script header supplied out of band, as a container would")
	cmd.Flags().BoolVar(&opts.stockHeader, "default-header", false, "Assume the standard ten column events layout for input without a header")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, json or srt")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Persist chunks to the cue store")
	cmd.Flags().IntVar(&opts.discontEvery, "discont-every", 0, "Mark every Nth buffer as a discontinuity")
	return cmd
}

func openInput(cmd *cobra.Command, source string) (io.Reader, func(), error) {
	if source == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	file, err := os.Open(source)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

// runParse pumps the whole input. With discontEvery set it feeds buffers
// itself, flagging every Nth one as discontinuous.
func runParse(ctx context.Context, r io.Reader, s *session.Session, opts parseOptions) error {
	if opts.discontEvery <= 0 {
		_, err := session.Pump(ctx, r, s, opts.chunkSize)
		return err
	}

	chunkSize := opts.chunkSize
	if chunkSize <= 0 {
		chunkSize = session.DefaultChunkSize
	}
	buf := make([]byte, chunkSize)
	for index := 1; ; index++ {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			if _, err := s.HandleBuffer(ctx, session.Buffer{
				Data:    buf[:n],
				Discont: index%opts.discontEvery == 0,
			}); err != nil {
				return err
			}
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read input: %w", readErr)
		}
	}
	_, err := s.Finish(ctx)
	return err
}

func writeParseSummary(out io.Writer, s *session.Session, stored bool) {
	stats := s.Stats()
	fmt.Fprintf(out, "Read %s in %s buffers; %d chunks from %d lines\n",
		humanize.Bytes(uint64(stats.Bytes)), humanize.Comma(int64(stats.Buffers)), stats.Chunks, stats.Lines)
	fmt.Fprintf(out, "Encoding: %s\n", s.Encoding())
	if stats.Resets > 0 {
		fmt.Fprintf(out, "Discontinuities: %d\n", stats.Resets)
	}
	if skipped := stats.RecordErrors + stats.TimestampErrors; skipped > 0 {
		var parts []string
		if stats.RecordErrors > 0 {
			parts = append(parts, fmt.Sprintf("%d malformed records", stats.RecordErrors))
		}
		if stats.TimestampErrors > 0 {
			parts = append(parts, fmt.Sprintf("%d bad timestamps", stats.TimestampErrors))
		}
		fmt.Fprintf(out, "Problems: %s\n", strings.Join(parts, ", "))
	}
	if stored {
		fmt.Fprintf(out, "Stored as session %s\n", s.ID())
	}
}
