package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/saintfish/chardet"
	"github.com/spf13/cobra"

	"subparse/internal/charset"
)

type detectReport struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	BOM          string `json:"bom,omitempty"`
	ValidUTF8    bool   `json:"valid_utf8"`
	InvalidAt    int    `json:"invalid_at,omitempty"`
	Guess        string `json:"guess,omitempty"`
	GuessLang    string `json:"guess_language,omitempty"`
	Confidence   int    `json:"guess_confidence,omitempty"`
	Fallback     string `json:"fallback"`
	Decision     string `json:"decision"`
	DecodedRunes int    `json:"decoded_runes"`
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var encoding string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Show how a script's character set would be decoded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			report := buildDetectReport(args[0], data, ladderOptions(cfg, encoding))
			if jsonOut {
				return writeJSON(cmd, report)
			}
			printDetectReport(newStatusReport(cmd.OutOrStdout()), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", "", "Fallback encoding to assume for input that is not valid UTF-8")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func buildDetectReport(path string, data []byte, opts charset.LadderOptions) detectReport {
	report := detectReport{
		Path:      path,
		Size:      int64(len(data)),
		ValidUTF8: utf8.Valid(data),
	}
	if !report.ValidUTF8 {
		report.InvalidAt = firstInvalidUTF8(data)
	}

	ladder := charset.NewLadder(opts)
	if enc := charset.DetectBOM(data); enc != "" {
		report.BOM = enc.String()
		ladder.SetDetected(enc)
	}
	if len(data) > 0 {
		if result, err := chardet.NewTextDetector().DetectBest(data); err == nil {
			report.Guess = result.Charset
			report.GuessLang = result.Language
			report.Confidence = result.Confidence
		}
	}
	report.Fallback = ladder.Fallback().String()

	text, _ := ladder.Convert(data)
	report.DecodedRunes = utf8.RuneCountInString(text)
	report.Decision = ladder.Describe()
	return report
}

func printDetectReport(r *statusReport, report detectReport) {
	r.section("Charset: " + report.Path)
	r.line("Size", statusInfo, "%s", humanize.Bytes(uint64(report.Size)))
	if report.BOM != "" {
		r.line("Byte-order mark", statusOK, "%s", report.BOM)
	} else {
		r.line("Byte-order mark", statusInfo, "none")
	}
	switch {
	case report.ValidUTF8:
		r.line("UTF-8", statusOK, "valid")
	case report.BOM != "":
		r.line("UTF-8", statusInfo, "not UTF-8 (first bad byte at %d)", report.InvalidAt)
	default:
		r.line("UTF-8", statusWarn, "invalid at byte %d", report.InvalidAt)
	}
	if report.Guess != "" {
		lang := report.GuessLang
		if lang == "" {
			lang = "unknown language"
		}
		r.line("Detector guess", statusInfo, "%s (%s, %d%% confidence)", report.Guess, lang, report.Confidence)
	} else {
		r.line("Detector guess", statusInfo, "none")
	}
	r.line("Fallback", statusInfo, "%s", report.Fallback)
	r.line("Decision", statusOK, "%s, %s characters", report.Decision, humanize.Comma(int64(report.DecodedRunes)))
}

func firstInvalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}
