package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	got := renderStatusLine("UTF-8", statusWarn, "invalid at byte 3", false)
	want := "  UTF-8:             [WARN] invalid at byte 3"
	if got != want {
		t.Fatalf("renderStatusLine = %q, want %q", got, want)
	}

	colored := renderStatusLine("UTF-8", statusOK, "", true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected colorized line, got %q", colored)
	}
}

func TestStatusReportDoesNotColorizeBuffers(t *testing.T) {
	var buf bytes.Buffer
	r := newStatusReport(&buf)
	r.section("Charset")
	r.line("Size", statusInfo, "%d bytes", 10)

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected escape codes in %q", out)
	}
	if !strings.Contains(out, "== Charset ==") || !strings.Contains(out, "[INFO] 10 bytes") {
		t.Fatalf("unexpected report: %q", out)
	}
}
