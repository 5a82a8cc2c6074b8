package linebuf_test

import (
	"math/rand"
	"strings"
	"testing"

	"subparse/internal/linebuf"
)

func drain(b *linebuf.Buffer) []string {
	var lines []string
	for {
		line, ok := b.PopLine()
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}

func TestPopLineStripsCarriageReturn(t *testing.T) {
	b := linebuf.New()
	b.Push("foo\r\nbar")

	line, ok := b.PopLine()
	if !ok || line != "foo" {
		t.Fatalf("expected foo, got %q (ok=%v)", line, ok)
	}
	if _, ok := b.PopLine(); ok {
		t.Fatal("expected unterminated bar to stay buffered")
	}
	if b.String() != "bar" {
		t.Fatalf("unexpected remainder %q", b.String())
	}

	b.Push("baz\n")
	line, ok = b.PopLine()
	if !ok || line != "barbaz" {
		t.Fatalf("expected barbaz, got %q (ok=%v)", line, ok)
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer, got %d bytes", b.Len())
	}
}

func TestPopLineKeepsLoneCarriageReturn(t *testing.T) {
	b := linebuf.New()
	b.Push("a\rb\n\r\n\n")

	got := drain(b)
	want := []string{"a\rb", "", ""}
	if strings.Join(got, "|") != strings.Join(want, "|") || len(got) != len(want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCarriageReturnSplitAcrossPushes(t *testing.T) {
	b := linebuf.New()
	b.Push("line\r")
	if _, ok := b.PopLine(); ok {
		t.Fatal("no line expected before the newline arrives")
	}
	b.Push("\nnext\n")
	got := drain(b)
	if len(got) != 2 || got[0] != "line" || got[1] != "next" {
		t.Fatalf("unexpected lines %q", got)
	}
}

func TestSplitInvariance(t *testing.T) {
	text := "[Script Info]\r\nTitle: x\n\n[Events]\r\nFormat: Layer, Start, End, Text\nDialogue: 0,0:00:01.00,0:00:02.00,Grüße\r\ntrailing"
	whole := linebuf.New()
	whole.Push(text)
	want := drain(whole)

	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		b := linebuf.New()
		var got []string
		rest := text
		for rest != "" {
			n := 1 + rng.Intn(len(rest))
			b.Push(rest[:n])
			rest = rest[n:]
			got = append(got, drain(b)...)
		}
		if strings.Join(got, "\x00") != strings.Join(want, "\x00") {
			t.Fatalf("iteration %d: got %q want %q", iter, got, want)
		}
		if b.String() != "trailing" {
			t.Fatalf("iteration %d: unexpected remainder %q", iter, b.String())
		}
	}
}

func TestReset(t *testing.T) {
	b := linebuf.New()
	b.Push("partial")
	b.Reset()
	b.Push("fresh\n")
	line, ok := b.PopLine()
	if !ok || line != "fresh" {
		t.Fatalf("expected fresh, got %q", line)
	}
}
