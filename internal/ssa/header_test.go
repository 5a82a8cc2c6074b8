package ssa_test

import (
	"errors"
	"testing"

	"subparse/internal/ssa"
)

func TestValidateHeader(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, "[Script Info]\nTitle: x\n"...)
	h, err := ssa.ValidateHeader(data)
	if err != nil {
		t.Fatalf("ValidateHeader returned error: %v", err)
	}
	if h.Text != "[Script Info]\nTitle: x\n" || h.Truncated {
		t.Fatalf("unexpected header %+v", h)
	}
}

func TestValidateHeaderTruncatesInvalidUTF8(t *testing.T) {
	h, err := ssa.ValidateHeader([]byte("[Script Info]\nTitle: caf\xe9\n"))
	if err != nil {
		t.Fatalf("ValidateHeader returned error: %v", err)
	}
	if !h.Truncated || h.BadOffset != 24 || h.Text != "[Script Info]\nTitle: caf" {
		t.Fatalf("unexpected header %+v", h)
	}
}

func TestValidateHeaderRejectsMissingMarker(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("   \n"), []byte("[Events]\nFormat: Layer, Start, End, Text\n")} {
		_, err := ssa.ValidateHeader(data)
		if !errors.Is(err, ssa.ErrMalformedHeader) {
			t.Fatalf("ValidateHeader(%q) = %v, want ErrMalformedHeader", data, err)
		}
		var hdrErr *ssa.HeaderError
		if !errors.As(err, &hdrErr) {
			t.Fatalf("expected HeaderError, got %T", err)
		}
	}
}

func TestPrimeLearnsEventsLayout(t *testing.T) {
	h, err := ssa.ValidateHeader(ssa.DefaultHeader())
	if err != nil {
		t.Fatalf("default header invalid: %v", err)
	}
	var st ssa.State
	st.Prime(h)
	if st.Phase != ssa.PhaseFormatKnown || st.FieldCount != 10 {
		t.Fatalf("expected primed layout, got %s/%d", st.Phase, st.FieldCount)
	}

	text, ok, err := st.ParseLine("0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Framed")
	if err != nil || !ok || text != "Framed" {
		t.Fatalf("unexpected framed record %q ok=%v err=%v", text, ok, err)
	}
}
