package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Script assembles a minimal SSA/ASS script with a four column events
// layout followed by the given dialogue lines.
func Script(dialogue ...string) string {
	var b strings.Builder
	b.WriteString("[Script Info]\nTitle: test\nScriptType: v4.00+\n\n")
	b.WriteString("[Events]\nFormat: Layer, Start, End, Text\n")
	for _, line := range dialogue {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
