package testsupport

import (
	"context"
	"testing"

	"subparse/internal/config"
	"subparse/internal/cuestore"
)

// MustOpenStore opens the cue store configured in cfg and closes it when the
// test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *cuestore.Store {
	t.Helper()

	store, err := cuestore.Open(context.Background(), cfg.Store.Path)
	if err != nil {
		t.Fatalf("open cue store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
