package testsupport

import (
	"path/filepath"
	"testing"

	"subparse/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Store.Path = filepath.Join(base, "store", "cues.db")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	// Keep tests independent of the machine locale.
	cfgVal.Decode.DisableLocale = true
	cfgVal.Decode.EncodingEnv = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFallbackEncoding sets the configured fallback encoding.
func WithFallbackEncoding(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Decode.FallbackEncoding = name
	}
}

// WithMaxDurationMS sets the chunk duration clamp.
func WithMaxDurationMS(ms int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Timing.MaxDurationMS = ms
	}
}

// WithChunkSize sets the reader chunk size.
func WithChunkSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Input.ChunkSize = size
	}
}

// WithStore enables the cue store.
func WithStore() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Logging.Dir)
}
