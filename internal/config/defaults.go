package config

const (
	defaultConfigPath      = "~/.config/subparse/config.toml"
	projectConfigName      = "subparse.toml"
	defaultEncodingEnv     = "SUBTITLE_ENCODING"
	defaultChunkSize       = 4096
	defaultStorePath       = "~/.local/share/subparse/cues.db"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	fallbackEncodingEnvVar = "SUBPARSE_FALLBACK_ENCODING"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Decode: Decode{
			EncodingEnv: defaultEncodingEnv,
		},
		Input: Input{
			ChunkSize: defaultChunkSize,
		},
		Store: Store{
			Path: defaultStorePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
