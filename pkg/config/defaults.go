package config

const (
	defaultServerListen = ":8000"

	defaultBackendProvider = "gemini"
	defaultReplayChunkSize = 16

	defaultStorageDriver = "inmemory"

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "agentui.transcripts"

	defaultClientTarget = "http://localhost:8000"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultServerListen,
		},
		Backend: BackendConfig{
			Provider:        defaultBackendProvider,
			ReplayChunkSize: defaultReplayChunkSize,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
	}
}
