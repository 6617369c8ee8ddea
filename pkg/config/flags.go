package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands.
type Flag struct {
	// Name is the long flag name (e.g. "provider").
	Name string

	// Shorthand is the one-letter short flag (e.g. "p"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "backend.provider").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen          = "listen"
	FlagProvider        = "provider"
	FlagModel           = "model"
	FlagAPIKey          = "api-key"
	FlagBaseURL         = "base-url"
	FlagReplayPath      = "replay"
	FlagReplayChunkSize = "replay-chunk-size"
	FlagStorageDriver   = "storage"
	FlagSQLite          = "sqlite"
	FlagPostgresDSN     = "postgres"
	FlagEventStream     = "eventstream"
	FlagKafkaBrokers    = "kafka-brokers"
	FlagKafkaTopic      = "kafka-topic"
	FlagTarget          = "target"
	FlagRegistry        = "registry"
)

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// Flags is the flag registry shared by every agentui command.
var Flags = FlagSet{
	FlagListen: {
		Name:        FlagListen,
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "Address for the AG-UI server to listen on",
	},
	FlagProvider: {
		Name:        FlagProvider,
		Shorthand:   "p",
		ViperKey:    "backend.provider",
		Description: "Text-generation backend (gemini, openai, replay)",
	},
	FlagModel: {
		Name:        FlagModel,
		Shorthand:   "m",
		ViperKey:    "backend.model",
		Description: "Model name passed to the backend",
	},
	FlagAPIKey: {
		Name:        FlagAPIKey,
		ViperKey:    "backend.api_key",
		Description: "Backend API key (defaults to GEMINI_API_KEY or OPENAI_API_KEY)",
	},
	FlagBaseURL: {
		Name:        FlagBaseURL,
		ViperKey:    "backend.base_url",
		Description: "Override the backend API base URL",
	},
	FlagReplayPath: {
		Name:        FlagReplayPath,
		ViperKey:    "backend.replay_path",
		Description: "Transcript file streamed by the replay backend",
	},
	FlagReplayChunkSize: {
		Name:        FlagReplayChunkSize,
		ViperKey:    "backend.replay_chunk_size",
		Description: "Bytes per chunk emitted by the replay backend",
	},
	FlagStorageDriver: {
		Name:        FlagStorageDriver,
		ViperKey:    "storage.driver",
		Description: "Transcript storage driver (inmemory, sqlite, postgres)",
	},
	FlagSQLite: {
		Name:        FlagSQLite,
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to SQLite database",
	},
	FlagPostgresDSN: {
		Name:        FlagPostgresDSN,
		ViperKey:    "storage.postgres_dsn",
		Description: "PostgreSQL connection string",
	},
	FlagEventStream: {
		Name:        FlagEventStream,
		ViperKey:    "eventstream.provider",
		Description: "Transcript event publisher (nop, kafka)",
	},
	FlagKafkaBrokers: {
		Name:        FlagKafkaBrokers,
		ViperKey:    "eventstream.brokers",
		Description: "Comma-separated Kafka broker addresses",
	},
	FlagKafkaTopic: {
		Name:        FlagKafkaTopic,
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic for transcript events",
	},
	FlagTarget: {
		Name:        FlagTarget,
		Shorthand:   "t",
		ViperKey:    "client.target",
		Description: "AG-UI server URL",
	},
	FlagRegistry: {
		Name:        FlagRegistry,
		Shorthand:   "r",
		ViperKey:    "registry.path",
		Description: "Component registry TOML file, reloaded on change",
	},
}
