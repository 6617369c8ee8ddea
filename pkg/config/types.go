package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent agentui configuration stored as config.toml
// in the .agentui/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Server      ServerConfig      `toml:"server"`
	Backend     BackendConfig     `toml:"backend"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Client      ClientConfig      `toml:"client"`
	Registry    RegistryConfig    `toml:"registry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// BackendConfig selects and configures the text-generation backend.
// An empty APIKey falls back to the provider's conventional environment
// variable (GEMINI_API_KEY, OPENAI_API_KEY).
type BackendConfig struct {
	Provider        string `toml:"provider,omitempty"`
	Model           string `toml:"model,omitempty"`
	APIKey          string `toml:"api_key,omitempty"`
	BaseURL         string `toml:"base_url,omitempty"`
	ReplayPath      string `toml:"replay_path,omitempty"`
	ReplayChunkSize uint   `toml:"replay_chunk_size,omitempty"`
}

// StorageConfig selects where transcripts are persisted.
type StorageConfig struct {
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig selects where transcript events are published.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// server (e.g. agentui chat). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// RegistryConfig points at an optional components.toml overriding the
// built-in component registry.
type RegistryConfig struct {
	Path string `toml:"path,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"backend.provider": {
		get: func(c *Config) string { return c.Backend.Provider },
		set: func(c *Config, v string) error { c.Backend.Provider = v; return nil },
	},
	"backend.model": {
		get: func(c *Config) string { return c.Backend.Model },
		set: func(c *Config, v string) error { c.Backend.Model = v; return nil },
	},
	"backend.api_key": {
		get: func(c *Config) string { return c.Backend.APIKey },
		set: func(c *Config, v string) error { c.Backend.APIKey = v; return nil },
	},
	"backend.base_url": {
		get: func(c *Config) string { return c.Backend.BaseURL },
		set: func(c *Config, v string) error { c.Backend.BaseURL = v; return nil },
	},
	"backend.replay_path": {
		get: func(c *Config) string { return c.Backend.ReplayPath },
		set: func(c *Config, v string) error { c.Backend.ReplayPath = v; return nil },
	},
	"backend.replay_chunk_size": {
		get: func(c *Config) string {
			if c.Backend.ReplayChunkSize == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Backend.ReplayChunkSize), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for backend.replay_chunk_size: %w", err)
			}
			c.Backend.ReplayChunkSize = uint(n)
			return nil
		},
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error { c.Storage.Driver = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error { c.EventStream.Provider = v; return nil },
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) error { c.Client.Target = v; return nil },
	},
	"registry.path": {
		get: func(c *Config) string { return c.Registry.Path },
		set: func(c *Config, v string) error { c.Registry.Path = v; return nil },
	},
}
