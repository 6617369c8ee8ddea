// Package servecmder provides the serve command that runs the AG-UI server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/agentui/api"
	"github.com/papercomputeco/agentui/cmd/agentui/sqlitepath"
	"github.com/papercomputeco/agentui/pkg/backend"
	"github.com/papercomputeco/agentui/pkg/config"
	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/eventstream"
	"github.com/papercomputeco/agentui/pkg/eventstream/kafka"
	"github.com/papercomputeco/agentui/pkg/eventstream/nop"
	"github.com/papercomputeco/agentui/pkg/logger"
	"github.com/papercomputeco/agentui/pkg/metrics"
	"github.com/papercomputeco/agentui/pkg/normalizer"
	"github.com/papercomputeco/agentui/pkg/prompt"
	"github.com/papercomputeco/agentui/pkg/storage"
	"github.com/papercomputeco/agentui/pkg/storage/inmemory"
	"github.com/papercomputeco/agentui/pkg/storage/postgres"
	"github.com/papercomputeco/agentui/pkg/storage/sqlite"
	"github.com/papercomputeco/agentui/pkg/transcript/worker"
)

// Storage driver and event stream provider names.
const (
	StorageInMemory = "inmemory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	EventStreamNop   = "nop"
	EventStreamKafka = "kafka"
)

type serveCommander struct {
	listen          string
	provider        string
	model           string
	apiKey          string
	baseURL         string
	replayPath      string
	replayChunkSize uint

	storageDriver string
	sqlitePath    string
	postgresDSN   string

	eventStream  string
	kafkaBrokers string
	kafkaTopic   string

	registryPath string
	configDir    string
	logFile      string
	debug        bool

	logger *slog.Logger
}

// serveFlags are the registry keys bound to viper for the serve command.
var serveFlags = []string{
	config.FlagListen,
	config.FlagProvider,
	config.FlagModel,
	config.FlagAPIKey,
	config.FlagBaseURL,
	config.FlagReplayPath,
	config.FlagReplayChunkSize,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagEventStream,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagRegistry,
}

const serveLongDesc string = `Run the AG-UI server.

POST /agent streams the backend's answer to a user message as NDJSON
"message" and "update_ui" events. Every request is recorded as a transcript
and stored in the background by the configured storage driver.

Configuration precedence: flags, AGENTUI_* environment variables,
config.toml in the .agentui/ directory, built-in defaults.

Supported backends: gemini, openai, replay
Supported storage drivers: inmemory, sqlite, postgres
Supported event streams: nop, kafka

Examples:
  agentui serve
  agentui serve --provider openai --model gpt-4o-mini
  agentui serve --provider replay --replay transcript.txt
  agentui serve --storage sqlite --registry components.toml`

const serveShortDesc string = "Run the AG-UI server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

			cmder.listen = v.GetString("server.listen")
			cmder.provider = v.GetString("backend.provider")
			cmder.model = v.GetString("backend.model")
			cmder.apiKey = v.GetString("backend.api_key")
			cmder.baseURL = v.GetString("backend.base_url")
			cmder.replayPath = v.GetString("backend.replay_path")
			cmder.replayChunkSize = v.GetUint("backend.replay_chunk_size")
			cmder.storageDriver = v.GetString("storage.driver")
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresDSN = v.GetString("storage.postgres_dsn")
			cmder.eventStream = v.GetString("eventstream.provider")
			cmder.kafkaBrokers = v.GetString("eventstream.brokers")
			cmder.kafkaTopic = v.GetString("eventstream.topic")
			cmder.registryPath = v.GetString("registry.path")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagReplayPath, &cmder.replayPath)
	config.AddUintFlag(cmd, config.Flags, config.FlagReplayChunkSize, &cmder.replayChunkSize)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStream, &cmder.eventStream)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)
	config.AddStringFlag(cmd, config.Flags, config.FlagRegistry, &cmder.registryPath)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run() error {
	var closeLog func()
	var err error
	c.logger, closeLog, err = c.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry, err := c.newRegistry(ctx)
	if err != nil {
		return err
	}

	b, err := c.newBackend(ctx)
	if err != nil {
		return err
	}

	driver, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	collector := metrics.New()

	pool, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: publisher,
		Reporter:  collector,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating transcript worker pool: %w", err)
	}

	server := api.NewServer(api.Config{
		ListenAddr:  c.listen,
		Backend:     b,
		Registry:    registry,
		Prompt:      prompt.NewBuilder(registry),
		Transcripts: pool,
		Metrics:     collector,
	}, driver, c.logger)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errChan:
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	}

	cancel()
	if shutdownErr := server.Shutdown(); shutdownErr != nil {
		c.logger.Warn("server shutdown", "error", shutdownErr)
	}

	// Drains queued transcripts before the driver and publisher close.
	pool.Close()

	return err
}

// newLogger builds the pretty stdout logger, fanned out to a JSON log file
// when --log-file is set.
func (c *serveCommander) newLogger() (*slog.Logger, func(), error) {
	pretty := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))
	if c.logFile == "" {
		return pretty, func() {}, nil
	}

	file, closer, err := logger.OpenFile(c.logFile, logger.WithDebug(c.debug))
	if err != nil {
		return nil, nil, err
	}

	return logger.Multi(pretty, file), func() { _ = closer.Close() }, nil
}

// newRegistry loads the component registry file, if any, and keeps it in
// sync with the file until ctx is done.
func (c *serveCommander) newRegistry(ctx context.Context) (*event.Registry, error) {
	if c.registryPath == "" {
		return event.NewRegistry(), nil
	}

	components, err := event.LoadRegistryFile(c.registryPath)
	if err != nil {
		return nil, fmt.Errorf("loading component registry: %w", err)
	}

	registry := event.NewRegistry(components...)
	c.logger.Info("loaded component registry", "path", c.registryPath, "components", len(components))

	go func() {
		if err := registry.Watch(ctx, c.registryPath, c.logger); err != nil {
			c.logger.Error("component registry watcher stopped", "error", err)
		}
	}()

	return registry, nil
}

// newBackend creates the text-generation backend. A missing credential is
// not fatal: the server keeps running and answers every request with the
// configuration message.
func (c *serveCommander) newBackend(ctx context.Context) (normalizer.Backend, error) {
	b, err := backend.New(ctx, backend.Config{
		Provider:        c.provider,
		Model:           c.model,
		APIKey:          c.apiKey,
		BaseURL:         c.baseURL,
		ReplayPath:      c.replayPath,
		ReplayChunkSize: int(c.replayChunkSize),
	})
	if errors.Is(err, backend.ErrNoBackend) {
		c.logger.Warn("serving without a backend", "provider", c.provider, "reason", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}

	c.logger.Info("using backend", "provider", c.provider, "model", c.model)
	return b, nil
}

func (c *serveCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	switch c.storageDriver {
	case "", StorageInMemory:
		c.logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case StorageSQLite:
		path, err := sqlitepath.ResolveSQLitePath(c.sqlitePath, c.configDir)
		if err != nil {
			return nil, err
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		c.logger.Info("using SQLite storage", "path", path)
		return driver, nil

	case StoragePostgres:
		if c.postgresDSN == "" {
			return nil, errors.New("postgres storage requires storage.postgres_dsn")
		}
		driver, err := postgres.NewDriver(ctx, c.postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		c.logger.Info("using PostgreSQL storage")
		return driver, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q (supported: %s, %s, %s)",
			c.storageDriver, StorageInMemory, StorageSQLite, StoragePostgres)
	}
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	switch c.eventStream {
	case "", EventStreamNop:
		return nop.NewPublisher(), nil

	case EventStreamKafka:
		brokers := splitBrokers(c.kafkaBrokers)
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   c.kafkaTopic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		c.logger.Info("publishing transcript events to kafka", "brokers", brokers, "topic", c.kafkaTopic)
		return p, nil

	default:
		return nil, fmt.Errorf("unknown event stream provider %q (supported: %s, %s)",
			c.eventStream, EventStreamNop, EventStreamKafka)
	}
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
