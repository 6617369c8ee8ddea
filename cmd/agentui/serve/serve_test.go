package servecmder

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/eventstream/kafka"
	"github.com/papercomputeco/agentui/pkg/eventstream/nop"
	"github.com/papercomputeco/agentui/pkg/logger"
	"github.com/papercomputeco/agentui/pkg/storage/inmemory"
	"github.com/papercomputeco/agentui/pkg/storage/sqlite"
)

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("registers flags from the shared registry with config defaults", func() {
		cmd := NewServeCmd()

		listen := cmd.Flags().Lookup("listen")
		Expect(listen).NotTo(BeNil())
		Expect(listen.Shorthand).To(Equal("l"))
		Expect(listen.DefValue).To(Equal(":8000"))

		Expect(cmd.Flags().Lookup("provider").DefValue).To(Equal("gemini"))
		Expect(cmd.Flags().Lookup("replay-chunk-size").DefValue).To(Equal("16"))
		Expect(cmd.Flags().Lookup("storage").DefValue).To(Equal("inmemory"))
		Expect(cmd.Flags().Lookup("eventstream").DefValue).To(Equal("nop"))
		Expect(cmd.Flags().Lookup("log-file")).NotTo(BeNil())
	})
})

var _ = Describe("serveCommander", func() {
	var (
		c      *serveCommander
		tmpDir string
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "agentui-serve-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		c = &serveCommander{logger: logger.Nop()}
		ctx = context.Background()
	})

	Describe("newStorageDriver", func() {
		It("defaults to in-memory storage", func() {
			driver, err := c.newStorageDriver(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
		})

		It("opens a SQLite database at the configured path", func() {
			c.storageDriver = StorageSQLite
			c.sqlitePath = filepath.Join(tmpDir, "agentui.sqlite")

			driver, err := c.newStorageDriver(ctx)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(driver.Close)
			Expect(driver).To(BeAssignableToTypeOf(&sqlite.Driver{}))

			_, err = os.Stat(c.sqlitePath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("requires a DSN for postgres", func() {
			c.storageDriver = StoragePostgres
			_, err := c.newStorageDriver(ctx)
			Expect(err).To(MatchError(ContainSubstring("storage.postgres_dsn")))
		})

		It("rejects unknown drivers", func() {
			c.storageDriver = "mongo"
			_, err := c.newStorageDriver(ctx)
			Expect(err).To(MatchError(ContainSubstring(`unknown storage driver "mongo"`)))
		})
	})

	Describe("newPublisher", func() {
		It("defaults to the nop publisher", func() {
			p, err := c.newPublisher()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
		})

		It("requires brokers for kafka", func() {
			c.eventStream = EventStreamKafka
			c.kafkaBrokers = " , "
			_, err := c.newPublisher()
			Expect(err).To(MatchError(kafka.ErrNoBrokers))
		})

		It("creates a kafka publisher", func() {
			c.eventStream = EventStreamKafka
			c.kafkaBrokers = "localhost:9092"
			c.kafkaTopic = "agentui.test"

			p, err := c.newPublisher()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
			Expect(p.Close()).To(Succeed())
		})

		It("rejects unknown providers", func() {
			c.eventStream = "nats"
			_, err := c.newPublisher()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("newBackend", func() {
		It("serves without a backend when the replay file is unset", func() {
			c.provider = "replay"
			b, err := c.newBackend(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeNil())
		})

		It("creates a replay backend", func() {
			c.provider = "replay"
			c.replayPath = filepath.Join(tmpDir, "transcript.txt")
			c.replayChunkSize = 8

			b, err := c.newBackend(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).NotTo(BeNil())
		})

		It("fails on an unknown provider", func() {
			c.provider = "llama"
			_, err := c.newBackend(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("newRegistry", func() {
		It("uses the default components without a registry file", func() {
			registry, err := c.newRegistry(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(registry.Names()).To(HaveLen(len(event.DefaultComponents())))
		})

		It("loads the registry file", func() {
			cctx, cancel := context.WithCancel(ctx)
			DeferCleanup(cancel)

			c.registryPath = filepath.Join(tmpDir, "components.toml")
			Expect(os.WriteFile(c.registryPath, []byte(`
[[component]]
name = "map"
description = "Map with markers"
props = '{"markers": []}'
`), 0o600)).To(Succeed())

			registry, err := c.newRegistry(cctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(registry.Names()).To(Equal([]string{"map"}))
		})

		It("fails on a missing registry file", func() {
			c.registryPath = filepath.Join(tmpDir, "missing.toml")
			_, err := c.newRegistry(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("newLogger", func() {
		It("also writes JSON to the log file", func() {
			c.logFile = filepath.Join(tmpDir, "serve.log")

			log, closeLog, err := c.newLogger()
			Expect(err).NotTo(HaveOccurred())
			log.Info("hello", "key", "value")
			closeLog()

			data, err := os.ReadFile(c.logFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"msg":"hello"`))
			Expect(string(data)).To(ContainSubstring(`"key":"value"`))
		})
	})
})

var _ = Describe("splitBrokers", func() {
	It("trims and drops empty entries", func() {
		Expect(splitBrokers("a:9092, b:9092,,")).To(Equal([]string{"a:9092", "b:9092"}))
		Expect(splitBrokers("")).To(BeEmpty())
	})
})
