package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/logger"
)

func decode(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

// failingHandler accepts every record and always fails to write it.
type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h failingHandler) WithGroup(string) slog.Handler           { return h }

var _ = Describe("New", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("writes text records at info level by default", func() {
		l := logger.New(logger.WithWriter(&buf))
		l.Info("stream finished", "events", 3)
		l.Debug("hidden")

		Expect(buf.String()).To(ContainSubstring("stream finished"))
		Expect(buf.String()).To(ContainSubstring("events=3"))
		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
	})

	It("lets debug records through with WithDebug", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
		l.Debug("line resolved", "tier", "recovered")

		Expect(buf.String()).To(ContainSubstring("line resolved"))
	})

	It("emits JSON with WithJSON", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.Info("agent stream finished", "events", 2, "outcome", "ok")

		parsed := decode(&buf)
		Expect(parsed["msg"]).To(Equal("agent stream finished"))
		Expect(parsed["events"]).To(BeNumerically("==", 2))
		Expect(parsed["outcome"]).To(Equal("ok"))
	})

	It("prefers pretty output over JSON", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithPretty(true))
		l.Info("listening", "addr", ":8000")

		Expect(buf.String()).To(ContainSubstring("listening"))
		Expect(strings.TrimSpace(buf.String())).NotTo(HavePrefix("{"))
	})

	It("copies records to every writer", func() {
		var other bytes.Buffer
		l := logger.New(logger.WithWriters(&buf, &other))
		l.Info("broadcast")

		Expect(buf.String()).To(ContainSubstring("broadcast"))
		Expect(other.String()).To(ContainSubstring("broadcast"))
	})

	It("keeps request-scoped attributes on child loggers", func() {
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true)).With("request_id", "abc")
		l.WithGroup("upstream").Info("failed", "backend", "gemini")

		parsed := decode(&buf)
		Expect(parsed["request_id"]).To(Equal("abc"))
		Expect(parsed["upstream"]).To(HaveKeyWithValue("backend", "gemini"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		l := logger.Nop()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError} {
			Expect(l.Handler().Enabled(context.Background(), level)).To(BeFalse())
		}
		Expect(func() {
			l.With("key", "value").WithGroup("g").Error("msg")
		}).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	It("dispatches each record to every logger", func() {
		var text, js bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&text)),
			logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
		)
		multi.With("request_id", "r1").Info("broadcast")

		Expect(text.String()).To(ContainSubstring("request_id=r1"))
		Expect(decode(&js)["request_id"]).To(Equal("r1"))
	})

	It("nests groups in every handler", func() {
		var buf bytes.Buffer
		multi := logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithJSON(true)))
		multi.WithGroup("request").Info("processed", "method", "POST")

		Expect(decode(&buf)["request"]).To(HaveKeyWithValue("method", "POST"))
	})

	It("respects each handler's level", func() {
		var info, debug bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&info)),
			logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
		)
		multi.Debug("chunk received")

		Expect(info.String()).To(BeEmpty())
		Expect(debug.String()).To(ContainSubstring("chunk received"))
	})

	It("keeps writing after one handler fails", func() {
		var buf bytes.Buffer
		multi := logger.Multi(
			slog.New(failingHandler{}),
			logger.New(logger.WithWriter(&buf)),
		)

		var r slog.Record
		r.Level = slog.LevelInfo
		r.Message = "still here"
		err := multi.Handler().Handle(context.Background(), r)

		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(buf.String()).To(ContainSubstring("still here"))
	})
})

var _ = Describe("OpenFile", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("appends JSON records to the file", func() {
		path := filepath.Join(dir, "serve.log")
		Expect(os.WriteFile(path, []byte("{\"msg\":\"earlier\"}\n"), 0o644)).To(Succeed())

		l, closer, err := logger.OpenFile(path, logger.WithPretty(true))
		Expect(err).NotTo(HaveOccurred())
		l.Info("started", "listen", ":8000")
		Expect(closer.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[1]).To(ContainSubstring(`"msg":"started"`))
		Expect(lines[1]).To(ContainSubstring(`"listen":":8000"`))
	})

	It("honours WithDebug", func() {
		path := filepath.Join(dir, "debug.log")
		l, closer, err := logger.OpenFile(path, logger.WithDebug(true))
		Expect(err).NotTo(HaveOccurred())
		l.Debug("verbose")
		Expect(closer.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("verbose"))
	})

	It("fails when the directory does not exist", func() {
		_, _, err := logger.OpenFile(filepath.Join(dir, "missing", "serve.log"))
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})
})
