package transcriptscmder_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/api"
	transcriptscmder "github.com/papercomputeco/agentui/cmd/agentui/transcripts"
	"github.com/papercomputeco/agentui/pkg/logger"
	"github.com/papercomputeco/agentui/pkg/storage/inmemory"
	"github.com/papercomputeco/agentui/pkg/transcript"
	testutils "github.com/papercomputeco/agentui/pkg/utils/test"
)

var _ = Describe("NewTranscriptsCmd", func() {
	It("has list and show subcommands", func() {
		cmd := transcriptscmder.NewTranscriptsCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("list", "show"))
	})

	It("has a persistent --target flag", func() {
		cmd := transcriptscmder.NewTranscriptsCmd()
		flag := cmd.PersistentFlags().Lookup("target")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("http://localhost:8000"))
	})
})

var _ = Describe("Transcripts command execution", func() {
	var (
		driver    *inmemory.Driver
		server    *api.Server
		target    string
		configDir string
		out       bytes.Buffer
		first     *transcript.Record
		second    *transcript.Record
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx := context.Background()

		now := time.Now()
		first = testutils.NewTestRecord("show me\na card", now.Add(-time.Minute))
		second = testutils.NewTestRecord("second request", now)
		second.Error = "quota exceeded"
		for _, rec := range []*transcript.Record{first, second} {
			_, err := driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())
		}

		server = api.NewServer(api.Config{}, driver, logger.Nop())
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		target = "http://" + ln.Addr().String()
		go func() {
			_ = server.RunWithListener(ln)
		}()
		DeferCleanup(server.Shutdown)

		configDir, err = os.MkdirTemp("", "agentui-transcripts-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, configDir)

		out.Reset()
	})

	execute := func(args ...string) error {
		out.Reset()
		cmd := transcriptscmder.NewTranscriptsCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .agentui/ config directory")
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append(args, "--config-dir", configDir, "--target", target))
		return cmd.Execute()
	}

	Describe("list", func() {
		It("lists transcripts newest first", func() {
			Eventually(func() error { return execute("list") }).Should(Succeed())

			Expect(out.String()).To(ContainSubstring(first.ID))
			Expect(out.String()).To(ContainSubstring(second.ID))
			Expect(out.String()).To(ContainSubstring("show me a card"))
			Expect(out.String()).To(ContainSubstring("error"))
			Expect(out.String()).To(ContainSubstring("2 transcript(s)"))
			Expect(bytes.Index(out.Bytes(), []byte(second.ID))).To(BeNumerically("<", bytes.Index(out.Bytes(), []byte(first.ID))))
		})

		It("honors --limit", func() {
			Eventually(func() error { return execute("list", "--limit", "1") }).Should(Succeed())
			Expect(out.String()).To(ContainSubstring(second.ID))
			Expect(out.String()).NotTo(ContainSubstring(first.ID))
		})

		It("rejects a non-positive limit", func() {
			Expect(execute("list", "--limit", "0")).To(MatchError(ContainSubstring("--limit must be positive")))
		})
	})

	Describe("show", func() {
		It("prints the transcript and renders its events", func() {
			Eventually(func() error { return execute("show", first.ID) }).Should(Succeed())

			Expect(out.String()).To(ContainSubstring(first.ID))
			Expect(out.String()).To(ContainSubstring("test-backend"))
			Expect(out.String()).To(ContainSubstring("1/1/0"))
			Expect(out.String()).To(ContainSubstring("Sure!"))
		})

		It("prints raw JSON with --raw", func() {
			Eventually(func() error { return execute("show", "--raw", second.ID) }).Should(Succeed())

			var rec transcript.Record
			Expect(json.Unmarshal(out.Bytes(), &rec)).To(Succeed())
			Expect(rec.ID).To(Equal(second.ID))
			Expect(rec.Error).To(Equal("quota exceeded"))
			Expect(rec.Events).To(HaveLen(2))
		})

		It("reports unknown transcripts", func() {
			Eventually(func() error { return execute("show", "missing") }).Should(MatchError(ContainSubstring("status 404")))
		})
	})
})
