package ndjson_test

import (
	"bufio"
	"bytes"
	"errors"
	"slices"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/ndjson"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

var _ = Describe("Writer", func() {
	It("terminates each record with a newline", func() {
		var buf bytes.Buffer
		w := ndjson.NewWriter(&buf)
		Expect(w.Write(event.NewMessage("a"))).To(Succeed())
		Expect(w.Write(event.NewMessage("b"))).To(Succeed())

		Expect(buf.String()).To(Equal(
			`{"type":"message","role":"assistant","content":"a"}` + "\n" +
				`{"type":"message","role":"assistant","content":"b"}` + "\n"))
		Expect(w.Count()).To(Equal(2))
	})

	It("flushes buffered destinations after every record", func() {
		var buf bytes.Buffer
		bw := bufio.NewWriterSize(&buf, 4096)
		w := ndjson.NewWriter(bw)

		Expect(w.Write(event.NewMessage("now"))).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`"now"`))
	})

	It("copies a sequence until a write fails", func() {
		pulled := 0
		seq := func(yield func(event.Event) bool) {
			for _, c := range []string{"a", "b", "c"} {
				pulled++
				if !yield(event.NewMessage(c)) {
					return
				}
			}
		}

		err := ndjson.Copy(ndjson.NewWriter(failingWriter{}), seq)
		Expect(err).To(MatchError("broken pipe"))
		Expect(pulled).To(Equal(1))
	})

	It("copies a whole sequence", func() {
		var buf bytes.Buffer
		events := []event.Event{event.NewMessage("a"), event.NewMessage("b")}
		Expect(ndjson.Copy(ndjson.NewWriter(&buf), slices.Values(events))).To(Succeed())
		Expect(strings.Count(buf.String(), "\n")).To(Equal(2))
	})
})

var _ = Describe("TeeReader", func() {
	It("reads events and tees raw lines", func() {
		stream := `{"type":"message","role":"assistant","content":"hi"}` + "\n" +
			"\n" +
			`{"type":"update_ui","component":"card","props":{"title":"A"}}` + "\n"
		var dst bytes.Buffer
		r := ndjson.NewTeeReader(strings.NewReader(stream), &dst)

		e, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Type()).To(Equal(event.TypeMessage))

		e, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Type()).To(Equal(event.TypeUpdateUI))

		e, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeNil())

		Expect(dst.String()).To(Equal(stream))
	})

	It("reads a final line without a newline", func() {
		r := ndjson.NewTeeReader(strings.NewReader(`{"type":"message","role":"assistant","content":"x"}`), nil)
		e, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e).NotTo(BeNil())
	})

	It("reports lines that are not events and keeps going", func() {
		r := ndjson.NewTeeReader(strings.NewReader("not json\n"+`{"type":"message","role":"assistant","content":"x"}`+"\n"), nil)

		_, err := r.Next()
		Expect(err).To(MatchError(ContainSubstring("line 1")))
		var invalid *ndjson.InvalidLineError
		Expect(errors.As(err, &invalid)).To(BeTrue())
		Expect(invalid.Line).To(Equal(1))

		e, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Type()).To(Equal(event.TypeMessage))
	})

	It("skips a line over the size limit and keeps reading", func() {
		big := `{"type":"update_ui","component":"table","props":{"data":"` + strings.Repeat("x", ndjson.MaxLineSize) + `"}}`
		next := `{"type":"message","role":"assistant","content":"after"}`
		stream := big + "\n" + next + "\n"

		var dst bytes.Buffer
		r := ndjson.NewTeeReader(strings.NewReader(stream), &dst)

		_, err := r.Next()
		var invalid *ndjson.InvalidLineError
		Expect(errors.As(err, &invalid)).To(BeTrue())
		Expect(invalid.Line).To(Equal(1))
		Expect(err).To(MatchError(ndjson.ErrLineTooLong))

		e, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.String()).To(Equal(next))

		e, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeNil())

		Expect(dst.String()).To(Equal(stream))
	})

	It("copies a final line without a newline verbatim", func() {
		var dst bytes.Buffer
		r := ndjson.NewTeeReader(strings.NewReader("\n"+`{"type":"message","role":"assistant","content":"x"}`), &dst)
		e, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e).NotTo(BeNil())
		Expect(dst.String()).To(Equal("\n" + `{"type":"message","role":"assistant","content":"x"}`))
	})
})
