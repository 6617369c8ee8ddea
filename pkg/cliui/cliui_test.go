package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/cliui"
)

var _ = Describe("FormatDuration", func() {
	It("formats sub-second durations in milliseconds", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("formats longer durations in seconds", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("Mark", func() {
	It("distinguishes success from failure", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
		Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
	})
})

var _ = Describe("Step", func() {
	It("prints the final mark and returns the function's error", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")

		err := cliui.Step(&buf, "Connecting", func() error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring("Connecting"))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})
})

var _ = Describe("IsTerminal", func() {
	It("is false for in-memory writers", func() {
		Expect(cliui.IsTerminal(&bytes.Buffer{})).To(BeFalse())
		Expect(cliui.TerminalWidth(&bytes.Buffer{}, 72)).To(Equal(72))
	})
})
