package cliui_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/cliui"
	"github.com/papercomputeco/agentui/pkg/event"
)

func updateUI(raw string) event.Event {
	return event.FromRaw(event.TypeUpdateUI, []byte(raw))
}

var _ = Describe("RenderComponent", func() {
	It("renders a table with headers and rows", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"table","props":{"headers":["Name","Age"],"data":[["Ada","36"],["Alan","41"]]}}`))
		Expect(out).To(ContainSubstring("Name"))
		Expect(out).To(ContainSubstring("Age"))
		Expect(out).To(ContainSubstring("Ada"))
		Expect(out).To(ContainSubstring("41"))
	})

	It("renders a card", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"card","props":{"title":"Weather","description":"Sunny all day","imageUrl":"https://example.com/sun.png"}}`))
		Expect(out).To(ContainSubstring("Weather"))
		Expect(out).To(ContainSubstring("Sunny all day"))
		Expect(out).To(ContainSubstring("https://example.com/sun.png"))
	})

	It("renders form fields with their types", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"form","props":{"title":"Sign up","fields":[{"name":"email","label":"Email","type":"email"},{"name":"nick"}]}}`))
		Expect(out).To(ContainSubstring("Sign up"))
		Expect(out).To(ContainSubstring("Email"))
		Expect(out).To(ContainSubstring("(email)"))
		Expect(out).To(ContainSubstring("nick"))
		Expect(out).To(ContainSubstring("(text)"))
	})

	It("renders bar charts scaled to the largest value", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"chart","props":{"title":"Sales","type":"bar","data":[{"m":"Jan","v":10},{"m":"Feb","v":20}],"dataKey":"v","categoryKey":"m"}}`))
		Expect(out).To(ContainSubstring("Sales"))
		Expect(out).To(ContainSubstring("Jan"))
		Expect(out).To(ContainSubstring("20"))
		Expect(out).To(ContainSubstring("██████████████████████████████"))
	})

	It("renders pie charts as shares", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"chart","props":{"title":"Split","type":"pie","data":[{"k":"A","n":1},{"k":"B","n":3}],"dataKey":"n","categoryKey":"k"}}`))
		Expect(out).To(ContainSubstring("25.0%"))
		Expect(out).To(ContainSubstring("75.0%"))
	})

	It("notes unsupported chart types", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"chart","props":{"title":"X","type":"radar","data":[]}}`))
		Expect(out).To(ContainSubstring("Unsupported chart type"))
	})

	It("renders stats with trends", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"stats","props":{"items":[{"label":"Revenue","value":"$10k","change":"+5%","trend":"up"},{"label":"Churn","value":"2%","change":"-1%","trend":"down"}]}}`))
		Expect(out).To(ContainSubstring("Revenue"))
		Expect(out).To(ContainSubstring("$10k"))
		Expect(out).To(ContainSubstring("↑ +5%"))
		Expect(out).To(ContainSubstring("↓ -1%"))
	})

	It("renders steps with status marks", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"steps","props":{"items":[{"title":"Plan","status":"completed"},{"title":"Build","description":"in progress","status":"current"},{"title":"Ship","status":"pending"}]}}`))
		Expect(out).To(ContainSubstring("✓"))
		Expect(out).To(ContainSubstring("●"))
		Expect(out).To(ContainSubstring("○"))
		Expect(out).To(ContainSubstring("in progress"))
	})

	It("names unsupported components", func() {
		out := cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"map","props":{}}`))
		Expect(out).To(ContainSubstring("Unsupported component: map"))
	})

	It("tolerates missing props", func() {
		Expect(func() {
			cliui.RenderComponent(updateUI(`{"type":"update_ui","component":"table"}`))
		}).NotTo(Panic())
	})
})

var _ = Describe("Renderer", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("prints message content as plain text", func() {
		r := cliui.NewRenderer(buf)
		Expect(r.Render(event.NewMessage("Hello **there**"))).To(Succeed())
		Expect(buf.String()).To(Equal("Hello **there**\n"))
	})

	It("renders markdown when enabled", func() {
		r := cliui.NewRenderer(buf, cliui.WithMarkdown(true), cliui.WithWidth(60))
		Expect(r.Render(event.NewMessage("some *emphasis* here"))).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("emphasis"))
		Expect(buf.String()).NotTo(Equal("some *emphasis* here\n"))
	})

	It("prints components on their own line", func() {
		r := cliui.NewRenderer(buf)
		Expect(r.Render(updateUI(`{"type":"update_ui","component":"card","props":{"title":"T"}}`))).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("T"))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})

	It("rejects the zero event", func() {
		r := cliui.NewRenderer(buf)
		Expect(r.Render(event.Event{})).To(HaveOccurred())
	})
})
