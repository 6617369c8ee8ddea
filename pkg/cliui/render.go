package cliui

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tidwall/gjson"

	"github.com/papercomputeco/agentui/pkg/event"
)

const (
	defaultWidth = 80
	chartBarMax  = 30
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	currentMark = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render("●")
	pendingMark = DimStyle.Render("○")
)

// componentRenderers maps a component name to its terminal renderer.
// Each receives the event's "props" object.
var componentRenderers = map[string]func(props gjson.Result) string{
	"table": renderTable,
	"card":  renderCard,
	"form":  renderForm,
	"chart": renderChart,
	"stats": renderStats,
	"steps": renderSteps,
}

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithMarkdown renders message content through glamour.
func WithMarkdown(enabled bool) RenderOption {
	return func(r *Renderer) {
		r.markdown = enabled
	}
}

// WithWidth sets the wrap width for markdown output.
func WithWidth(width int) RenderOption {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// Renderer writes AG-UI events to a terminal.
type Renderer struct {
	w        io.Writer
	markdown bool
	width    int
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer, opts ...RenderOption) *Renderer {
	r := &Renderer{
		w:     w,
		width: defaultWidth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes one event. Messages are printed as text (or markdown),
// update_ui events as a component block.
func (r *Renderer) Render(ev event.Event) error {
	var out string

	switch ev.Type() {
	case event.TypeMessage:
		content := gjson.GetBytes(ev.Bytes(), "content").String()
		out = r.renderMessage(content)
	case event.TypeUpdateUI:
		out = RenderComponent(ev) + "\n"
	default:
		return fmt.Errorf("cannot render event of type %q", ev.Type())
	}

	_, err := io.WriteString(r.w, out)
	return err
}

func (r *Renderer) renderMessage(content string) string {
	if r.markdown {
		rendered, err := RenderMarkdown(content, r.width)
		if err == nil {
			return rendered
		}
	}
	return content + "\n"
}

// RenderComponent renders an update_ui event as a terminal block. Unknown
// components render as a notice naming the component.
func RenderComponent(ev event.Event) string {
	parsed := gjson.ParseBytes(ev.Bytes())
	name := parsed.Get("component").String()

	render, ok := componentRenderers[name]
	if !ok {
		return ErrorStyle.Render(fmt.Sprintf("Unsupported component: %s", name))
	}

	return render(parsed.Get("props"))
}

func renderTable(props gjson.Result) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	t.Headers(stringArray(props.Get("headers"))...)
	props.Get("data").ForEach(func(_, row gjson.Result) bool {
		t.Row(stringArray(row)...)
		return true
	})

	return t.String()
}

func renderCard(props gjson.Result) string {
	lines := []string{titleStyle.Render(props.Get("title").String())}
	if desc := props.Get("description").String(); desc != "" {
		lines = append(lines, desc)
	}
	if img := props.Get("imageUrl").String(); img != "" {
		lines = append(lines, DimStyle.Render(img))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderForm(props gjson.Result) string {
	lines := []string{titleStyle.Render(props.Get("title").String()), ""}
	props.Get("fields").ForEach(func(_, field gjson.Result) bool {
		label := field.Get("label").String()
		if label == "" {
			label = field.Get("name").String()
		}
		kind := field.Get("type").String()
		if kind == "" {
			kind = "text"
		}
		lines = append(lines, fmt.Sprintf("%s %s\n%s",
			KeyStyle.Render(label),
			DimStyle.Render("("+kind+")"),
			DimStyle.Render(strings.Repeat("_", 24)),
		))
		return true
	})

	return boxStyle.Render(strings.Join(lines, "\n"))
}

type chartPoint struct {
	label string
	value float64
}

func renderChart(props gjson.Result) string {
	title := titleStyle.Render(props.Get("title").String())
	dataKey := props.Get("dataKey").String()
	categoryKey := props.Get("categoryKey").String()

	var points []chartPoint
	var total, maxVal float64
	labelWidth := 0
	props.Get("data").ForEach(func(_, item gjson.Result) bool {
		p := chartPoint{
			label: item.Get(categoryKey).String(),
			value: item.Get(dataKey).Float(),
		}
		points = append(points, p)
		total += p.value
		maxVal = math.Max(maxVal, p.value)
		labelWidth = max(labelWidth, lipgloss.Width(p.label))
		return true
	})

	kind := props.Get("type").String()
	lines := []string{title}

	switch kind {
	case "bar", "line":
		for _, p := range points {
			n := 0
			if maxVal > 0 {
				n = int(math.Round(p.value / maxVal * chartBarMax))
			}
			lines = append(lines, fmt.Sprintf("%-*s %s %s",
				labelWidth, p.label,
				barStyle.Render(strings.Repeat("█", n)),
				formatNumber(p.value),
			))
		}
	case "pie":
		for _, p := range points {
			share := 0.0
			if total > 0 {
				share = p.value / total * 100
			}
			lines = append(lines, fmt.Sprintf("%-*s %5.1f%% %s",
				labelWidth, p.label, share,
				DimStyle.Render("("+formatNumber(p.value)+")"),
			))
		}
	default:
		lines = append(lines, DimStyle.Render("Unsupported chart type"))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderStats(props gjson.Result) string {
	var blocks []string
	props.Get("items").ForEach(func(_, item gjson.Result) bool {
		lines := []string{
			DimStyle.Render(item.Get("label").String()),
			titleStyle.Render(item.Get("value").String()),
		}
		if change := item.Get("change").String(); change != "" {
			switch item.Get("trend").String() {
			case "up":
				change = upStyle.Render("↑ " + change)
			case "down":
				change = downStyle.Render("↓ " + change)
			default:
				change = DimStyle.Render(change)
			}
			lines = append(lines, change)
		}
		blocks = append(blocks, boxStyle.Render(strings.Join(lines, "\n")))
		return true
	})

	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func renderSteps(props gjson.Result) string {
	var lines []string
	props.Get("items").ForEach(func(_, item gjson.Result) bool {
		var mark string
		switch item.Get("status").String() {
		case "completed":
			mark = SuccessMark
		case "current":
			mark = currentMark
		default:
			mark = pendingMark
		}

		line := fmt.Sprintf("%s %s", mark, titleStyle.Render(item.Get("title").String()))
		if desc := item.Get("description").String(); desc != "" {
			line += "\n  " + DimStyle.Render(desc)
		}
		lines = append(lines, line)
		return true
	})

	return strings.Join(lines, "\n")
}

func stringArray(r gjson.Result) []string {
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
