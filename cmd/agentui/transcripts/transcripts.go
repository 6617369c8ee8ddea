// Package transcriptscmder provides the transcripts command for inspecting
// the transcripts recorded by a running AG-UI server.
package transcriptscmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/agentui/api"
	"github.com/papercomputeco/agentui/pkg/cliui"
	"github.com/papercomputeco/agentui/pkg/config"
	"github.com/papercomputeco/agentui/pkg/storage"
	"github.com/papercomputeco/agentui/pkg/transcript"
	"github.com/papercomputeco/agentui/pkg/utils"
)

const messagePreviewLen = 48

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type transcriptsCommander struct {
	target string
	limit  int
	raw    bool

	out    io.Writer
	client *http.Client
}

const transcriptsLongDesc string = `Inspect transcripts recorded by an AG-UI server.

Every /agent request is recorded with the events that were streamed back,
how many lines each resolver tier handled, and how the stream ended.

Examples:
  agentui transcripts list
  agentui transcripts list --limit 10
  agentui transcripts show 6c1f9b1e-...
  agentui transcripts show --raw 6c1f9b1e-...`

const transcriptsShortDesc string = "Inspect recorded transcripts"

func NewTranscriptsCmd() *cobra.Command {
	cmder := &transcriptsCommander{
		client: &http.Client{Timeout: 30 * time.Second},
	}

	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: transcriptsShortDesc,
		Long:  transcriptsLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagTarget})
			cmder.target = strings.TrimRight(v.GetString("client.target"), "/")
			cmder.out = cmd.OutOrStdout()
			return nil
		},
	}

	// Persistent so both subcommands accept --target.
	defaults := config.NewDefaultConfig()
	target := config.Flags[config.FlagTarget]
	cmd.PersistentFlags().StringVarP(&cmder.target, target.Name, target.Shorthand, defaults.Client.Target, target.Description)

	cmd.AddCommand(cmder.newListCmd())
	cmd.AddCommand(cmder.newShowCmd())

	return cmd
}

func (c *transcriptsCommander) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runList(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&c.limit, "limit", "n", storage.DefaultListLimit, "Maximum number of transcripts to list")

	return cmd
}

func (c *transcriptsCommander) newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transcript and its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVar(&c.raw, "raw", false, "Print the transcript as JSON")

	return cmd
}

func (c *transcriptsCommander) runList(ctx context.Context) error {
	if c.limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", c.limit)
	}

	var resp api.TranscriptListResponse
	endpoint := c.target + "/transcripts?limit=" + strconv.Itoa(c.limit)
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return err
	}

	if resp.Count == 0 {
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render("No transcripts recorded yet."))
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "STARTED", "BACKEND", "EVENTS", "TIERS", "OUTCOME", "DURATION", "MESSAGE")

	for _, rec := range resp.Transcripts {
		t.Row(
			rec.ID,
			rec.StartedAt.Local().Format(time.DateTime),
			rec.Backend,
			strconv.Itoa(len(rec.Events)),
			formatTiers(rec.Tiers),
			rec.Outcome(),
			cliui.FormatDuration(rec.Duration()),
			utils.Truncate(utils.OneLine(rec.Message), messagePreviewLen),
		)
	}

	fmt.Fprintln(c.out, t.String())
	fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d transcript(s)", resp.Count)))
	return nil
}

func (c *transcriptsCommander) runShow(ctx context.Context, id string) error {
	var rec transcript.Record
	if err := c.getJSON(ctx, c.target+"/transcripts/"+url.PathEscape(id), &rec); err != nil {
		return err
	}

	if c.raw {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(&rec)
	}

	fields := [][2]string{
		{"ID:", rec.ID},
		{"Message:", utils.OneLine(rec.Message)},
		{"Backend:", rec.Backend},
		{"Started:", rec.StartedAt.Local().Format(time.DateTime)},
		{"Duration:", cliui.FormatDuration(rec.Duration())},
		{"Tiers:", formatTiers(rec.Tiers)},
		{"Outcome:", rec.Outcome()},
	}
	if rec.Error != "" {
		fields = append(fields, [2]string{"Error:", rec.Error})
	}

	fmt.Fprintln(c.out)
	for _, f := range fields {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-9s", f[0])), cliui.ValueStyle.Render(f[1]))
	}
	fmt.Fprintln(c.out)

	renderer := cliui.NewRenderer(c.out, cliui.WithWidth(cliui.TerminalWidth(c.out, 80)))
	for _, ev := range rec.Events {
		if err := renderer.Render(ev); err != nil {
			return err
		}
	}

	return nil
}

func (c *transcriptsCommander) getJSON(ctx context.Context, endpoint string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func formatTiers(t transcript.TierCounts) string {
	return fmt.Sprintf("%d/%d/%d", t.Direct, t.Recovered, t.Fallback)
}
