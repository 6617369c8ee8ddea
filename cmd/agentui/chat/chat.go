// Package chatcmder provides the chat command, a terminal client for the
// AG-UI server.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/agentui/api"
	"github.com/papercomputeco/agentui/pkg/cliui"
	"github.com/papercomputeco/agentui/pkg/config"
	"github.com/papercomputeco/agentui/pkg/logger"
	"github.com/papercomputeco/agentui/pkg/ndjson"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

type chatCommander struct {
	target string
	save   string
	raw    bool
	debug  bool

	in          io.Reader
	out         io.Writer
	interactive bool
	client      *http.Client
	renderer    *cliui.Renderer
	saveTo      io.Writer

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session with an AG-UI server.

Each line you type is sent to POST /agent. The streamed events are rendered
in the terminal: messages as text (markdown on a TTY), update_ui components
as tables, cards, forms, charts, stats and steps.

Pass a message as arguments to send it once and exit.

Examples:
  agentui chat
  agentui chat --target http://localhost:8000
  agentui chat "show me last quarter's revenue as a chart"
  agentui chat --raw --save session.ndjson "list three fruits"`

const chatShortDesc string = "Interactive chat with an AG-UI server"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagTarget})
			cmder.target = strings.TrimRight(v.GetString("client.target"), "/")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context(), args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	cmd.Flags().StringVar(&cmder.save, "save", "", "Append the raw NDJSON stream to this file")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print events as NDJSON instead of rendering them")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithWriter(os.Stderr))
	c.interactive = cliui.IsTerminal(c.out)
	c.renderer = cliui.NewRenderer(c.out,
		cliui.WithMarkdown(c.interactive),
		cliui.WithWidth(cliui.TerminalWidth(c.out, 80)),
	)
	if c.client == nil {
		c.client = &http.Client{
			// LLM responses can be slow
			Timeout: 5 * time.Minute,
		}
	}

	if c.save != "" {
		f, err := os.OpenFile(c.save, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening save file: %w", err)
		}
		defer f.Close()
		c.saveTo = f
	}

	if len(args) > 0 {
		return c.sendAndRender(ctx, strings.Join(args, " "))
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Server:"),
		cliui.NameStyle.Render(c.target),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)

	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		if err := c.sendAndRender(ctx, input); err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		fmt.Fprintln(c.out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// sendAndRender posts one message to the server and renders the streamed
// events as they arrive.
func (c *chatCommander) sendAndRender(ctx context.Context, message string) error {
	body, err := json.Marshal(api.AgentRequest{Message: message})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending agent request",
		"target", c.target,
		"message_len", len(message),
	)

	var resp *http.Response
	send := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target+"/agent", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.client.Do(req)
		if err != nil {
			return fmt.Errorf("sending request to %s: %w", c.target, err)
		}
		return nil
	}

	if c.interactive {
		err = cliui.Step(c.out, "Waiting for "+c.target, send)
	} else {
		err = send()
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Debug("streaming agent response", "transcript_id", resp.Header.Get(api.TranscriptIDHeader))

	if !c.raw {
		fmt.Fprintln(c.out, assistantPrompt)
	}

	reader := ndjson.NewTeeReader(resp.Body, c.saveTo)
	for {
		ev, err := reader.Next()
		var invalid *ndjson.InvalidLineError
		if errors.As(err, &invalid) {
			c.logger.Warn("skipping unreadable stream line", "error", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil {
			return nil
		}

		if c.raw {
			if _, err := fmt.Fprintln(c.out, ev.String()); err != nil {
				return err
			}
			continue
		}

		if err := c.renderer.Render(*ev); err != nil {
			return fmt.Errorf("rendering event: %w", err)
		}
	}
}
