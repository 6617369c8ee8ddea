// Package agentuicmder
package agentuicmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/agentui/cmd/agentui/chat"
	configcmder "github.com/papercomputeco/agentui/cmd/agentui/config"
	initcmder "github.com/papercomputeco/agentui/cmd/agentui/init"
	servecmder "github.com/papercomputeco/agentui/cmd/agentui/serve"
	transcriptscmder "github.com/papercomputeco/agentui/cmd/agentui/transcripts"
	versioncmder "github.com/papercomputeco/agentui/cmd/agentui/version"
)

const agentuiLongDesc string = `agentui serves AG-UI protocol streams from a text-generation backend.

Model output is normalized line by line into "message" and "update_ui"
events, so clients never see raw prose or partial JSON.

Run the server and talk to it using:
  agentui serve          Run the AG-UI server
  agentui chat           Chat with a running server in the terminal
  agentui transcripts    Inspect recorded transcripts
  agentui init           Create a local .agentui/ directory
  agentui config         Manage persistent configuration`

const agentuiShortDesc string = "agentui - AG-UI streaming server"

func NewAgentUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentui",
		Short: agentuiShortDesc,
		Long:  agentuiLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .agentui/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(transcriptscmder.NewTranscriptsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
