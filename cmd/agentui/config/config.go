// Package configcmder provides the config command for managing persistent
// agentui configuration stored in the .agentui/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/agentui/pkg/cliui"
	"github.com/papercomputeco/agentui/pkg/config"
)

const configLongDesc string = `Manage persistent agentui configuration.

Configuration is stored as config.toml in the .agentui/ directory and provides
default values for command flags. CLI flags and AGENTUI_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen,
  backend.provider, backend.model, backend.api_key, backend.base_url,
  backend.replay_path, backend.replay_chunk_size,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  client.target, registry.path

Use subcommands to get, set, or list configuration values:
  agentui config set <key> <value>    Set a configuration value
  agentui config get <key>            Get a configuration value
  agentui config list                 List all configuration values

Examples:
  agentui config set backend.provider openai
  agentui config set storage.driver sqlite
  agentui config get backend.model
  agentui config list`

const configShortDesc string = "Manage persistent agentui configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}
