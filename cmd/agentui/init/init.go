// Package initcmder provides the init command for initializing a local
// .agentui directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/agentui/pkg/config"
	"github.com/papercomputeco/agentui/pkg/dotdir"
)

type initCommander struct {
	preset string
	out    io.Writer
}

const initLongDesc string = `Initialize a new .agentui/ directory in the current working directory.

Creates a local .agentui/ directory that takes precedence over the default
~/.agentui/ directory for configuration, the component registry and the
SQLite transcript database.

With --preset, a config.toml for the named backend is written as well.
Available presets: gemini, openai, replay

Examples:
  agentui init
  agentui init --preset openai`

const initShortDesc string = "Initialize a local .agentui/ directory"

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Write config.toml for a backend preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")

	return cmd
}

func (c *initCommander) run() error {
	// Validate before touching the filesystem.
	var preset *config.Config
	if c.preset != "" {
		var err error
		preset, err = config.PresetConfig(c.preset)
		if err != nil {
			return err
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dotdir.DirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(c.out, "Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .agentui directory: %w", err)
		}
		fmt.Fprintf(c.out, "Initialized .agentui directory: %s\n", dir)
	}

	if preset == nil {
		return nil
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(preset); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Wrote %s preset: %s\n", c.preset, cfger.GetTarget())
	return nil
}
