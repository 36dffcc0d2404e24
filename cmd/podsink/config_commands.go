package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"podsink/internal/config"
)

func newConfigCommand(cctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(cctx))
	configCmd.AddCommand(newConfigPathCommand(cctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set youtube api_key (or export YOUTUBE_API_KEY) and the library path before running podsink.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file:     %s\n", cctx.configPath)
			fmt.Fprintf(out, "Library dir:     %s\n", cfg.Paths.LibraryDir)
			fmt.Fprintf(out, "Download dir:    %s\n", cfg.Paths.DownloadDir)
			fmt.Fprintf(out, "Ledger:          %s\n", cfg.Paths.LedgerPath)
			fmt.Fprintf(out, "Journal:         %s\n", cfg.Paths.JournalPath)
			fmt.Fprintf(out, "Channels file:   %s\n", cfg.Paths.ChannelsFile)
			fmt.Fprintf(out, "Lookback days:   %d\n", cfg.Filter.LookbackDays)
			fmt.Fprintf(out, "Min duration:    %ds\n", cfg.Filter.MinDurationSeconds)
			fmt.Fprintf(out, "Format:          %s\n", cfg.Download.Format)
			fmt.Fprintf(out, "Max attempts:    %d\n", cfg.Download.MaxAttempts)
			fmt.Fprintf(out, "API key set:     %t\n", cfg.YouTube.APIKey != "")
			return nil
		},
	}
}

func newConfigPathCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cctx.ensureConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cctx.configPath)
			return nil
		},
	}
}
