package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"subparse/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool
	var printOnly bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if printOnly {
				_, err := io.WriteString(out, config.Sample())
				return err
			}

			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			replaced, err := writeSample(target, overwrite)
			if err != nil {
				return err
			}

			verb := "Wrote"
			if replaced {
				verb = "Replaced"
			}
			fmt.Fprintf(out, "%s sample configuration at %s\n", verb, target)
			fmt.Fprintf(out, "Check it with: subparse --config %s config validate\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the sample to stdout instead of writing a file")
	return cmd
}

// initTarget resolves where config init writes, defaulting to the per-user
// config path.
func initTarget(flagPath string) (string, error) {
	if path := strings.TrimSpace(flagPath); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return path, nil
}

// writeSample writes the sample to target and reports whether it replaced
// an existing file.
func writeSample(target string, overwrite bool) (bool, error) {
	info, err := os.Stat(target)
	existed := err == nil
	switch {
	case err == nil && info.IsDir():
		return false, fmt.Errorf("%s is a directory", target)
	case err == nil && !overwrite:
		return false, fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("inspect %s: %w", target, err)
	}
	if err := config.CreateSample(target); err != nil {
		return false, err
	}
	return existed, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(flagValue(ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Cue store: %s (enabled: %s)\n", cfg.Store.Path, yesNo(cfg.Store.Enabled))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
