// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	input "github.com/tcnksm/go-input"
	"gopkg.in/yaml.v3"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/config"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// newConfigCommand creates the "config" command group.
func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit the configuration",
	}
	cmd.AddCommand(
		newConfigShowCommand(a),
		newConfigPathCommand(a),
		newConfigInitCommand(a),
		newConfigGetCommand(a),
		newConfigSetCommand(a),
	)
	return cmd
}

func newConfigShowCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, AUTOREPORT_*
variables and command line flags have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeConfig(cmd.OutOrStdout(), a.cfg, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml, yaml, json")
	return cmd
}

// writeConfig encodes cfg to w in format.
func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch strings.ToLower(format) {
	case "toml":
		return errors.Wrap(toml.NewEncoder(w).Encode(cfg), "encode config")
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return errors.Wrap(err, "encode config")
		}
		return enc.Close()
	case "json":
		_, err := fmt.Fprintln(w, cfg.String())
		return err
	default:
		return newUsageError("unknown format %q (want toml, yaml or json)", format)
	}
}

func newConfigPathCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file location",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, exists, err := configFileFor(a.flags.configPath)
			if err != nil {
				return err
			}
			if exists {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", path, dimStyle.Render("(not created)"))
			}
			return nil
		},
	}
}

// configFileFor returns the explicit path, the existing default file, or
// the default TOML path, and whether that file exists.
func configFileFor(explicit string) (string, bool, error) {
	path := explicit
	if path == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			return "", false, err
		}
		path = found
	}
	if path == "" {
		def, err := config.ConfigPathTOML()
		if err != nil {
			return "", false, err
		}
		path = def
	}
	_, err := os.Stat(path)
	return path, err == nil, nil
}

// =============================================================================
// INIT
// =============================================================================

func newConfigInitCommand(a *app) *cobra.Command {
	var (
		force bool
		yes   bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a config file interactively",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, exists, err := configFileFor(a.flags.configPath)
			if err != nil {
				return err
			}
			if exists && !force {
				return newUsageError("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if !yes {
				ui := &input.UI{Reader: cmd.InOrStdin(), Writer: cmd.OutOrStdout()}
				if err := askSetup(ui, cfg); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveTo(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", renderStatus(true), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "write the defaults without asking")
	return cmd
}

// askSetup asks for the settings most installs change.
func askSetup(ui *input.UI, cfg *config.Config) error {
	backendURL, err := ui.Ask("Backend URL", &input.Options{
		Default:      cfg.Backend.URL,
		Required:     true,
		Loop:         true,
		HideOrder:    true,
		ValidateFunc: validateURL,
	})
	if err != nil {
		return errors.Wrap(err, "backend URL")
	}
	cfg.Backend.URL = backendURL

	modes := make([]string, 0, 3)
	for _, m := range model.Modes() {
		modes = append(modes, m.String())
	}
	mode, err := ui.Select("Default retrieval mode", modes, &input.Options{
		Default: cfg.Chat.DefaultMode,
		Loop:    true,
	})
	if err != nil {
		return errors.Wrap(err, "retrieval mode")
	}
	cfg.Chat.DefaultMode = mode

	sessionID, err := ui.Ask("Session id (empty to let the server decide)", &input.Options{
		HideOrder: true,
	})
	if err != nil {
		return errors.Wrap(err, "session id")
	}
	cfg.Backend.SessionID = strings.TrimSpace(sessionID)

	theme, err := ui.Select("Theme", []string{"auto", "dark", "light"}, &input.Options{
		Default: cfg.UI.Theme,
		Loop:    true,
	})
	if err != nil {
		return errors.Wrap(err, "theme")
	}
	cfg.UI.Theme = theme
	return nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("%q is not an http(s) URL", s)
	}
	return nil
}

// =============================================================================
// GET / SET
// =============================================================================

func newConfigGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print one value, or every key with its value",
		Example: `  autoreport config get backend.url
  autoreport config get`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				v, err := a.cfg.Get(args[0])
				if err != nil {
					return &usageError{err: err}
				}
				fmt.Fprintln(out, formatValue(v))
				return nil
			}
			for _, key := range config.AllKeys() {
				v, err := a.cfg.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s = %s\n", key, formatValue(v))
			}
			return nil
		},
	}
}

func newConfigSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the config file",
		Example: `  autoreport config set backend.url http://reports.internal:8000
  autoreport config set backend.answer_fields content,answer`,
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, exists, err := configFileFor(a.flags.configPath)
			if err != nil {
				return err
			}

			// Edit the file alone so environment overrides are not persisted.
			cfg := config.Default()
			if exists {
				if cfg, err = config.ReadFile(path); err != nil {
					return err
				}
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return &usageError{err: err}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveTo(cfg, path); err != nil {
				return err
			}
			v, _ := cfg.Get(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", renderStatus(true), args[0], formatValue(v))
			return nil
		},
	}
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
