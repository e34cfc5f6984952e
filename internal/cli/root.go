// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/config"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/logging"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// annotationSkipConfig marks commands that must run even when the config
// file is missing or invalid.
const annotationSkipConfig = "autoreport/skip-config"

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configPath  string
	mode        string
	backendURL  string
	sessionID   string
	logLevel    string
	watchConfig bool
}

// app is the state commands share once flags are parsed.
type app struct {
	flags     rootFlags
	cfg       *config.Config
	cfgPath   string
	logCloser io.Closer
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the autoreport command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "autoreport",
		Short: "Chat with the AutoReport annual report assistant",
		Long: `autoreport is a terminal client for the AutoReport retrieval service.

Run it without arguments for the full-screen chat, or use a subcommand for
one-shot questions and scripting.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "config file (default ~/.autoreport/config.toml)")
	pf.StringVarP(&a.flags.mode, "mode", "m", "", "retrieval mode: standard, multi_query, query_decomposition")
	pf.StringVar(&a.flags.backendURL, "backend", "", "backend base URL")
	pf.StringVar(&a.flags.sessionID, "session-id", "", "session id sent with every question")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	root.Flags().BoolVar(&a.flags.watchConfig, "watch-config", false, "reload backend settings when the config file changes")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(
		newAskCommand(a),
		newChatCommand(a),
		newStatusCommand(a),
		newClearHistoryCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "%s %v\n", errorStyle.Render("Error:"), err)
	}
	return ExitCode(err)
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads the configuration, applies flag overrides and configures
// logging for cmd.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Annotations[annotationSkipConfig] == "true" {
		a.cfg = config.Default()
		a.cfgPath = a.flags.configPath
		return nil
	}

	cfg, path, err := loadConfig(a.flags.configPath)
	if err != nil {
		return err
	}
	if err := a.applyFlags(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.cfgPath = path

	// The full-screen chat owns stdout, so its log always goes to a file.
	logCfg := cfg.Log
	if cmd == cmd.Root() && logCfg.File == "" {
		file, err := config.DefaultLogFile()
		if err != nil {
			return err
		}
		logCfg.File = file
	}
	closer, err := logging.Setup(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logCloser = closer

	log.Debug().
		Str("config", path).
		Str("backend", cfg.Backend.URL).
		Str("mode", cfg.Chat.DefaultMode).
		Msg("Loaded configuration")
	return nil
}

func (a *app) teardown() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// loadConfig loads path, or the default config file when path is empty.
// The returned path is "" when no file was read.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		return cfg, path, err
	}
	found, err := config.FindConfigFile()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load()
	return cfg, found, err
}

// applyFlags copies explicitly set flags over cfg.
func (a *app) applyFlags(cfg *config.Config) error {
	if a.flags.backendURL != "" {
		cfg.Backend.URL = a.flags.backendURL
	}
	if a.flags.sessionID != "" {
		cfg.Backend.SessionID = a.flags.sessionID
	}
	if a.flags.mode != "" {
		mode, err := model.ParseRetrievalMode(a.flags.mode)
		if err != nil {
			return &usageError{err: errors.Wrap(err, "--mode")}
		}
		cfg.Chat.DefaultMode = mode.String()
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	return nil
}
