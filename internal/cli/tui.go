// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/config"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/ui/chat"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/ui/styles"
)

// chatOptions converts configuration into chat view options.
func chatOptions(cfg *config.Config) chat.Options {
	opts := chat.DefaultOptions()
	opts.AssistantName = cfg.Chat.AssistantName
	opts.TypingText = cfg.Chat.TypingText
	opts.Placeholder = cfg.Chat.Placeholder
	opts.DateSeparator = cfg.UI.DateSeparator
	opts.WordWrap = cfg.UI.WordWrap
	opts.SessionID = cfg.Backend.SessionID
	return opts
}

// runTUI runs the full-screen chat until the user quits.
func (a *app) runTUI(ctx context.Context) error {
	sess, err := newSession(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	theme := styles.NewTheme(a.cfg.UI.Theme)
	m := chat.New(theme, sess.orch, sess.selector, chatOptions(a.cfg))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := chat.Subscribe(sess.store, p.Send)
	defer unsubscribe()

	if a.flags.watchConfig {
		stop, err := a.watchConfig(ctx, sess)
		if err != nil {
			log.Warn().Err(err).Msg("config watch disabled")
		} else {
			defer stop()
		}
	}

	log.Info().
		Str("backend", a.cfg.Backend.URL).
		Str("mode", sess.selector.Mode().String()).
		Msg("Starting chat")

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run chat")
	}
	return nil
}

// watchConfig reconfigures the backend client whenever the config file
// changes. Invalid edits are logged and the previous settings stay active.
func (a *app) watchConfig(ctx context.Context, sess *session) (func(), error) {
	if a.cfgPath == "" {
		return nil, errors.New("no config file to watch")
	}

	flags := a.flags
	w, err := config.Watch(ctx, a.cfgPath, func(cfg *config.Config, err error) {
		if err != nil {
			log.Warn().Err(err).Str("path", a.cfgPath).Msg("Ignoring invalid config change")
			return
		}
		// Command line flags keep precedence over the file.
		reloaded := &app{flags: flags}
		if err := reloaded.applyFlags(cfg); err != nil {
			log.Warn().Err(err).Msg("Ignoring config change")
			return
		}
		if err := sess.client.Reconfigure(settingsFromConfig(cfg)); err != nil {
			log.Warn().Err(err).Msg("Keeping previous backend settings")
			return
		}
		log.Info().Str("backend", cfg.Backend.URL).Msg("Backend settings reloaded")
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = w.Close() }, nil
}
