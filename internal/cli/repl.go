// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/config"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/conversation"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/export"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// historyFileName is the REPL history file inside the config directory.
const historyFileName = "chat_history"

// newChatCommand creates the line-oriented "chat" command.
func newChatCommand(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line with input history",
		Long: `Chat with the assistant one line at a time.

Lines starting with ':' are commands:
  :mode [name]            show or change the retrieval mode
  :modes                  list retrieval modes
  :export [md|json|html]  export the transcript
  :help                   show this help
  :quit                   exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			r := newREPL(sess, a.cfg, cmd.OutOrStdout(), raw)
			return r.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print reply markup unrendered")
	return cmd
}

// =============================================================================
// REPL
// =============================================================================

// repl drives a session from line input.
type repl struct {
	sess      *session
	cfg       *config.Config
	out       io.Writer
	raw       bool
	exportDir string
}

func newREPL(sess *session, cfg *config.Config, out io.Writer, raw bool) *repl {
	return &repl{
		sess:      sess,
		cfg:       cfg,
		out:       out,
		raw:       raw,
		exportDir: ".",
	}
}

// run reads lines until :quit, EOF or Ctrl+C.
func (r *repl) run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := historyPath()
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer saveHistory(line, historyFile)
	}

	r.printGreeting()
	for {
		input, err := line.Prompt(r.prompt())
		if err != nil {
			// Ctrl+C, Ctrl+D or a closed stdin all end the session.
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return errors.Wrap(err, "read input")
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		quit, err := r.handleLine(ctx, input)
		if err != nil {
			fmt.Fprintf(r.out, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
		if quit {
			return nil
		}
	}
}

func (r *repl) prompt() string {
	return fmt.Sprintf("[%s] > ", r.sess.selector.Mode().Label())
}

func (r *repl) printGreeting() {
	snap := r.sess.store.Snapshot()
	if first, ok := firstMessage(snap); ok {
		r.printReply(first.Content)
	}
	fmt.Fprintln(r.out, dimStyle.Render("Type :help for commands, :quit to exit."))
}

func firstMessage(snap conversation.Snapshot) (model.Message, bool) {
	if len(snap.Messages) == 0 {
		return model.Message{}, false
	}
	return snap.Messages[0], true
}

func (r *repl) printReply(content string) {
	fmt.Fprintf(r.out, "%s\n%s\n\n", titleStyle.Render(r.cfg.Chat.AssistantName), formatReply(content, r.out, r.raw, r.cfg.UI.Theme))
}

// handleLine runs one input line. quit is true when the session should end.
func (r *repl) handleLine(ctx context.Context, input string) (quit bool, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, nil
	}
	if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
		return true, nil
	}
	if strings.HasPrefix(input, ":") {
		return r.handleCommand(input)
	}

	fmt.Fprintln(r.out, dimStyle.Render(r.cfg.Chat.TypingText))
	reply, err := r.sess.ask(ctx, input)
	if err != nil {
		return false, err
	}
	r.printReply(reply.Content)
	return false, nil
}

func (r *repl) handleCommand(input string) (bool, error) {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case ":mode":
		if len(args) == 0 {
			fmt.Fprintln(r.out, renderField("Mode", r.sess.selector.Mode().Label()))
			return false, nil
		}
		if err := r.sess.selector.Set(model.RetrievalMode(strings.Join(args, "_"))); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, renderField("Mode", r.sess.selector.Mode().Label()))

	case ":modes":
		current := r.sess.selector.Mode()
		for _, mode := range model.Modes() {
			marker := "  "
			if mode == current {
				marker = "* "
			}
			fmt.Fprintf(r.out, "%s%-22s %s\n", marker, mode.String(), dimStyle.Render(mode.Label()))
		}

	case ":export":
		format := "md"
		if len(args) > 0 {
			format = args[0]
		}
		t := export.NewTranscript(r.sess.store.Snapshot().Messages, r.cfg.Chat.AssistantName, r.sess.selector.Mode())
		t.SessionID = r.cfg.Backend.SessionID
		opts := export.DefaultOptions()
		opts.OutputDir = r.exportDir
		path, err := export.ExportFormat(t, format, opts)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "%s Exported to %s\n", renderStatus(true), path)

	case ":help", ":?":
		fmt.Fprintln(r.out, strings.Join([]string{
			":mode [name]            show or change the retrieval mode",
			":modes                  list retrieval modes",
			":export [md|json|html]  export the transcript",
			":help                   show this help",
			":quit                   exit",
		}, "\n"))

	case ":quit", ":q", ":exit":
		return true, nil

	default:
		return false, errors.Errorf("unknown command %s (try :help)", name)
	}
	return false, nil
}

// =============================================================================
// HISTORY
// =============================================================================

func historyPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, historyFileName)
}

// saveHistory writes the history file with owner-only permissions.
func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		log.Debug().Err(err).Msg("could not create history directory")
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		log.Debug().Err(err).Msg("could not save chat history")
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
