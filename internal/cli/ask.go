// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/markup"
)

// newAskCommand creates the one-shot "ask" command.
func newAskCommand(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask one question and print the answer",
		Long: `Ask one question and print the answer with its citations.

The question is read from stdin when no arguments are given and stdin is not
a terminal. Replies are rendered for the terminal; use --raw for the markup
exactly as the backend sent it.`,
		Example: `  autoreport ask "What was BMW's revenue in 2023?"
  autoreport ask --mode multi_query "Compare Tesla and Volvo deliveries"
  echo "Who is Volkswagen's CEO?" | autoreport ask --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := questionFrom(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			sess, err := newSession(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			reply, err := sess.ask(cmd.Context(), question)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatReply(reply.Content, out, raw, a.cfg.UI.Theme))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply markup unrendered")
	return cmd
}

// questionFrom joins args, or reads stdin when there are none.
func questionFrom(args []string, stdin io.Reader) (string, error) {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" && stdin != nil && !isTerminal(stdin) {
		data, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
		if err != nil {
			return "", errors.Wrap(err, "read question from stdin")
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return "", newUsageError("no question given")
	}
	return question, nil
}

// formatReply renders reply markup for out. Terminals get glamour output;
// pipes get Markdown; raw returns the markup untouched.
func formatReply(content string, out io.Writer, raw bool, theme string) string {
	if raw {
		return content
	}
	if !isTerminal(out) {
		return markup.ToMarkdown(content)
	}

	style := "auto"
	switch strings.ToLower(theme) {
	case "dark", "light":
		style = strings.ToLower(theme)
	}
	if os.Getenv("NO_COLOR") != "" {
		style = "notty"
	}
	renderer, err := markup.NewRenderer(terminalWidth(out)-4, style)
	if err != nil {
		return markup.ToMarkdown(content)
	}
	return renderer.Render(content)
}
