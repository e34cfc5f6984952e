// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newStatusCommand creates the "status" command, which probes GET /.
func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(a.cfg)
			if err != nil {
				return err
			}
			settings := client.Settings()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, titleStyle.Render("AutoReport Backend"))
			fmt.Fprintln(out, renderSeparator(40))
			fmt.Fprintln(out, renderField("URL", settings.BaseURL))
			fmt.Fprintln(out, renderField("Ask path", settings.AskPath))
			fmt.Fprintln(out, renderField("Mode", a.cfg.Chat.Mode().Label()))
			if settings.SessionID != "" {
				fmt.Fprintln(out, renderField("Session", settings.SessionID))
			}

			start := time.Now()
			message, err := client.Health(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, renderField("Status", renderStatus(false)))
				return err
			}
			fmt.Fprintln(out, renderField("Status", renderStatus(true)+" "+dimStyle.Render(time.Since(start).Round(time.Millisecond).String())))
			if message != "" {
				fmt.Fprintln(out, renderField("Message", message))
			}
			return nil
		},
	}
}

// newClearHistoryCommand creates the "clear-history" command.
func newClearHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-history",
		Short: "Clear the server-side history of a session",
		Long: `Clear the conversation history the backend keeps for a session.

The session is --session-id, then backend.session_id, then "default".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(a.cfg)
			if err != nil {
				return err
			}
			message, err := client.ClearHistory(cmd.Context(), a.cfg.Backend.SessionID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", renderStatus(true), message)
			return nil
		},
	}
}
