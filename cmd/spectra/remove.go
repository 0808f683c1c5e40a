package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spectrasuite/internal/session"
)

func newRemoveCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <trace-id>...",
		Short: "Remove traces from the session",
		Long: "Remove drops traces and releases their dedup fingerprints, so the " +
			"same files can be ingested again afterwards.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				for _, id := range args {
					if err := sess.Remove(id); err != nil {
						return false, err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d trace(s)\n", len(args))
				return true, nil
			})
		},
	}
	return cmd
}

func newToggleCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <trace-id>",
		Short: "Toggle a trace's visibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				visible, err := sess.ToggleVisibility(args[0])
				if err != nil {
					return false, err
				}
				state := "hidden"
				if visible {
					state = "visible"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], state)
				return true, nil
			})
		},
	}
	return cmd
}
