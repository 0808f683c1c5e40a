package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spectrasuite/internal/session"
	"spectrasuite/internal/units"
)

func newSetCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change session display preferences",
	}
	cmd.AddCommand(newSetAxisUnitCommand(cctx))
	cmd.AddCommand(newSetModeCommand(cctx))
	return cmd
}

func newSetAxisUnitCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "axis-unit <unit>",
		Short: "Set the display axis unit (nm, angstrom, micron, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, ok := units.Parse(args[0])
			if !ok {
				return fmt.Errorf("unknown axis unit %q", args[0])
			}
			return cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				sess.SetAxisUnit(unit)
				fmt.Fprintf(cmd.OutOrStdout(), "axis unit set to %s\n", unit)
				return true, nil
			})
		},
	}
}

func newSetModeCommand(cctx *commandContext) *cobra.Command {
	modes := map[string]session.DisplayMode{
		string(session.DisplayFlux):         session.DisplayFlux,
		string(session.DisplayTransmission): session.DisplayTransmission,
		string(session.DisplayAbsorbance):   session.DisplayAbsorbance,
		string(session.DisplayOpticalDepth): session.DisplayOpticalDepth,
	}
	return &cobra.Command{
		Use:   "mode <mode>",
		Short: "Set the display mode (flux, transmission, absorbance, optical_depth)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := modes[args[0]]
			if !ok {
				return fmt.Errorf("unknown display mode %q", args[0])
			}
			return cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				sess.SetDisplayMode(mode)
				fmt.Fprintf(cmd.OutOrStdout(), "display mode set to %s\n", mode)
				return true, nil
			})
		},
	}
}
