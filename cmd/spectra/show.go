package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spectrasuite/internal/session"
	"spectrasuite/internal/spectrum"
)

func newShowCommand(cctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <trace-id>",
		Short: "Show one trace's metadata and provenance log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var spec *spectrum.CanonicalSpectrum
			var visible bool
			err := cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				trace, ok := sess.Trace(args[0])
				if !ok {
					return false, fmt.Errorf("no trace %q in session", args[0])
				}
				spec = trace.Spectrum
				visible = trace.Visible
				return false, nil
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, struct {
					TraceID string                 `json:"trace_id"`
					Visible bool                   `json:"visible"`
					Trace   spectrum.ManifestEntry `json:"trace"`
				}{args[0], visible, spec.ToManifestEntry()})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trace:    %s\n", args[0])
			fmt.Fprintf(out, "label:    %s\n", spec.Label)
			if low, high, ok := spec.WaveRange(); ok {
				fmt.Fprintf(out, "range:    %.6g to %.6g nm (%d samples)\n", low, high, len(spec.WavelengthVacNm))
			}
			fmt.Fprintf(out, "mode:     %s", spec.ValueMode)
			if spec.ValueUnit != "" {
				fmt.Fprintf(out, " [%s]", spec.ValueUnit)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "standard: %s\n", spec.Metadata.WavelengthStandard)
			if spec.Metadata.Target != "" {
				fmt.Fprintf(out, "target:   %s\n", spec.Metadata.Target)
			}
			if spec.Metadata.Instrument != "" {
				fmt.Fprintf(out, "instr:    %s\n", spec.Metadata.Instrument)
			}
			if spec.Metadata.Provider != "" {
				fmt.Fprintf(out, "provider: %s (%s)\n", spec.Metadata.Provider, spec.Metadata.ProductID)
			}
			fmt.Fprintf(out, "hash:     %s\n", spec.SourceHash)
			fmt.Fprintf(out, "visible:  %t\n", visible)

			fmt.Fprintln(out, "provenance:")
			for i, event := range spec.Provenance {
				line := fmt.Sprintf("  %d. %s at %s", i+1, event.Kind, event.Time.Format("2006-01-02 15:04:05 MST"))
				if event.Note != "" {
					line += " (" + event.Note + ")"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable output")
	return cmd
}
