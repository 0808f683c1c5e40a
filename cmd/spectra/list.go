package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"spectrasuite/internal/session"
)

type traceSummary struct {
	TraceID  string `json:"trace_id"`
	Label    string `json:"label"`
	RangeNm  string `json:"range_nm"`
	Standard string `json:"wavelength_standard"`
	Samples  int    `json:"samples"`
	Visible  bool   `json:"visible"`
	Provider string `json:"provider,omitempty"`
}

func newListCommand(cctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the session's traces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var summaries []traceSummary
			var axisUnit, displayMode string
			err := cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				axisUnit = string(sess.AxisUnit())
				displayMode = string(sess.DisplayMode())
				for _, trace := range sess.Traces() {
					summaries = append(summaries, summarizeTrace(trace))
				}
				return false, nil
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, struct {
					AxisUnit    string         `json:"axis_unit"`
					DisplayMode string         `json:"display_mode"`
					Traces      []traceSummary `json:"traces"`
				}{axisUnit, displayMode, summaries})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "axis unit: %s, display mode: %s\n", axisUnit, displayMode)
			if len(summaries) == 0 {
				fmt.Fprintln(out, "no traces in session")
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				visible := "yes"
				if !s.Visible {
					visible = "no"
				}
				rows = append(rows, []string{
					s.TraceID, s.Label, s.RangeNm, s.Standard,
					strconv.Itoa(s.Samples), visible, s.Provider,
				})
			}
			columns := []tableColumn{
				{title: "ID"}, {title: "Label"}, {title: "Range (nm)"}, {title: "Standard"},
				{title: "Samples", right: true}, {title: "Visible"}, {title: "Provider"},
			}
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable(columns, rows))
				return nil
			}
			for _, row := range rows {
				fmt.Fprintln(out, strings.Join(row, "\t"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable output")
	return cmd
}

func summarizeTrace(trace *session.Trace) traceSummary {
	spec := trace.Spectrum
	rangeText := "-"
	if low, high, ok := spec.WaveRange(); ok {
		rangeText = fmt.Sprintf("%.4g to %.4g", low, high)
	}
	standard := string(spec.Metadata.WavelengthStandard)
	if standard == "" {
		standard = "unknown"
	}
	return traceSummary{
		TraceID:  trace.ID,
		Label:    spec.Label,
		RangeNm:  rangeText,
		Standard: standard,
		Samples:  len(spec.WavelengthVacNm),
		Visible:  trace.Visible,
		Provider: spec.Metadata.Provider,
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
