package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spectrasuite/internal/ingest"
	"spectrasuite/internal/session"
)

type ingestReport struct {
	File      string `json:"file"`
	TraceID   string `json:"trace_id,omitempty"`
	Label     string `json:"label"`
	Samples   int    `json:"samples"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func newIngestCommand(cctx *commandContext) *cobra.Command {
	var (
		hdu       int
		allowDups bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest local spectral files into the session",
		Long: "Ingest parses ASCII tables and FITS containers, normalizes each " +
			"spectrum to a vacuum-wavelength nanometer axis, and registers the " +
			"result as a session trace. Duplicate files are reported and skipped " +
			"unless --allow-duplicates is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("hdu") {
				hdu = cfg.Ingest.DefaultHDU
			}
			if !cmd.Flags().Changed("allow-duplicates") {
				allowDups = cfg.Ingest.AllowDuplicates
			}

			logger := cctx.ensureLogger()
			var reports []ingestReport
			runErr := cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				mutated := false
				for _, arg := range args {
					raw, err := readLimitedFile(arg, cfg.Ingest.MaxFileMiB)
					if err != nil {
						return mutated, err
					}
					outcome, err := sess.IngestBytes(raw, filepath.Base(arg), session.IngestOptions{
						HDU:             hdu,
						AllowDuplicates: allowDups,
					})
					if errors.Is(err, ingest.ErrDuplicate) {
						logger.Warn("duplicate spectrum skipped", "file", arg)
						reports = append(reports, ingestReport{
							File:      arg,
							Label:     outcome.Spectrum.Label,
							Samples:   len(outcome.Spectrum.WavelengthVacNm),
							Duplicate: true,
						})
						continue
					}
					if err != nil {
						return mutated, err
					}
					mutated = true
					reports = append(reports, ingestReport{
						File:    arg,
						TraceID: outcome.TraceID,
						Label:   outcome.Spectrum.Label,
						Samples: len(outcome.Spectrum.WavelengthVacNm),
					})
				}
				return mutated, nil
			})
			if runErr != nil {
				return runErr
			}

			if jsonOut {
				return writeJSON(cmd, reports)
			}
			for _, report := range reports {
				if report.Duplicate {
					fmt.Fprintf(cmd.OutOrStdout(), "skipped %s: duplicate of %q\n", report.File, report.Label)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ingested %s as %s (%d samples)\n",
					report.File, report.TraceID, report.Samples)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&hdu, "hdu", -1, "FITS extension index to read (negative selects automatically)")
	cmd.Flags().BoolVar(&allowDups, "allow-duplicates", false, "Register spectra already present in the session")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable output")
	return cmd
}

// readLimitedFile loads a file after enforcing the configured size cap.
func readLimitedFile(path string, maxMiB int) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxMiB > 0 && info.Size() > int64(maxMiB)<<20 {
		return nil, fmt.Errorf("%s is %d bytes, over the %d MiB ingest limit", path, info.Size(), maxMiB)
	}
	return os.ReadFile(path)
}
