package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spectrasuite/internal/archive"
	"spectrasuite/internal/ingest"
	"spectrasuite/internal/session"
)

func newFetchCommand(cctx *commandContext) *cobra.Command {
	var (
		product   archive.Product
		standard  string
		hdu       int
		allowDups bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download an archive product and ingest it",
		Long: "Fetch downloads a spectrum over http(s) and runs it through the " +
			"ingestion pipeline. Catalog metadata given on the command line fills " +
			"fields the file's own headers left empty; headers always win when " +
			"both are present.",
		Args: cobra.NoArgs,
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
			product.WavelengthStandard = standard

			fetcher := archive.NewHTTPFetcher()
			fetcher.UserAgent = cfg.Archive.UserAgent
			if cfg.Archive.RequestTimeout > 0 {
				fetcher.Timeout = time.Duration(cfg.Archive.RequestTimeout) * time.Second
			}

			logger := cctx.ensureLogger()
			var outcome session.Outcome
			runErr := cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				var err error
				outcome, err = archive.IngestProduct(cmd.Context(), sess, product, fetcher,
					archive.IngestOptions{HDU: hdu, AllowDuplicates: allowDups}, logger)
				if errors.Is(err, ingest.ErrDuplicate) {
					return false, err
				}
				return err == nil, err
			})
			if errors.Is(runErr, ingest.ErrDuplicate) {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s: duplicate of %q\n",
					product.AccessURL, outcome.Spectrum.Label)
				return nil
			}
			if runErr != nil {
				return runErr
			}

			if jsonOut {
				return writeJSON(cmd, ingestReport{
					File:    product.AccessURL,
					TraceID: outcome.TraceID,
					Label:   outcome.Spectrum.Label,
					Samples: len(outcome.Spectrum.WavelengthVacNm),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %s as %s (%d samples)\n",
				product.AccessURL, outcome.TraceID, len(outcome.Spectrum.WavelengthVacNm))
			return nil
		},
	}

	cmd.Flags().StringVar(&product.AccessURL, "url", "", "Product download URL (required)")
	cmd.Flags().StringVar(&product.Provider, "provider", "", "Archive provider name")
	cmd.Flags().StringVar(&product.ProductID, "product", "", "Provider-scoped product identifier")
	cmd.Flags().StringVar(&product.Title, "title", "", "Catalog title for the product")
	cmd.Flags().StringVar(&product.Target, "target", "", "Catalog target name")
	cmd.Flags().StringVar(&product.Instrument, "instrument", "", "Catalog instrument name")
	cmd.Flags().StringVar(&product.Telescope, "telescope", "", "Catalog telescope name")
	cmd.Flags().StringVar(&product.FluxUnits, "flux-units", "", "Catalog flux units")
	cmd.Flags().StringVar(&standard, "standard", "", "Catalog wavelength standard (air, vacuum, mixed, none)")
	cmd.Flags().StringVar(&product.Citation, "citation", "", "Citation text to attach")
	cmd.Flags().StringVar(&product.DOI, "doi", "", "DOI to attach")
	cmd.Flags().IntVar(&hdu, "hdu", -1, "FITS extension index to read (negative selects automatically)")
	cmd.Flags().BoolVar(&allowDups, "allow-duplicates", false, "Register spectra already present in the session")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable output")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
