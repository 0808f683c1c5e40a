package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spectrasuite/internal/manifest"
	"spectrasuite/internal/session"
)

// appVersion is stamped into export manifests; overridden at build time via
// -ldflags "-X main.appVersion=...".
var appVersion = "dev"

func newExportCommand(cctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the session as a replayable bundle",
		Long: "Export writes a zip bundle holding manifest.json plus one CSV per " +
			"trace in the session's display unit. An --out path ending in .json " +
			"writes the bare manifest instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if outPath == "" {
				name := fmt.Sprintf("session-%s.zip", time.Now().UTC().Format("20060102-150405"))
				outPath = filepath.Join(cfg.Paths.ExportDir, name)
			}

			var m manifest.Manifest
			err = cctx.withSession(cmd.Context(), func(sess *session.Session) (bool, error) {
				if len(sess.Traces()) == 0 {
					return false, fmt.Errorf("session has no traces to export")
				}
				m = manifest.Build(sess, appVersion)
				return false, nil
			})
			if err != nil {
				return err
			}

			if strings.EqualFold(filepath.Ext(outPath), ".json") {
				data, err := m.Encode()
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write manifest: %w", err)
				}
			} else {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create bundle: %w", err)
				}
				if err := manifest.WriteBundle(file, m); err != nil {
					_ = file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("finish bundle: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d trace(s) to %s\n", len(m.Traces), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Bundle destination (default: export dir with a timestamped name)")
	return cmd
}
