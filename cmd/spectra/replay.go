package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"spectrasuite/internal/manifest"
)

func newReplayCommand(cctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <bundle-or-manifest>",
		Short: "Rebuild the session from an exported bundle",
		Long: "Replay reads a zip bundle or a bare manifest.json and replaces the " +
			"current session with the traces it carries, provenance logs and " +
			"display preferences included.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			data, err := manifestBytes(raw)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			m, err := manifest.Decode(data)
			if err != nil {
				return err
			}
			sess, err := manifest.Replay(m, cctx.ensureLogger())
			if err != nil {
				return err
			}

			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveSession(cmd.Context(), sess); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "replayed %d trace(s) into the session\n", len(m.Traces))
			return nil
		},
	}
	return cmd
}

// manifestBytes extracts manifest.json from a zip bundle, or passes raw JSON
// through untouched.
func manifestBytes(raw []byte) ([]byte, error) {
	if len(raw) < 4 || !bytes.HasPrefix(raw, []byte("PK")) {
		return raw, nil
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}
	for _, file := range zr.File {
		if file.Name != "manifest.json" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("bundle has no manifest.json")
}
