package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"freshsave/internal/infrastructure/backup"
)

var (
	exportOut       string
	exportPlain     bool
	importFile      string
	importOverwrite bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the inventory collection to a zstd-compressed archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("freshsave-%s.json.zst", time.Now().Format("20060102-150405"))
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		algo := backup.CompressionZstd
		if exportPlain {
			algo = backup.CompressionNone
		}
		n, err := backup.NewExporter(s.backend.Store, algo, s.log).Export(cmd.Context(), s.cfg.Store.CollectionID, f)
		if err != nil {
			return err
		}
		if err := f.Sync(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", n, out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import items from an export archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFile == "" {
			return fmt.Errorf("--file is required")
		}
		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		mode := backup.SkipExisting
		if importOverwrite {
			mode = backup.Overwrite
		}
		stats, err := backup.NewImporter(s.backend.Store, s.log).Import(cmd.Context(), s.cfg.Store.CollectionID, f, mode)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d created, %d updated, %d skipped\n",
			importFile, stats.Created, stats.Updated, stats.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Archive output path (default: freshsave-<timestamp>.json.zst)")
	exportCmd.Flags().BoolVar(&exportPlain, "plain", false, "Write uncompressed JSON")
	importCmd.Flags().StringVar(&importFile, "file", "", "Archive to import")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace items whose id already exists")
}
