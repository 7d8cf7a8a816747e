package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical/doc-corrector/cmd/doc-corrector/ui"
	"github.com/spherical/doc-corrector/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Empty the upload and processed directories",
	Long: `Removes every file in the upload directory (inputs, expanded archives and page
images of scanned PDFs) and in the processed directory, then recreates both.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read(cfgFile)
	if err != nil {
		return err
	}

	for _, dir := range []string{cfg.Paths.UploadDir, cfg.Paths.ProcessedDir} {
		if err := resetDir(dir); err != nil {
			return err
		}
		ui.Debug("reset %s", dir)
	}

	ui.Success("Removed all uploaded and processed files")
	return nil
}

// resetDir deletes dir with its contents and creates it again empty.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
