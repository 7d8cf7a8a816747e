package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical/doc-corrector/cmd/doc-corrector/ui"
	"github.com/spherical/doc-corrector/internal/config"
	"github.com/spherical/doc-corrector/internal/domain"
	"github.com/spherical/doc-corrector/pkg/corrector"
)

var (
	processMode   string
	processPrompt string
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Correct one or more documents",
	Long: `Corrects each file in turn and writes {name}_corrigido.docx to the processed
directory. Zip archives are expanded into the upload directory first; only
.png, .jpg, .jpeg, .pdf, .txt and .docx entries are kept.

Modes:
  digital  read the text embedded in .txt, .docx and .pdf files
  ocr      recognize the text of images and scanned .pdf files

A failing file is reported and the next one is processed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processMode, "mode", "m", corrector.ModeDigital, "extraction mode: digital or ocr")
	processCmd.Flags().StringVarP(&processPrompt, "prompt", "p", corrector.DefaultInstruction, "correction instruction sent with every chunk")
	rootCmd.AddCommand(processCmd)
}

// fileResult is the outcome of one input file.
type fileResult struct {
	Path   string
	Output string
	Err    error
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := domain.ParseMode(processMode); err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := cfg.Logger(verbose)
	domain.SetDefaultLogger(logger)

	for _, dir := range []string{cfg.Paths.UploadDir, cfg.Paths.ProcessedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	client, err := corrector.NewClientWithConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	spinner := ui.NewSpinner("Preparing inputs...")
	spinner.Start()
	files, failures := expandInputs(args, cfg.Paths.UploadDir)
	spinner.Stop()

	ui.Section("Document Correction")
	ui.Info("Mode: %s", processMode)
	ui.Info("Output directory: %s", cfg.Paths.ProcessedDir)
	ui.Debug("Instruction: %s", processPrompt)
	for _, f := range failures {
		ui.Error("%s: %v", filepath.Base(f.Path), f.Err)
	}
	ui.Newline()

	startTime := time.Now()
	results := processFiles(ctx, client, files)

	ui.Newline()
	succeeded := 0
	for _, r := range results {
		if r.Err != nil {
			ui.Error("%s: %v", filepath.Base(r.Path), r.Err)
			continue
		}
		succeeded++
		ui.Success("%s -> %s", filepath.Base(r.Path), r.Output)
	}

	total := len(results) + len(failures)
	ui.Newline()
	ui.Info("%d/%d files corrected in %s", succeeded, total, time.Since(startTime).Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		ui.Warning("Interrupted, remaining files were skipped")
	}
	if total > 0 && succeeded == 0 {
		return fmt.Errorf("all %d files failed", total)
	}
	return nil
}

// processFiles corrects files sequentially. A failure is recorded and the
// loop moves on; cancellation stops it.
func processFiles(ctx context.Context, client *corrector.Client, files []string) []fileResult {
	results := make([]fileResult, 0, len(files))
	if len(files) == 0 {
		return results
	}

	bar := ui.NewProgressBar(len(files), "Correcting")
	defer bar.Finish()

	for i, path := range files {
		if ctx.Err() != nil {
			break
		}

		bar.Describe(filepath.Base(path))
		output, err := client.Process(ctx, path, processPrompt, processMode)
		results = append(results, fileResult{Path: path, Output: output, Err: err})
		bar.Set(i + 1)
	}

	return results
}
