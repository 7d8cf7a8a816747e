package commands

import (
	"github.com/spf13/cobra"

	"github.com/spherical/doc-corrector/cmd/doc-corrector/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "doc-corrector",
	Short: "Correct documents with OCR and a language model",
	Long: `doc-corrector extracts the text of plain-text, DOCX, PDF and image documents,
using Google Cloud Vision OCR for scans, sends it in chunks to Cohere with a
correction instruction, and writes each result as {name}_corrigido.docx.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, verbose)
		ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
