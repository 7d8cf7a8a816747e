// Package ui provides terminal output helpers for the doc-corrector CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	out     io.Writer = os.Stdout
	errOut  io.Writer = os.Stderr
	verbose bool
)

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verboseOutput bool) {
	verbose = verboseOutput
	if noColor {
		color.NoColor = true
	}
}

// SetOutput redirects standard and error output.
func SetOutput(stdout, stderr io.Writer) {
	out = stdout
	errOut = stderr
}

// ProgressBar wraps a progressbar instance for deterministic progress display.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a new progress bar with the given total and description.
func NewProgressBar(total int, description string) *ProgressBar {
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(errOut, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

// Describe replaces the text shown before the bar.
func (p *ProgressBar) Describe(description string) {
	p.bar.Describe(description)
}

// Set moves the progress bar to current.
func (p *ProgressBar) Set(current int) {
	_ = p.bar.Set(current)
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// Spinner wraps a spinner instance for indeterminate progress display.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = errOut
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Success displays a success message.
func Success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(errOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning displays a warning message.
func Warning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info displays an informational message.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Debug displays a message only in verbose mode.
func Debug(format string, args ...interface{}) {
	if !verbose {
		return
	}
	color.New(color.Faint).Fprintf(out, "  %s\n", fmt.Sprintf(format, args...))
}

// Section displays a section header.
func Section(title string) {
	color.New(color.Bold).Fprintf(out, "\n%s\n", title)
	fmt.Fprintf(out, "%s\n\n", strings.Repeat("=", len([]rune(title))))
}

// Newline prints a newline.
func Newline() {
	fmt.Fprintln(out)
}
