package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/ort-html-report/internal/dispatcher"
	"github.com/StinkyLord/ort-html-report/internal/model"
	"github.com/StinkyLord/ort-html-report/internal/normalizer"
	"github.com/StinkyLord/ort-html-report/internal/output"
	"github.com/StinkyLord/ort-html-report/internal/stream"
)

const toolVersion = "1.0.0"

// logLevel is the level of the handler installed by Execute.
var logLevel = new(slog.LevelVar)

// levelFor maps the number of -v flags to a log level.
func levelFor(verbosity int) slog.Level {
	if verbosity > 0 {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func newRootCmd() *cobra.Command {
	var jsonFile, htmlFile string
	var verbosity int

	cmd := &cobra.Command{
		Use:   "ort-html-report",
		Short: "Render an OSS scan report as an HTML license summary",
		Long: `ort-html-report reads a scan report in JSON format (repository, analyzer
and scanner results) and writes a static HTML page listing the license of
every project and package found by the analyzer.

The report is read as a stream, one top-level key at a time, so large
documents are never held in memory as a whole.

Usage: -i <json_file> -o <html_file>`,
		Example:       "  ort-html-report -i analyzer-result.json -o report.html",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel.Set(levelFor(verbosity))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := convert(jsonFile, htmlFile); err != nil {
				return err
			}

			r := lipgloss.NewRenderer(cmd.OutOrStdout())
			done := r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
			fmt.Fprintln(cmd.OutOrStdout(), done.Render(fmt.Sprintf("%s generated! Thank You!", htmlFile)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&jsonFile, "json_file", "i", "", "JSON file used for conversion")
	cmd.Flags().StringVarP(&htmlFile, "html_file", "o", "", "HTML file used for output")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "issue INFO (default) and DEBUG (-v) output")
	_ = cmd.MarkFlagRequired("json_file")
	_ = cmd.MarkFlagRequired("html_file")
	_ = cmd.MarkFlagFilename("json_file", "json")
	_ = cmd.MarkFlagFilename("html_file", "html", "htm")

	return cmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// convert streams the report at jsonFile through the normalizers and writes
// the HTML report to htmlFile once the whole input has been consumed.
func convert(jsonFile, htmlFile string) error {
	f, err := os.Open(jsonFile)
	if err != nil {
		return fmt.Errorf("cannot open input: %w", err)
	}
	defer f.Close()

	slog.Debug("Converting report", "input", jsonFile, "output", htmlFile, "version", toolVersion)

	normalizers := normalizer.Defaults()
	src := stream.NewReader(f, stream.WithKeys(normalizer.Keys(normalizers...)...))
	d := dispatcher.New(src, model.NewStore(), normalizers...)

	return d.Run(func(store *model.Store) error {
		return output.WriteHTML(store, htmlFile, toolVersion)
	})
}
