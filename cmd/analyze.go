package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/internal/client"
	"github.com/mabhi256/medi/internal/html"
	"github.com/mabhi256/medi/internal/report"
	"github.com/mabhi256/medi/internal/tui"
	"github.com/mabhi256/medi/internal/upload"
	"github.com/mabhi256/medi/utils"
)

var (
	analyzeOutput string
	analyzeOut    string
)

var analyzeFormats = []string{"tui", "cli", "markdown", "json", "html"}

var errRateLimited = errors.New("daily limit reached: you've used all 5 free analyses for today, please come back tomorrow")

var analyzeCmd = &cobra.Command{
	Use:   "analyze [report-file]",
	Short: "Analyze a medical report",
	Long: `Upload a .txt or .pdf medical report and show the specialist reports.

Examples:
  medi analyze                      # Pick a file in the interactive UI
  medi analyze labs.pdf             # Open the UI with labs.pdf selected
  medi analyze labs.pdf -o cli      # Print the reports to the terminal
  medi analyze labs.txt -o html     # Export an HTML report`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension(upload.AllowedExtensions...),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Validate output flag
		if !slices.Contains(analyzeFormats, analyzeOutput) {
			return fmt.Errorf("invalid output format: %s. Valid options: %v", analyzeOutput, analyzeFormats)
		}
		if analyzeOutput != "tui" && len(args) == 0 {
			return fmt.Errorf("a report file is required for -o %s", analyzeOutput)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctrl := newController()

		if analyzeOutput == "tui" {
			opts := tui.Options{}
			if len(args) == 1 {
				opts.InitialPath = args[0]
			}
			return tui.StartTUI(ctx, ctrl, opts)
		}

		doc, err := runAnalysis(ctx, ctrl, args[0])
		if err != nil {
			return err
		}
		return writeDocument(cmd.OutOrStdout(), doc, analyzeOutput, analyzeOut)
	},
}

func newController() *analysis.Controller {
	svc := client.New(cfg.Endpoint, nil, logger)
	return analysis.NewController(upload.NewGate(cfg.MaxUploadBytes), svc, logger)
}

// runAnalysis selects path, submits it and waits for the outcome
func runAnalysis(ctx context.Context, ctrl *analysis.Controller, path string) (report.Document, error) {
	file, err := ctrl.Select(path)
	if err != nil {
		return report.Document{}, err
	}

	state, err := ctrl.Submit(ctx)
	if err != nil {
		return report.Document{}, err
	}

	switch state.Phase {
	case analysis.PhaseSucceeded:
		return report.FromResult(file.Name, state.Result), nil
	case analysis.PhaseRateLimited:
		return report.Document{}, errRateLimited
	default:
		return report.Document{}, errors.New(state.Message)
	}
}

func writeDocument(w io.Writer, doc report.Document, format, outPath string) error {
	switch format {
	case "html":
		path, err := html.GenerateHTMLReport(doc, outPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "📄 HTML report written to %s\n", path)
		return nil

	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return writeOutput(w, outPath, append(data, '\n'))

	case "markdown":
		return writeOutput(w, outPath, []byte(doc.Markdown()))

	default:
		return writeOutput(w, outPath, []byte(renderCLI(doc, terminalWidth())))
	}
}

func writeOutput(w io.Writer, outPath string, data []byte) error {
	if outPath == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Fprintf(w, "Written to %s\n", outPath)
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "tui", "Output format")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write the result to this path instead of stdout")

	// When user types: medi analyze file.pdf -o <TAB>
	analyzeCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return analyzeFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
