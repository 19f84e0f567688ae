package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mabhi256/medi/internal/report"
)

var formatOutput string

var formatFormats = []string{"cli", "markdown", "plain", "json"}

var formatCmd = &cobra.Command{
	Use:   "format [text-file|-]",
	Short: "Render specialist-style markup (**bold**, - bullets) without the service",
	Long: `Parse text written in the reports' light markup and render it.
Reads stdin when the file is "-" or omitted.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(formatFormats, formatOutput) {
			return fmt.Errorf("invalid output format: %s. Valid options: %v", formatOutput, formatFormats)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var src io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			src = f
		}

		text, err := io.ReadAll(src)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		out, err := formatText(string(text), formatOutput, terminalWidth())
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	},
}

func formatText(text, format string, width int) (string, error) {
	blocks := report.Parse(text)

	switch format {
	case "json":
		if blocks == nil {
			blocks = []report.Block{}
		}
		data, err := json.MarshalIndent(blocks, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(data) + "\n", nil
	case "markdown":
		return terminate(report.RenderMarkdown(blocks)), nil
	case "plain":
		return terminate(report.RenderPlain(blocks)), nil
	default:
		return terminate(report.RenderTerminal(blocks, width, "")), nil
	}
}

func terminate(s string) string {
	if s == "" {
		return s
	}
	return s + "\n"
}

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().StringVarP(&formatOutput, "output", "o", "cli", "Output format")
	formatCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
