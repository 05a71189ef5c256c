package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subdesk/internal/subtitle"
)

var exportCmd = &cobra.Command{
	Use:   "export [file_id]",
	Short: "Write a stored file as SRT",
	Long: `Export a stored file as SRT.

Modes:
  source       the original text
  translation  the selected translation, original text where untranslated
  overlay      bilingual: translation first, original on the next line

Without -o the SRT is printed to stdout.

Examples:
  subdesk export 3f6c... -o episode01.vi.srt
  subdesk export 3f6c... --mode overlay --clipboard`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("mode", "translation", "Export mode (source, translation, overlay)")
	exportCmd.Flags().StringP("output", "o", "", "Output file path")
	exportCmd.Flags().Bool("clipboard", false, "Copy the SRT to the clipboard")
}

func runExport(cmd *cobra.Command, args []string) error {
	modeStr, _ := cmd.Flags().GetString("mode")
	outputPath, _ := cmd.Flags().GetString("output")
	toClipboard, _ := cmd.Flags().GetBool("clipboard")

	mode, err := subtitle.ParseExportMode(modeStr)
	if err != nil {
		return err
	}

	if toClipboard || outputPath == "" {
		srt, err := ws.Export(cmd.Context(), args[0], mode)
		if err != nil {
			return err
		}
		if toClipboard {
			if err := clipboard.WriteAll(srt); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Fprintln(os.Stderr, "Copied SRT to clipboard")
		} else {
			fmt.Print(srt)
		}
	}
	if outputPath == "" {
		return nil
	}

	if err := ws.ExportTo(cmd.Context(), args[0], mode, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles exported successfully: %s\n", absOutput)
	fmt.Printf("  Mode: %s\n", mode)
	return nil
}

// unescapeNewlines turns a literal \n typed on the command line into a
// line break
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
