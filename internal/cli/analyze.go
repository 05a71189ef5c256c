package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subdesk/internal/analysis"
	"github.com/mgpai22/subdesk/internal/compare"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file_id]",
	Short: "Report reading speed, gaps and translation progress of a file",
	Long: `Analyze a stored file.

Reading speed is characters per second of display time: above 20 is too
fast, below 10 too slow. A gap longer than 2 seconds between captions is
reported as large. Entries with unparseable or non-positive timing are
counted separately and left out of the averages.

Examples:
  subdesk analyze 3f6c...
  subdesk analyze 3f6c... --entries
  subdesk analyze 3f6c... --chart > chart.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var compareCmd = &cobra.Command{
	Use:   "compare [file_a] [file_b]",
	Short: "Compare two versions of the same subtitles",
	Long: `Pair every entry of the first file with an entry of the second and flag
pairs whose start times differ by more than 0.5s or whose text lengths
differ by more than 20 characters.

Index mode pairs entries with the same id. Time mode pairs an entry with
the first entry starting less than 1 second away.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(analyzeCmd, compareCmd)

	analyzeCmd.Flags().Bool("entries", false, "List per-entry metrics")
	analyzeCmd.Flags().Bool("chart", false, "Print the per-entry chart series as JSON")

	compareCmd.Flags().String("mode", "index", "Matching mode (index, time)")
	compareCmd.Flags().Bool("all", false, "Print every row, not only flagged ones")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	showEntries, _ := cmd.Flags().GetBool("entries")
	chart, _ := cmd.Flags().GetBool("chart")

	report, err := ws.Analyze(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	stats := report.Stats

	if chart {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats.ChartPoints())
	}

	fmt.Printf("%s\n", report.File.Name)
	fmt.Printf("  Entries: %d\n", stats.TotalEntries)
	fmt.Printf("  Characters: %d (translation: %d)\n", stats.TotalChars, stats.TotalTranslationChars)
	fmt.Printf("  Total duration: %.2fs\n", stats.TotalDuration)
	fmt.Printf("  Average duration: %.2fs\n", stats.AvgDuration)
	fmt.Printf("  Average chars/entry: %.1f\n", stats.AvgCharsPerEntry)
	fmt.Printf("  Average reading speed: %.2f chars/s\n", stats.AvgCharsPerSecond)
	fmt.Printf("  Too fast: %d\n", stats.TooFast)
	fmt.Printf("  Too slow: %d\n", stats.TooSlow)
	fmt.Printf("  Large gaps: %d\n", stats.LargeGaps)
	if stats.Overlaps > 0 {
		fmt.Printf("  Overlaps: %d\n", stats.Overlaps)
	}
	if stats.InvalidTimings > 0 {
		fmt.Printf("  Invalid timings: %d\n", stats.InvalidTimings)
	}
	fmt.Printf("  Translated: %.1f%%\n", stats.TranslationProgress)
	fmt.Printf("  Provider progress: %.1f%% (%s)\n", report.Progress, report.Status)

	if !showEntries {
		return nil
	}

	fmt.Println()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tDURATION\tCHARS\tCPS\tSPEED\tGAP")
	for _, m := range stats.Entries {
		gap := "-"
		if m.HasGap {
			gap = fmt.Sprintf("%.2fs", m.Gap)
			if m.LargeGap {
				gap += " large"
			}
			if m.Overlap {
				gap += " overlap"
			}
		}
		cps := "-"
		if m.Speed != analysis.SpeedUnknown {
			cps = fmt.Sprintf("%.1f", m.CharsPerSecond)
		}
		fmt.Fprintf(tw, "%d\t%d\t%.2fs\t%d\t%s\t%s\t%s\n",
			m.Position, m.ID, m.Duration, m.Chars, cps, m.Speed, gap)
	}
	return tw.Flush()
}

func runCompare(cmd *cobra.Command, args []string) error {
	modeStr, _ := cmd.Flags().GetString("mode")
	all, _ := cmd.Flags().GetBool("all")

	mode, err := compare.ParseMode(modeStr)
	if err != nil {
		return err
	}

	report, err := ws.Compare(cmd.Context(), args[0], args[1], mode)
	if err != nil {
		return err
	}

	fmt.Printf("Compared %d entries with %d (%s mode)\n", report.LeftEntries, report.RightEntries, report.Mode)
	fmt.Printf("  Matched: %d\n", report.Matched)
	fmt.Printf("  Timing mismatches: %d\n", report.TimingMismatches)
	fmt.Printf("  Length mismatches: %d\n", report.LengthMismatches)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	printed := false
	for i, row := range report.Rows {
		flagged := !row.Matched || row.TimingMismatch || row.LengthMismatch
		if !all && !flagged {
			continue
		}
		if !printed {
			fmt.Println()
			fmt.Fprintln(tw, "#\tLEFT\tRIGHT\tSTART DIFF\tLEN DIFF\tFLAGS")
			printed = true
		}

		left, right := "-", "-"
		if row.Left != nil {
			left = fmt.Sprintf("%d %s", row.Left.ID, row.Left.StartTime)
		}
		if row.Right != nil {
			right = fmt.Sprintf("%d %s", row.Right.ID, row.Right.StartTime)
		}
		diff := "-"
		if row.HasStartDiff {
			diff = fmt.Sprintf("%.3fs", row.StartDiff)
		}

		var flags string
		switch {
		case !row.Matched && row.Left != nil:
			flags = "no match"
		case !row.Matched:
			flags = "unpaired"
		default:
			if row.TimingMismatch {
				flags += "timing "
			}
			if row.LengthMismatch {
				flags += "length"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", i+1, left, right, diff, row.LengthDiff, flags)
	}
	return tw.Flush()
}
