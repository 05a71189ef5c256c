package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select [file_id]",
	Short: "Use a provider's candidates as the selected translation",
	Long: `Copy a provider's candidate into the selected translation, either for
every entry that has one or for a single entry by position (1-based, as
printed by "subdesk show").

Examples:
  subdesk select 3f6c... --provider nlp
  subdesk select 3f6c... --provider libretranslate --entry 12`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

var editCmd = &cobra.Command{
	Use:   "edit [file_id] [position] [text]",
	Short: "Set the selected translation of one entry by hand",
	Long: `Replace the selected translation of the entry at a 1-based position.
An empty text marks the entry untranslated again. Use \n in text for a
line break.`,
	Args: cobra.ExactArgs(3),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(selectCmd, editCmd)

	selectCmd.Flags().StringP("provider", "p", "", "Candidate provider to select (required)")
	selectCmd.Flags().Int("entry", 0, "Only select for the entry at this position")

	_ = selectCmd.MarkFlagRequired("provider")
}

func runSelect(cmd *cobra.Command, args []string) error {
	fileID := args[0]
	provider, _ := cmd.Flags().GetString("provider")
	position, _ := cmd.Flags().GetInt("entry")

	if position != 0 {
		if err := ws.SelectEntry(cmd.Context(), fileID, position, provider); err != nil {
			return err
		}
		fmt.Printf("Selected %s translation for entry %d\n", provider, position)
		return nil
	}

	n, err := ws.SelectAll(cmd.Context(), fileID, provider)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no entry has a %s candidate", provider)
	}
	fmt.Printf("Selected %s translation for %d entries\n", provider, n)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	var position int
	if _, err := fmt.Sscanf(args[1], "%d", &position); err != nil {
		return fmt.Errorf("invalid position %q: %w", args[1], err)
	}
	text := unescapeNewlines(args[2])

	if err := ws.SetTranslation(cmd.Context(), args[0], position, text); err != nil {
		return err
	}
	fmt.Printf("Updated entry %d\n", position)
	return nil
}
