package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subdesk/internal/workspace"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import an SRT/JSON subtitle file or a video's subtitle track",
	Long: `Import a subtitle file into the database.

SRT files are parsed leniently: malformed blocks are skipped and listed,
the rest of the file is kept. JSON files must be an array of entries as
written by subdesk. Video files have their default text subtitle track
extracted with ffmpeg.

Examples:
  subdesk import episode01.srt
  subdesk import movie.mkv --project 3f6c... -l ja`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List stored subtitle files",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

var showCmd = &cobra.Command{
	Use:   "show [file_id]",
	Short: "Print the entries of a stored file with their candidates",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [file_id]",
	Short: "Delete a stored file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.DeleteFile(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted file %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd, filesCmd, showCmd, deleteCmd)

	importCmd.Flags().String("project", "", "Project ID to assign the file to")
	importCmd.Flags().String("name", "", "Display name (default: file name)")
	importCmd.Flags().
		StringP("language", "l", "auto", "Source language code (e.g., en, ja), or auto to detect")

	filesCmd.Flags().String("project", "", "Only list files of this project")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()

	projectID, _ := cmd.Flags().GetString("project")
	name, _ := cmd.Flags().GetString("name")
	lang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}

	logger.Infow("Importing subtitles", "input", path, "project", projectID)

	res, err := ws.Import(ctx, path, workspace.UploadOptions{
		Name:      name,
		ProjectID: projectID,
		Language:  lang,
	})
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", filepath.Base(path), err)
	}

	fmt.Printf("Imported %s\n", res.File.Name)
	fmt.Printf("  ID: %s\n", res.File.ID)
	fmt.Printf("  Entries: %d\n", len(res.File.Entries))
	if res.File.Language != "" {
		fmt.Printf("  Language: %s\n", res.File.Language)
	}
	if res.Transcoded != "" {
		fmt.Printf("  Encoding: %s (converted to UTF-8)\n", res.Transcoded)
	}
	if res.Stream != nil {
		fmt.Printf("  Track: #%d (%s)\n", res.Stream.Index, res.Stream.Codec)
	}
	if len(res.Skipped) > 0 {
		fmt.Printf("  Skipped blocks: %d\n", len(res.Skipped))
		for _, s := range res.Skipped {
			fmt.Printf("    block %d: %s\n", s.Block, s.Reason)
		}
	}
	return nil
}

func runFiles(cmd *cobra.Command, args []string) error {
	projectID, _ := cmd.Flags().GetString("project")

	records, err := db.ListFiles(cmd.Context(), projectID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No files")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLANG\tSTATUS\tPROGRESS\tPROJECT\tUPLOADED")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
			rec.ID,
			rec.Name,
			orDash(rec.Language),
			rec.Status,
			rec.Progress,
			orDash(rec.ProjectID),
			rec.UploadedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return tw.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	file, err := ws.Open(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s, %d entries, %s %.1f%%)\n\n",
		file.Name, orDash(file.Language), len(file.Entries), file.Status, file.Progress)

	for i, e := range file.Entries {
		fmt.Printf("#%d  id=%d  %s --> %s\n", i+1, e.ID, e.StartTime, e.EndTime)
		fmt.Printf("  text: %s\n", oneLine(e.Text))
		for _, p := range sortedKeys(e.Candidates) {
			c := e.Candidates[p]
			if c.Error != "" {
				fmt.Printf("  %s: %s [error: %s]\n", p, oneLine(c.Text), c.Error)
				continue
			}
			fmt.Printf("  %s: %s\n", p, oneLine(c.Text))
		}
		if e.IsTranslated() {
			fmt.Printf("  translation: %s\n", oneLine(e.Translation))
		}
	}
	return nil
}
