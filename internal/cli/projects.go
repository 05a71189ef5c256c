package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create, delete and fill projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		p, err := db.CreateProject(cmd.Context(), args[0], description)
		if err != nil {
			return err
		}
		fmt.Printf("Created project %s\n", p.Name)
		fmt.Printf("  ID: %s\n", p.ID)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project_id]",
	Short: "Delete a project; its files are kept unassigned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.DeleteProject(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted project %s\n", args[0])
		return nil
	},
}

var projectAssignCmd = &cobra.Command{
	Use:   "assign [file_id] [project_id|-]",
	Short: "Move a file into a project, or out of any project with -",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID := args[1]
		if projectID == "-" {
			projectID = ""
		}
		if err := db.AssignProject(cmd.Context(), args[0], projectID); err != nil {
			return err
		}
		if projectID == "" {
			fmt.Printf("File %s is no longer in a project\n", args[0])
		} else {
			fmt.Printf("File %s assigned to project %s\n", args[0], projectID)
		}
		return nil
	},
}

var projectStatusCmd = &cobra.Command{
	Use:   "status [project_id]",
	Short: "Show a project's progress and its files",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectStatus,
}

func init() {
	rootCmd.AddCommand(projectsCmd, projectCmd)
	projectCmd.AddCommand(projectCreateCmd, projectDeleteCmd, projectAssignCmd, projectStatusCmd)

	projectCreateCmd.Flags().StringP("description", "d", "", "Project description")
}

func runProjects(cmd *cobra.Command, args []string) error {
	projects, err := db.ListProjects(cmd.Context())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPROGRESS\tFILES\tCREATED")
	for _, p := range projects {
		summary, err := ws.ProjectStatus(cmd.Context(), p.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f%%\t%d\t%s\n",
			p.ID,
			p.Name,
			summary.Status,
			summary.Progress,
			len(summary.Files),
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return tw.Flush()
}

func runProjectStatus(cmd *cobra.Command, args []string) error {
	summary, err := ws.ProjectStatus(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s (%.1f%%)\n", summary.Project.Name, summary.Status, summary.Progress)
	if summary.Project.Description != "" {
		fmt.Printf("  %s\n", summary.Project.Description)
	}
	for _, f := range summary.Files {
		fmt.Printf("  %s  %-30s %-12s %.1f%%\n", f.ID, f.Name, f.Status, f.Progress)
	}
	return nil
}
