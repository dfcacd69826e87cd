package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cherrysync/internal/project"
	"cherrysync/internal/resource"
)

var (
	projectState  string
	projectID     int
	projectTeamID int
	projectName   string
	projectBGP    bool
	projectDryRun bool
	projectJSON   bool
)

// projectCmd reconciles a single project.
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Reconcile a project (use --dry-run to preview)",
	Long: `Reconcile one project against the declared parameters. The project
is looked up by --id, or by --name within --team-id. Depending on
--state and whether a match was found, the project is created, updated,
deleted or left alone.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		api, err := newClient(ctx)
		if err != nil {
			fail(err)
		}

		params := project.Params{State: resource.State(projectState)}
		if cmd.Flags().Changed("id") {
			params.ID = &projectID
		}
		if cmd.Flags().Changed("team-id") {
			params.TeamID = &projectTeamID
		}
		if cmd.Flags().Changed("name") {
			params.Name = &projectName
		}
		if cmd.Flags().Changed("bgp") {
			params.BGP = &projectBGP
		}

		result, err := project.NewReconciler(api, projectDryRun).Reconcile(ctx, params)
		if err != nil {
			fail(err)
		}

		if projectJSON {
			printJSON(result)
			return
		}
		reportChanged(result.Changed, projectDryRun)
		if result.Project != nil {
			fmt.Printf("  id=%d name=%s bgp=%v\n", result.Project.ID, result.Project.Name, result.Project.BGP.Enabled)
		}
	},
}

func init() {
	projectCmd.Flags().StringVar(&projectState, "state", "present", "Desired state: present or absent")
	projectCmd.Flags().IntVar(&projectID, "id", 0, "ID of the project")
	projectCmd.Flags().IntVar(&projectTeamID, "team-id", 0, "ID of the owning team")
	projectCmd.Flags().StringVar(&projectName, "name", "", "Name of the project")
	projectCmd.Flags().BoolVar(&projectBGP, "bgp", false, "Enable BGP for the project")
	projectCmd.Flags().BoolVar(&projectDryRun, "dry-run", false, "Preview changes without applying them")
	projectCmd.Flags().BoolVar(&projectJSON, "json", false, "Print the result payload as JSON")

	rootCmd.AddCommand(projectCmd)
}
