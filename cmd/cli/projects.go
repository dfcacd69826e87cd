package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cherrysync/internal/project"
)

var (
	projectsID     int
	projectsTeamID int
	projectsJSON   bool
)

type projectsPayload struct {
	Changed  bool              `json:"changed"`
	Projects []project.Project `json:"cherryservers_projects"`
}

// projectsCmd lists projects by team, or fetches one by id.
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects for a team, or fetch one by id",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		api, err := newClient(ctx)
		if err != nil {
			fail(err)
		}

		manager := project.NewManager(api)

		var projects []project.Project
		switch {
		case cmd.Flags().Changed("id"):
			p, err := manager.TryGetByID(ctx, projectsID)
			if err != nil {
				fail(err)
			}
			if p == nil {
				fail(fmt.Errorf("no project resource found"))
			}
			projects = []project.Project{*p}
		case cmd.Flags().Changed("team-id"):
			projects, err = manager.GetByParentID(ctx, projectsTeamID)
			if err != nil {
				fail(err)
			}
		default:
			fail(fmt.Errorf("either --id or --team-id is required"))
		}

		if projectsJSON {
			printJSON(projectsPayload{Projects: projects})
			return
		}
		for _, p := range projects {
			fmt.Printf("%d\t%s\tbgp=%v\n", p.ID, p.Name, p.BGP.Enabled)
		}
	},
}

func init() {
	projectsCmd.Flags().IntVar(&projectsID, "id", 0, "ID of the project")
	projectsCmd.Flags().IntVar(&projectsTeamID, "team-id", 0, "ID of the team to list projects for")
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "Print the result payload as JSON")

	rootCmd.AddCommand(projectsCmd)
}
