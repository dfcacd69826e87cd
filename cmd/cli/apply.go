package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cherrysync/internal/client"
	"cherrysync/internal/manifest"
	"cherrysync/internal/project"
	"cherrysync/internal/sshkey"
)

var (
	applyFile   string
	applyValues string
	applyDryRun bool
	applyJSON   bool
)

type applyResult struct {
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// applyCmd reconciles every document of a manifest file. Documents are
// applied independently and in order; a failing document does not stop the
// rest, but any failure makes the run exit non-zero.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile all resources declared in a manifest file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		docs, err := manifest.ParseFile(manifest.ParseOptions{
			Path:       applyFile,
			ValuesPath: applyValues,
		})
		if err != nil {
			fail(err)
		}
		if len(docs) == 0 {
			fmt.Println("no resources to reconcile")
			return
		}

		api, err := newClient(ctx)
		if err != nil {
			fail(err)
		}

		results := make([]applyResult, 0, len(docs))
		failed := false
		for _, doc := range docs {
			res := applyDocument(ctx, api, doc)
			if res.Error != "" {
				failed = true
			}
			results = append(results, res)
		}

		if applyJSON {
			printJSON(results)
		} else {
			displayApplyResults(results)
		}

		if failed {
			os.Exit(1)
		}
	},
}

func applyDocument(ctx context.Context, api client.Client, doc manifest.Document) applyResult {
	res := applyResult{Kind: doc.Kind, Name: doc.Metadata.Name}

	switch doc.Kind {
	case manifest.KindSSHKey:
		params, err := doc.SSHKeyParams()
		if err != nil {
			res.Error = err.Error()
			return res
		}
		out, err := sshkey.NewReconciler(api, applyDryRun).Reconcile(ctx, params)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Changed = out.Changed
	case manifest.KindProject:
		params, err := doc.ProjectParams()
		if err != nil {
			res.Error = err.Error()
			return res
		}
		out, err := project.NewReconciler(api, applyDryRun).Reconcile(ctx, params)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Changed = out.Changed
	default:
		res.Error = fmt.Sprintf("unsupported kind %q", doc.Kind)
	}

	return res
}

func displayApplyResults(results []applyResult) {
	changed := 0
	for _, r := range results {
		label := fmt.Sprintf("%s/%s", r.Kind, r.Name)
		switch {
		case r.Error != "":
			fmt.Printf("%s %s: %s\n", failStyle.Render("✗"), label, r.Error)
		case r.Changed && applyDryRun:
			fmt.Printf("%s %s would change\n", warnStyle.Render("~"), label)
			changed++
		case r.Changed:
			fmt.Printf("%s %s changed\n", doneStyle.Render("✓"), label)
			changed++
		default:
			fmt.Printf("  %s unchanged\n", label)
		}
	}
	fmt.Printf("Completed. %d of %d resources changed.\n", changed, len(results))
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "Manifest file to apply")
	applyCmd.Flags().StringVar(&applyValues, "values", "", "Values file for template rendering")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Preview changes without applying them")
	applyCmd.Flags().BoolVar(&applyJSON, "json", false, "Print per-resource results as JSON")
	applyCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(applyCmd)
}
