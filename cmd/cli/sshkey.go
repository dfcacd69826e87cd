package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cherrysync/internal/resource"
	"cherrysync/internal/sshkey"
)

var (
	sshkeyState       string
	sshkeyLabel       string
	sshkeyName        string
	sshkeyPublicKey   string
	sshkeyKey         string
	sshkeyID          int
	sshkeyFingerprint string
	sshkeyDryRun      bool
	sshkeyJSON        bool
)

// sshkeyCmd reconciles a single SSH key.
var sshkeyCmd = &cobra.Command{
	Use:   "sshkey",
	Short: "Reconcile an SSH key (use --dry-run to preview)",
	Long: `Reconcile one SSH key against the declared parameters. The key is
looked up by any of --id, --fingerprint, --label or --public-key; more
than one match is an error. Depending on --state and whether a match
was found, the key is created, updated, deleted or left alone.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		api, err := newClient(ctx)
		if err != nil {
			fail(err)
		}

		params := sshkey.Params{State: resource.State(sshkeyState)}
		if cmd.Flags().Changed("label") {
			params.Label = &sshkeyLabel
		} else if cmd.Flags().Changed("name") {
			params.Label = &sshkeyName
		}
		if cmd.Flags().Changed("public-key") {
			params.PublicKey = &sshkeyPublicKey
		} else if cmd.Flags().Changed("key") {
			params.PublicKey = &sshkeyKey
		}
		if cmd.Flags().Changed("id") {
			params.ID = &sshkeyID
		}
		if cmd.Flags().Changed("fingerprint") {
			params.Fingerprint = &sshkeyFingerprint
		}

		result, err := sshkey.NewReconciler(api, sshkeyDryRun).Reconcile(ctx, params)
		if err != nil {
			fail(err)
		}

		if sshkeyJSON {
			printJSON(result)
			return
		}
		reportChanged(result.Changed, sshkeyDryRun)
		if result.Key != nil {
			fmt.Printf("  id=%d label=%s fingerprint=%s\n", result.Key.ID, result.Key.Label, result.Key.Fingerprint)
		}
	},
}

func init() {
	sshkeyCmd.Flags().StringVar(&sshkeyState, "state", "present", "Desired state: present or absent")
	sshkeyCmd.Flags().StringVar(&sshkeyLabel, "label", "", "Label of the SSH key")
	sshkeyCmd.Flags().StringVar(&sshkeyName, "name", "", "Alias for --label")
	sshkeyCmd.Flags().StringVar(&sshkeyPublicKey, "public-key", "", "Public SSH key material")
	sshkeyCmd.Flags().StringVar(&sshkeyKey, "key", "", "Alias for --public-key")
	sshkeyCmd.Flags().IntVar(&sshkeyID, "id", 0, "ID of the SSH key")
	sshkeyCmd.Flags().StringVar(&sshkeyFingerprint, "fingerprint", "", "Fingerprint of the SSH key")
	sshkeyCmd.Flags().BoolVar(&sshkeyDryRun, "dry-run", false, "Preview changes without applying them")
	sshkeyCmd.Flags().BoolVar(&sshkeyJSON, "json", false, "Print the result payload as JSON")

	rootCmd.AddCommand(sshkeyCmd)
}
