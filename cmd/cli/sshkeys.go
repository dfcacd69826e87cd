package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cherrysync/internal/sshkey"
)

var (
	sshkeysLabel       string
	sshkeysPublicKey   string
	sshkeysID          int
	sshkeysFingerprint string
	sshkeysJSON        bool
)

type sshkeysPayload struct {
	Changed bool         `json:"changed"`
	Keys    []sshkey.Key `json:"cherryservers_sshkeys"`
}

// sshkeysCmd lists SSH keys. Read-only, never reports a change.
var sshkeysCmd = &cobra.Command{
	Use:   "sshkeys",
	Short: "List SSH keys, optionally filtered",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		api, err := newClient(ctx)
		if err != nil {
			fail(err)
		}

		filter := sshkey.Filter{}
		if cmd.Flags().Changed("id") {
			filter.ID = &sshkeysID
		}
		if cmd.Flags().Changed("label") {
			filter.Label = &sshkeysLabel
		}
		if cmd.Flags().Changed("fingerprint") {
			filter.Fingerprint = &sshkeysFingerprint
		}
		if cmd.Flags().Changed("public-key") {
			filter.PublicKey = &sshkeysPublicKey
		}

		keys, err := sshkey.NewManager(api).Find(ctx, filter)
		if err != nil {
			fail(err)
		}

		if sshkeysJSON {
			printJSON(sshkeysPayload{Keys: keys})
			return
		}
		for _, k := range keys {
			fmt.Printf("%d\t%s\t%s\n", k.ID, k.Label, k.Fingerprint)
		}
	},
}

func init() {
	sshkeysCmd.Flags().IntVar(&sshkeysID, "id", 0, "Filter by SSH key ID")
	sshkeysCmd.Flags().StringVar(&sshkeysLabel, "label", "", "Filter by label")
	sshkeysCmd.Flags().StringVar(&sshkeysFingerprint, "fingerprint", "", "Filter by fingerprint")
	sshkeysCmd.Flags().StringVar(&sshkeysPublicKey, "public-key", "", "Filter by public key material")
	sshkeysCmd.Flags().BoolVar(&sshkeysJSON, "json", false, "Print the result payload as JSON")

	rootCmd.AddCommand(sshkeysCmd)
}
