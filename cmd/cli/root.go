package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cherrysync/internal/client"
)

var (
	rootToken   string
	rootBaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "cherrysync",
	Short: "Cherrysync reconciles declared Cherry Servers resources against the provider API",
	Long: `Cherrysync reconciles the declared state of Cherry Servers resources
(SSH keys, projects) against the provider's public API. Each invocation
looks up the matching resource, computes the minimal action, applies it
and reports whether anything changed. Use --dry-run to preview.`,
}

// Execute executes the root CLI command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootToken, "token", "", "API token (falls back to CHERRY_AUTH_TOKEN, then CHERRY_AUTH_KEY)")
	rootCmd.PersistentFlags().StringVar(&rootBaseURL, "base-url", "", "API base URL override")
}

func newClient(ctx context.Context) (client.Client, error) {
	return client.New(ctx, client.Options{Token: rootToken, BaseURL: rootBaseURL})
}
