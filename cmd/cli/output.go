package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// fail prints the error and exits non-zero. Reconcilers never exit on their
// own; this is the only place failures turn into process termination.
func fail(err error) {
	fmt.Println(failStyle.Render(err.Error()))
	os.Exit(1)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail(fmt.Errorf("failed to serialize result: %w", err))
	}
	fmt.Println(string(b))
}

func reportChanged(changed, dryRun bool) {
	switch {
	case changed && dryRun:
		fmt.Println(warnStyle.Render("would change"))
	case changed:
		fmt.Println(doneStyle.Render("changed"))
	default:
		fmt.Println("no change")
	}
}
