package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the effective safety rules",
	Long: `Shows the block list, confirmation patterns, and interactive-program
registry that the current configuration produces, in evaluation order.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Blocked commands (never executed):")
	for _, b := range cfg.Security.BlockedCommands {
		fmt.Fprintf(out, "  %s\n", b)
	}

	fmt.Fprintln(out, "\nConfirmation patterns (require approval, first match wins):")
	width := 0
	for _, p := range cfg.Security.ConfirmPatterns {
		if len(p.Pattern) > width {
			width = len(p.Pattern)
		}
	}
	for _, p := range cfg.Security.ConfirmPatterns {
		fmt.Fprintf(out, "  %-*s  %s\n", width, p.Pattern, p.Description)
	}

	fmt.Fprintln(out, "\nInteractive programs (run attached to the terminal):")
	fmt.Fprintf(out, "  %s\n", strings.Join(cfg.Security.InteractivePrograms, " "))
	return nil
}
