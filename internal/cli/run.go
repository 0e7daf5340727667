package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var runAnalyze bool

var runCmd = &cobra.Command{
	Use:   "run <request>...",
	Short: "Translate one request into shell commands and execute them",
	Long: `Translates a natural-language request into one or more shell
commands, classifies each against the safety rules, and executes what
the rules allow. Risky commands prompt for confirmation first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runAnalyze, "analyze", false,
		"ask the model to summarize the command output")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	orch, err := sessionBuilder(cmd.Context(), cfg, runAnalyze, modelProgress(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	confirm := promptConfirm(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
	report, err := orch.Handle(cmd.Context(), strings.Join(args, " "), confirm)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr())
	renderReport(cmd.OutOrStdout(), report)
	return nil
}
