package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var replAnalyze bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Starts a read-eval loop: each line is handled as one request, with
conversation context carried across turns. Type "exit" or "quit" to
leave.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().BoolVar(&replAnalyze, "analyze", false,
		"ask the model to summarize command output")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	orch, err := sessionBuilder(cmd.Context(), cfg, replAnalyze, modelProgress(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	// One buffered reader serves both the prompt and confirmations, so
	// no input bytes are lost between the two.
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	confirm := promptConfirm(in, out)

	fmt.Fprintln(out, `shellguard: describe what you want to do, or type "exit" to quit.`)
	for {
		fmt.Fprint(out, "> ")

		line, err := in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		utterance := strings.TrimSpace(line)
		if utterance == "" {
			continue
		}
		if utterance == "exit" || utterance == "quit" {
			return nil
		}

		report, err := orch.Handle(cmd.Context(), utterance, confirm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr())
		renderReport(out, report)
	}
}
