package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/olstar/pkg/fsm"
	"github.com/ha1tch/olstar/pkg/fsmfile"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <machine> [input...]",
		Short: "Run a machine on inputs",
		Long: `With inputs on the command line, prints the output word they produce.
Without, reads commands from standard input: an input symbol, reset, status,
history, inputs or quit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fsmfile.ReadFile(args[0])
			if err != nil {
				return err
			}
			runner, err := fsm.NewRunner(f)
			if err != nil {
				return err
			}
			if len(args) > 1 {
				outputs, err := runner.Run(args[1:])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(outputs, " "))
				return nil
			}
			interact(cmd.InOrStdin(), cmd.OutOrStdout(), runner, f)
			return nil
		},
	}
}

func interact(in io.Reader, out io.Writer, runner *fsm.Runner, f *fsm.FSM) {
	fmt.Fprintf(out, "Machine: %s\n", f.Name)
	fmt.Fprintf(out, "Commands: <input>, reset, status, history, inputs, quit\n\n")
	fmt.Fprintln(out, runner.Status())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit", "q":
			return
		case "reset":
			runner.Reset()
			fmt.Fprintln(out, "Reset to initial state")
			fmt.Fprintln(out, runner.Status())
		case "status":
			fmt.Fprintln(out, runner.Status())
		case "history":
			for i, s := range runner.History() {
				fmt.Fprintf(out, "  %d: %s --%s/%s--> %s\n", i+1, s.FromState, s.Input, s.Output, s.ToState)
			}
		case "inputs":
			fmt.Fprintf(out, "Available inputs: %v\n", runner.AvailableInputs())
		default:
			output, err := runner.Step(line)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Output: %s\n", output)
			fmt.Fprintln(out, runner.Status())
		}
	}
}
