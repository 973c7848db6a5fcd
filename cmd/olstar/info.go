package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ha1tch/olstar/pkg/fsm"
	"github.com/ha1tch/olstar/pkg/fsmfile"
	"github.com/ha1tch/olstar/pkg/mealy"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <machine>",
		Short: "Show machine information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fsmfile.ReadFile(args[0])
			if err != nil {
				return err
			}
			return printInfo(cmd, f)
		},
	}
}

func printInfo(cmd *cobra.Command, f *fsm.FSM) error {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, f.String())

	usage := make(map[string]int)
	for _, t := range f.Transitions {
		usage[t.Output]++
	}
	outputs := maps.Keys(usage)
	slices.Sort(outputs)
	parts := make([]string, len(outputs))
	for i, o := range outputs {
		parts[i] = fmt.Sprintf("%s×%d", o, usage[o])
	}
	fmt.Fprintf(out, "  Output usage: %s\n", strings.Join(parts, " "))

	if m, err := f.ToMealy(); err == nil {
		reachable, err := mealy.Materialize(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  Reachable: %d states, distinguished by %d words\n",
			reachable.NumStates(), len(mealy.CharacterizingSet(reachable)))
	}
	for _, w := range f.Analyse() {
		if len(w.States) > 0 {
			fmt.Fprintf(out, "  Warning: %s: %s\n", w.Message, strings.Join(w.States, ", "))
		} else {
			fmt.Fprintf(out, "  Warning: %s\n", w.Message)
		}
	}
	return nil
}
