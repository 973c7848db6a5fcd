package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ha1tch/olstar/pkg/fsm"
	"github.com/ha1tch/olstar/pkg/fsmfile"
)

type demo struct {
	description string
	build       func() *fsm.FSM
}

var demos = map[string]demo{
	"counters": {
		description: "two interleaved mod-3 counters, six states, outputs 0-2",
		build:       twoCountersDemo,
	},
	"defect": {
		description: "four states whose projections leave a reachable defect",
		build:       defectDemo,
	},
	"counter": {
		description: "a single mod-3 counter outputting its count on a",
		build:       counterDemo,
	},
}

func twoCountersDemo() *fsm.FSM {
	f := fsm.New("counters")
	f.SetInitial("q0")
	for _, t := range [][4]string{
		{"q0", "a", "q1", "1"}, {"q0", "b", "r0", "0"},
		{"q1", "a", "q2", "2"}, {"q1", "b", "r1", "1"},
		{"q2", "a", "q0", "0"}, {"q2", "b", "r2", "2"},
		{"r0", "a", "r2", "2"}, {"r0", "b", "q0", "0"},
		{"r1", "a", "r0", "0"}, {"r1", "b", "q1", "1"},
		{"r2", "a", "r1", "1"}, {"r2", "b", "q2", "2"},
	} {
		f.AddTransition(t[0], t[1], t[2], t[3])
	}
	return f
}

func defectDemo() *fsm.FSM {
	f := fsm.New("defect")
	f.SetInitial("qe")
	for _, t := range [][4]string{
		{"qe", "a", "qa", "0"}, {"qe", "b", "qb", "1"},
		{"qa", "a", "qaa", "1"}, {"qa", "b", "qaa", "2"},
		{"qb", "a", "qaa", "0"}, {"qb", "b", "qaa", "2"},
		{"qaa", "a", "qaa", "2"}, {"qaa", "b", "qaa", "0"},
	} {
		f.AddTransition(t[0], t[1], t[2], t[3])
	}
	return f
}

func counterDemo() *fsm.FSM {
	f := fsm.New("counter")
	f.SetInitial("c0")
	for _, t := range [][4]string{
		{"c0", "a", "c1", "0"}, {"c0", "b", "c0", "0"},
		{"c1", "a", "c2", "1"}, {"c1", "b", "c1", "0"},
		{"c2", "a", "c0", "2"}, {"c2", "b", "c2", "0"},
	} {
		f.AddTransition(t[0], t[1], t[2], t[3])
	}
	return f
}

func demoNames() []string {
	names := maps.Keys(demos)
	slices.Sort(names)
	return names
}

func newDemoCmd(root *rootOptions) *cobra.Command {
	opts := &learnOptions{}
	var export string
	cmd := &cobra.Command{
		Use:   "demo [name]",
		Short: "Learn one of the built-in targets",
		Long:  "Without a name, lists the built-in targets. With one, learns it like the learn command.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range demoNames() {
					fmt.Fprintf(out, "%-10s %s\n", name, demos[name].description)
				}
				return nil
			}
			d, ok := demos[args[0]]
			if !ok {
				return fmt.Errorf("unknown demo %q (have %v)", args[0], demoNames())
			}
			f := d.build()
			if export != "" {
				if err := fsmfile.WriteFile(export, f); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", export)
				return nil
			}
			target, err := f.ToMealy()
			if err != nil {
				return err
			}
			_, _, err = learnTarget(cmd, root, opts, target, f.Name)
			return err
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&export, "export", "", "write the target to this .json or .dot file instead of learning it")
	return cmd
}
