package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ha1tch/olstar/pkg/codegen"
	"github.com/ha1tch/olstar/pkg/fsm"
	"github.com/ha1tch/olstar/pkg/fsmfile"
	"github.com/ha1tch/olstar/pkg/mealy"
	"github.com/ha1tch/olstar/pkg/olstar"
)

func newLearnCmd(root *rootOptions) *cobra.Command {
	opts := &learnOptions{}
	var output, pkg string
	cmd := &cobra.Command{
		Use:   "learn <machine.json|machine.dot>",
		Short: "Learn a model of a machine file",
		Long: `Learns a Mealy machine from the machine in the given file, which serves as the
system under learning. The learned hypothesis can be written as JSON, DOT or
generated Go source.`,
		Example: `  olstar learn coffee.dot
  olstar learn coffee.dot -m random --words 5000 -o learned.json
  olstar learn coffee.dot -p coffee.map --metrics queries.prom
  olstar learn coffee.dot -o coffee.go --package coffee`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, name, err := loadTarget(args[0])
			if err != nil {
				return err
			}
			_, res, err := learnTarget(cmd, root, opts, target, name)
			if err != nil {
				return err
			}
			return writeHypothesis(cmd, output, pkg, res.Hypothesis, name)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the hypothesis to this .json, .dot or .go file")
	cmd.Flags().StringVar(&pkg, "package", "model", "package name of generated Go code")
	return cmd
}

// learnTarget runs a complete learning session and prints its report.
func learnTarget(cmd *cobra.Command, root *rootOptions, opts *learnOptions, target *mealy.Compact, name string) (*session, olstar.Result, error) {
	cfg, err := root.load()
	if err != nil {
		return nil, olstar.Result{}, err
	}
	if err := opts.apply(cmd, &cfg); err != nil {
		return nil, olstar.Result{}, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log)
	s, err := newSession(cfg, logger, target, opts.projectionFile)
	if err != nil {
		return nil, olstar.Result{}, err
	}
	res, err := s.run()
	if merr := s.writeMetrics(opts.metricsFile); merr != nil && err == nil {
		err = merr
	}
	if err != nil {
		return s, res, fmt.Errorf("learn %s: %w", name, err)
	}
	printReport(cmd.OutOrStdout(), name, s, res)
	return s, res, nil
}

func writeHypothesis(cmd *cobra.Command, path, pkg string, h *olstar.Hypothesis, name string) error {
	if path == "" {
		return nil
	}
	f, err := fsm.FromMealy(h, name+"-learned")
	if err != nil {
		return err
	}
	if filepath.Ext(path) == ".go" {
		src, err := codegen.GenerateGo(f, pkg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return err
		}
	} else if err := fsmfile.WriteFile(path, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
