package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ha1tch/olstar/pkg/fsmfile"
	"github.com/ha1tch/olstar/pkg/mealy"
)

func newTableCmd(root *rootOptions) *cobra.Command {
	opts := &learnOptions{}
	var pngPath string
	var plain bool
	cmd := &cobra.Command{
		Use:   "table <machine|demo name>",
		Short: "Learn a target and show the final observation table",
		Long: `Learns the target and shows the observation table. By default the table opens
in a terminal viewer; --plain prints it and --png renders it to an image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, name, err := resolveTarget(args[0])
			if err != nil {
				return err
			}
			s, _, err := learnTarget(cmd, root, opts, target, name)
			if err != nil {
				return err
			}

			g := tableGrid(s.learner.Table(), "Observation table of "+name)
			switch {
			case pngPath != "":
				return writePNG(cmd, pngPath, g)
			case plain:
				printGrid(cmd.OutOrStdout(), g)
				return nil
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			return newTableView(screen, g).show()
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&pngPath, "png", "", "render the table to this PNG file")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the table as text")
	return cmd
}

// resolveTarget loads a machine file or builds a demo of that name.
func resolveTarget(arg string) (*mealy.Compact, string, error) {
	if d, ok := demos[arg]; ok {
		target, err := d.build().ToMealy()
		return target, arg, err
	}
	return loadTarget(arg)
}

func writePNG(cmd *cobra.Command, path string, g fsmfile.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fsmfile.RenderPNG(g, f, fsmfile.DefaultPNGOptions()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
