package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ha1tch/olstar/pkg/fsmfile"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <machine>...",
		Short: "Validate machine files",
		Long:  "Checks that each file parses, is well-formed and can serve as a learning target.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				f, err := fsmfile.ReadFile(path)
				if err == nil {
					_, err = f.ToMealy()
				}
				if err != nil {
					fmt.Fprintf(out, "%s: invalid: %v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "%s: valid (%d states, %d inputs, %d outputs)\n",
					path, len(f.States), len(f.Alphabet), len(f.OutputAlphabet))
				for _, w := range f.Analyse() {
					fmt.Fprintf(out, "  warning: %s\n", w.Message)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}
}
