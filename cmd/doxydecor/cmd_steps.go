package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"doxydecor/decor"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List decoration steps in run order",
	RunE: func(cmd *cobra.Command, args []string) error {
		off := map[string]bool{}
		for _, name := range cfg.Decor.Disabled {
			off[name] = true
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for i, name := range decor.StepNames() {
			state := "on"
			if off[name] {
				state = "off"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, name, state)
		}
		return tw.Flush()
	},
}
