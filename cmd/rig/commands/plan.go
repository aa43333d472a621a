package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the execution order without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			planned, err := c.app.Plan(cmd.Context(), runOptions(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, task := range planned {
				if task.Disabled {
					_, _ = fmt.Fprintf(out, "%s (disabled)\n", task.Name)
					continue
				}
				_, _ = fmt.Fprintln(out, task.Name)
			}
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}
