package commands

import "github.com/spf13/cobra"

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every enabled task in dependency order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := runOptions(cmd)
			opts.ProgressFile, _ = cmd.Flags().GetString("progress")
			return c.app.Run(cmd.Context(), opts)
		},
	}
	addRunFlags(cmd)
	cmd.Flags().String("progress", "", "Write the progress journal, one JSON status update per line, to this file")
	return cmd
}
