package cli

import (
	"fmt"
	"strconv"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

func newCmdBuild(f *Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "build <subscription>",
		Short: "Restart the last build of a subscribed job",
		Long: heredoc.Doc(`
			Restart the most recent build of the job bound to a subscription.
			A job that never ran cannot be restarted.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subscription, err := strconv.Atoi(args[0])
			if err != nil || subscription <= 0 {
				return fmt.Errorf("invalid subscription %q", args[0])
			}

			plugin, err := f.Plugin(cmd.Context())
			if err != nil {
				return err
			}
			if err := plugin.Build(cmd.Context(), subscription); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Launching the job for the subscription %d succeeded\n", subscription)
			return nil
		},
	}
}
