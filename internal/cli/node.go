package cli

import (
	"github.com/spf13/cobra"

	"travisconnect/internal/api/handlers"
)

func newCmdNode(f *Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node <command>",
		Short: "Manage Travis nodes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <node>",
		Short: "Check that a node is reachable with its credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := f.Store(cmd.Context())
			if err != nil {
				return err
			}
			prm, err := store.NodeParameters(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			plugin, err := f.Plugin(cmd.Context())
			if err != nil {
				return err
			}
			available, err := plugin.CheckStatus(cmd.Context(), prm)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handlers.NodeStatus{Node: args[0], Available: available})
		},
	})
	return cmd
}
