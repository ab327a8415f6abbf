package cli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

func newCmdJob(f *Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job <command>",
		Short: "Inspect Travis jobs",
	}
	cmd.AddCommand(newCmdJobShow(f))
	cmd.AddCommand(newCmdJobSearch(f))
	return cmd
}

func newCmdJobShow(f *Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "show <node> <id>",
		Short: "Show the status of a job",
		Long: heredoc.Doc(`
			Resolve a job by its identifier, for example org/app, and print its
			canonical status. An unknown job fails with a validation error.
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin, err := f.Plugin(cmd.Context())
			if err != nil {
				return err
			}
			job, err := plugin.FindByID(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}
}

func newCmdJobSearch(f *Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "search <node> <criteria>",
		Short: "Search jobs by name",
		Long: heredoc.Doc(`
			List up to 10 jobs whose name matches the criteria, ordered by name.
			An unreachable node prints an empty list.
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin, err := f.Plugin(cmd.Context())
			if err != nil {
				return err
			}
			jobs, err := plugin.FindAllByName(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), jobs)
		},
	}
}
