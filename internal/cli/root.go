package cli

import (
	"encoding/json"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"travisconnect/internal/config"
	"travisconnect/internal/logger"
)

// NewCmdRoot builds the travisconnect command tree
func NewCmdRoot(f *Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "travisconnect <command> [flags]",
		Short: "Travis CI connector",
		Long: heredoc.Doc(`
			Resolve Travis CI job statuses, search jobs and restart builds.
			Nodes and subscriptions are stored in the configured SQLite database.
		`),
		Example: heredoc.Doc(`
			$ travisconnect serve --config config.yaml
			$ travisconnect job show default org/app
			$ travisconnect build 12
		`),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitWithWriter(config.GetLogLevel(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return f.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", f.ConfigPath, "Path to the configuration file")

	cmd.AddCommand(newCmdServe(f))
	cmd.AddCommand(newCmdJob(f))
	cmd.AddCommand(newCmdBuild(f))
	cmd.AddCommand(newCmdNode(f))
	cmd.AddCommand(newCmdVersion(f))

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
