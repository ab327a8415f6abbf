package main

import (
	"context"
	"os"

	"travisconnect/internal/api"
	"travisconnect/internal/cli"
)

func main() {
	root := cli.NewCmdRoot(cli.NewFactory(api.Version))
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
