// Command mcppd runs the MCPP core as a standalone JSON-RPC server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mcppd",
		Short: "Model Context Privacy Protocol core server",
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newValidateConfigCommand())
	return root
}
