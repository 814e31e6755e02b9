package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcpp-dev/mcpp-core/internal/config"
)

func newValidateConfigCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Load and validate a mcppd configuration file without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("config OK: listen_addr=%s auth_mode=%s tools=%d usage_policies=%d target_categories=%d trusted_targets=%d\n",
				loaded.ListenAddr, loaded.AuthMode, len(loaded.Tools),
				len(loaded.Policy.DefaultDataUsagePolicy), len(loaded.Policy.TargetCategories), len(loaded.Policy.TrustedTargets))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "mcppd.yaml", "path to the configuration file")
	return cmd
}
