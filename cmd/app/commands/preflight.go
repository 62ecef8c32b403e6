package commands

import (
	"github.com/spf13/cobra"
	"github.com/yingtu35/doombot/internal/preflight"
)

func newPreflightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check the runtime, disk space, network and environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := preflight.Run(cmd.Context(), cfg.Preflight, log); err != nil {
				return err
			}
			log.Info("preflight checks passed")
			return nil
		},
	}
}
