package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/yingtu35/doombot/internal/doombot"
	"github.com/yingtu35/doombot/internal/logger"
	"github.com/yingtu35/doombot/internal/scheduler"
)

func newScheduleCmd() *cobra.Command {
	opts := &runOptions{}
	var spec string
	var now bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Repeat the website review on a cron schedule",
		Long: `Schedule keeps running until interrupted and reviews the configured pages
whenever the cron expression fires (default: Mondays at 09:00).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.apply(); err != nil {
				return err
			}
			if spec == "" {
				spec = cfg.Schedule.Cron
			}

			ctx := cmd.Context()
			review := func(ctx context.Context) error {
				_, err := doombot.New(ctx, cfg, log).Run(ctx)
				return err
			}

			s, err := scheduler.New(spec, review, log)
			if err != nil {
				return err
			}
			if now {
				if err := review(ctx); err != nil {
					log.Error("initial review failed", logger.Error(err))
				}
			}
			return s.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression (overrides schedule.cron)")
	cmd.Flags().BoolVar(&now, "now", false, "run one review immediately before waiting for the schedule")
	opts.addFlags(cmd)
	return cmd
}
