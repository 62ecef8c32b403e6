package commands

import (
	"github.com/spf13/cobra"
	"github.com/yingtu35/doombot/internal/doombot"
)

type runOptions struct {
	urls      []string
	noBrowser bool
	noGrammar bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the website review once",
		Long: `Run scans every configured page once, prints a summary table and
delivers the report to every configured destination.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.apply(); err != nil {
				return err
			}
			_, err := doombot.New(cmd.Context(), cfg, log).Run(cmd.Context())
			return err
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.urls, "url", nil, "page to review, repeatable (overrides the configured list)")
	cmd.Flags().BoolVar(&o.noBrowser, "no-browser", false, "skip the Playwright checks")
	cmd.Flags().BoolVar(&o.noGrammar, "no-grammar", false, "skip the LanguageTool checks")
}

// apply folds the command-line overrides into the loaded configuration.
func (o *runOptions) apply() error {
	if len(o.urls) > 0 {
		cfg.URLs = o.urls
	}
	if o.noBrowser {
		cfg.Browser.Enabled = false
	}
	if o.noGrammar {
		cfg.Grammar.Enabled = false
	}
	return cfg.Validate()
}
