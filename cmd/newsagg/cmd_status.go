package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thomaskoefod/newsagg/internal/config"
	"github.com/thomaskoefod/newsagg/internal/i18n"
	"github.com/thomaskoefod/newsagg/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the availability of upstream APIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		// A missing API key is reported by the probe rather than refused here.
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		catalog := i18n.New(cfg.I18n.Labels)
		label := func(msg string) string { return catalog.T(cfg.Server.DefaultLanguage, msg) }

		results := status.Run(cmd.Context(), status.DefaultProbes(cfg, nil), status.DefaultTimeout)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.Text(label))
		}
		return tw.Flush()
	},
}
