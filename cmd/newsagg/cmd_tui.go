package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/thomaskoefod/newsagg/internal/raindrop"
	"github.com/thomaskoefod/newsagg/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Read headlines and the reading list in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		m := tui.New(tui.Options{
			News:       a.news,
			Library:    a.lib,
			Translator: a.translator,
			Exporter:   raindrop.NewClient(a.cfg.Raindrop.BaseURL, a.cfg.Raindrop.APIToken),
			Catalog:    a.catalog,
			User:       a.cfg.UI.User,
			Lang:       a.cfg.Server.DefaultLanguage,
			Target:     a.cfg.Translation.Target,
			Logger:     logger,
		})

		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}
