package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thomaskoefod/newsagg/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Write the built-in defaults to the file named by --config. Secrets such as
the NewsAPI key are left empty; set them in the file or through the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := os.Stat(configPath)
		switch {
		case err == nil && !configForce:
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("checking config file: %w", err)
		}

		if err := config.Save(config.Default(), configPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
		return nil
	},
}
