package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/primer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
