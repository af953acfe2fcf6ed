package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "tycoon",
		Short: "Tycoon simulation server",
		Long: `Runs the per-map economy and defense simulation: a tick-driven production
resolver, crowdfunding feed, tower-defense waves and an isolated pathfinding worker.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/conf.yml searched upward)")

	rootCmd.AddCommand(newServeCmd(), newSimulateCmd(), newTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
