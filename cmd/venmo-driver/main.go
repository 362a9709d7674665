package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "venmo-driver",
		Short:         "Venmo app switch tokenization driver",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path")

	rootCmd.AddCommand(
		newServeCommand(&configFile),
		newAuthCommand(&configFile),
	)

	return rootCmd.Execute()
}
