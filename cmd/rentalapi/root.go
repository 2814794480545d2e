package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the rental API CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rentalapi",
		Short: "Car rental API",
		Long: `rentalapi serves the car rental HTTP API (authentication, car listing
and rentals) backed by MongoDB and Redis. Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
