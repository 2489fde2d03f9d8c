package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "commerce-api",
		Short: "commerce-api serves the storefront authentication and address endpoints",
		Long: `commerce-api is the HTTP backend for user signup, login and per-user addresses.

Configuration is read from the environment (JWT_SECRET, STORE_DRIVER,
DATABASE_URL, REDIS_ADDR, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newHashPasswordCmd())
	return root
}
