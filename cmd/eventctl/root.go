package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "eventctl",
		Short:         "Event gateway client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.gatewayURL, "gateway", envOr("EVENT_GATEWAY_URL", "http://localhost:8080/api/exec"), "Gateway endpoint URL")
	flags.DurationVar(&ctx.timeout, "timeout", defaultTimeout, "HTTP timeout per request")
	flags.BoolVar(&ctx.verbose, "verbose", false, "Log transport details to stderr")

	rootCmd.AddCommand(newHealthCommand(ctx))
	rootCmd.AddCommand(newRSVPCommand(ctx))
	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newTravelCommand(ctx))
	rootCmd.AddCommand(newAlbumCommand(ctx))
	rootCmd.AddCommand(newSetupCommand(ctx))

	return rootCmd
}
