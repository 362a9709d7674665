package main

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/venmo/adapters/apiclient"
	"github.com/layer-3/venmo/config"
	"github.com/spf13/cobra"
)

func newAuthCommand(configFile *string) *cobra.Command {
	var fetch bool

	cmd := &cobra.Command{
		Use:   "auth [authorization]",
		Short: "Inspect a tokenization key or client token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			} else {
				cfg, err := config.Load(*configFile)
				if err != nil {
					return err
				}
				raw = cfg.Authorization
			}

			auth, err := apiclient.ParseAuthorization(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode:        %s\n", auth.Mode)
			fmt.Fprintf(out, "merchant:    %s\n", auth.MerchantID)
			fmt.Fprintf(out, "gateway:     %s\n", auth.GatewayURL)
			fmt.Fprintf(out, "card detail: %t\n", auth.Mode.SupportsCardDetails())

			if !fetch {
				return nil
			}

			client, err := apiclient.New(raw)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			venmoCfg, err := client.FetchConfiguration(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "venmo:       %t\n", venmoCfg.VenmoEnabled())
			fmt.Fprintf(out, "environment: %s\n", venmoCfg.VenmoEnvironment)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fetch, "fetch", false, "Fetch the remote configuration")

	return cmd
}
