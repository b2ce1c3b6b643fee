package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Teddy-225/Event-Travel/transport"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the gateway is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := transport.Health(cmd.Context(), ctx.httpClient(), ctx.url())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), h)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			kind := statusOK
			if h.Status != "success" {
				kind = statusWarn
			}
			fmt.Fprintln(out, renderStatus(kind, h.Message, colorize))
			if h.Event != nil {
				rows := [][]string{
					{"Event", h.Event.Name},
					{"Date", orDash(h.Event.Date)},
					{"Venue", orDash(h.Event.Venue)},
					{"Hosts", orDash(h.Event.AdminEmail)},
				}
				if h.Uploads != nil {
					rows = append(rows, []string{"Upload types", orDash(strings.Join(h.Uploads.AllowedTypes, ", "))})
					if h.Uploads.MaxBytes > 0 {
						rows = append(rows, []string{"Upload limit", fmt.Sprintf("%d bytes", h.Uploads.MaxBytes)})
					}
				}
				fmt.Fprintln(out, renderTable([]column{{title: "Field"}, {title: "Value", wrap: 60}}, rows))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw health payload")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
