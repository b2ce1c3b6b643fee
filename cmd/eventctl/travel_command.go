package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Teddy-225/Event-Travel/models"
	"github.com/Teddy-225/Event-Travel/transport"
)

func newTravelCommand(ctx *commandContext) *cobra.Command {
	travel := &cobra.Command{
		Use:   "travel",
		Short: "Inspect stored travel details",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List every submitted travel record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := transport.TravelData(cmd.Context(), ctx.httpClient(), ctx.url())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No travel details yet.")
				return nil
			}
			fmt.Fprintln(out, renderTable(travelColumns, travelRows(records)))
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")

	travel.AddCommand(list)
	return travel
}

var travelColumns = []column{
	{title: "Guest"},
	{title: "Guests", numeric: true},
	{title: "Arrival"},
	{title: "From", wrap: 24},
	{title: "Transport"},
	{title: "Departure"},
	{title: "Contact"},
	{title: "Email"},
}

func travelRows(records []map[string]string) [][]string {
	key := models.HeaderKey
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		departure := r[key("Departure Date")]
		if t := r[key("Departure Time")]; t != "" && t != models.NotSpecified {
			departure += " " + t
		}
		rows = append(rows, []string{
			r[key("Guest Name")],
			r[key("Number of Guests")],
			r[key("Arrival Date")] + " " + r[key("Arrival Time")],
			r[key("Arrival Location")],
			r[key("Transport Mode")],
			departure,
			r[key("Contact Number")],
			r[key("Email Address")],
		})
	}
	return rows
}
