package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Teddy-225/Event-Travel/transport"
	"github.com/Teddy-225/Event-Travel/upload"
)

func newAlbumCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "album",
		Short: "Find or create the shared album and print its link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := ctx.transport(cmd)
			if err != nil {
				return err
			}
			album, err := upload.GatewayAlbumResolver{Transport: tx}.ResolveAlbum(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStatus(statusOK, album.Name, shouldColorize(out)))
			fmt.Fprintln(out, album.URL)
			return nil
		},
	}
}

func newSetupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the travel and album sheets with their headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := transport.NewCORSTransport(ctx.url(), ctx.httpClient())
			if err != nil {
				return err
			}
			res, err := tx.Send(cmd.Context(), transport.Request{Action: "setupSheets"})
			if err != nil {
				return err
			}
			if !res.Reply.Success {
				return errors.New(res.Reply.Error)
			}

			var created map[string]bool
			if err := json.Unmarshal(res.Reply.Data, &created); err != nil {
				return fmt.Errorf("decode setup reply: %w", err)
			}
			names := make([]string, 0, len(created))
			for name := range created {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				state := "existing"
				if created[name] {
					state = "created"
				}
				rows = append(rows, []string{name, state})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStatus(statusOK, res.Reply.Message, shouldColorize(out)))
			fmt.Fprintln(out, renderTable(titled("Sheet", "State"), rows))
			return nil
		},
	}
}
