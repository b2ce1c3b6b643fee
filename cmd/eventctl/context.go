package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Teddy-225/Event-Travel/transport"
)

const defaultTimeout = 60 * time.Second

type commandContext struct {
	gatewayURL string
	timeout    time.Duration
	verbose    bool
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) url() string {
	return strings.TrimSpace(c.gatewayURL)
}

func (c *commandContext) httpClient() *http.Client {
	return &http.Client{Timeout: c.timeout}
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	var w io.Writer = io.Discard
	if c.verbose {
		w = cmd.ErrOrStderr()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (c *commandContext) transport(cmd *cobra.Command) (*transport.FallbackTransport, error) {
	return transport.New(c.url(), c.httpClient(), c.logger(cmd))
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
