package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Teddy-225/Event-Travel/config"
	"github.com/Teddy-225/Event-Travel/transport"
	"github.com/Teddy-225/Event-Travel/upload"
)

const (
	transportMultipart = "multipart"
	transportFormPost  = "formpost"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var (
		mode        string
		uploader    string
		eventName   string
		maxBytes    int64
		pause       time.Duration
		formTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload photos and videos to the shared album",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				tx  transport.UploadTransport
				err error
			)
			switch mode {
			case transportMultipart:
				tx, err = transport.NewMultipartTransport(ctx.url(), ctx.httpClient())
			case transportFormPost:
				tx, err = transport.NewFormPostTransport(ctx.url(), ctx.httpClient(), formTimeout)
			default:
				return fmt.Errorf("unknown --transport %q (want %s or %s)", mode, transportMultipart, transportFormPost)
			}
			if err != nil {
				return err
			}

			actions, err := ctx.transport(cmd)
			if err != nil {
				return err
			}
			album := upload.NewAlbumCell(upload.GatewayAlbumResolver{Transport: actions})

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			files := make([]upload.File, 0, len(args))
			for _, path := range args {
				f, err := upload.FileFromPath(path)
				if err != nil {
					fmt.Fprintln(errOut, renderStatus(statusError, err.Error(), shouldColorize(errOut)))
					continue
				}
				files = append(files, f)
			}

			var reporter upload.Reporter = newLineReporter(errOut, false)
			clearDelay := time.Duration(0)
			if shouldColorize(errOut) {
				reporter = newBarReporter(errOut)
				clearDelay = upload.DefaultClearDelay
			}

			policy := gatewayPolicy(cmd, ctx, upload.Policy{AllowedTypes: config.DefaultAllowedMIMETypes, MaxBytes: maxBytes})
			p := upload.NewPipeline(tx, policy, album, reporter, upload.Options{
				Pause:      pause,
				ClearDelay: clearDelay,
				Uploader:   uploader,
				EventName:  eventName,
			}, ctx.logger(cmd))

			sum := p.Run(cmd.Context(), files)
			if len(sum.Results) > 0 {
				fmt.Fprintln(out, renderTable(resultColumns, resultRows(sum.Results)))
			}
			fmt.Fprintln(out, summaryLine(sum, shouldColorize(out)))

			if sum.Outcome != upload.OutcomeAllSucceeded {
				return errReported
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&mode, "transport", transportMultipart, "Upload transport: multipart or formpost")
	f.StringVar(&uploader, "uploader", "Guest", "Name recorded next to each file")
	f.StringVar(&eventName, "event", "", "Event name recorded next to each file")
	f.Int64Var(&maxBytes, "max-bytes", 50*1024*1024, "Largest accepted file in bytes (0 for no limit)")
	f.DurationVar(&pause, "pause", upload.DefaultPause, "Pause between batches")
	f.DurationVar(&formTimeout, "formpost-timeout", transport.DefaultFormPostTimeout, "How long formpost waits before assuming success")
	return cmd
}

// gatewayPolicy narrows the local upload policy to what the gateway reports
// it accepts. An explicit --max-bytes wins over the gateway's limit.
func gatewayPolicy(cmd *cobra.Command, ctx *commandContext, fallback upload.Policy) upload.Policy {
	h, err := transport.Health(cmd.Context(), ctx.httpClient(), ctx.url())
	if err != nil {
		ctx.logger(cmd).Warn("gateway upload policy unavailable, using defaults", slog.Any("error", err))
		return fallback
	}
	if h.Uploads == nil {
		return fallback
	}
	policy := fallback
	if len(h.Uploads.AllowedTypes) > 0 {
		policy.AllowedTypes = h.Uploads.AllowedTypes
	}
	if h.Uploads.MaxBytes > 0 && !cmd.Flags().Changed("max-bytes") {
		policy.MaxBytes = h.Uploads.MaxBytes
	}
	return policy
}

var resultColumns = []column{
	{title: "File"},
	{title: "Size", numeric: true},
	{title: "Status"},
	{title: "Link / Error", wrap: 60},
}

func resultRows(tasks []upload.Task) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		status := t.State.String()
		detail := t.URL
		if t.State == upload.StateFailed {
			detail = t.Error
		} else if t.Assumed {
			status += " (assumed)"
		}
		rows = append(rows, []string{t.File.Name, strconv.FormatInt(t.File.Size, 10), status, detail})
	}
	return rows
}

func summaryLine(s upload.Summary, colorize bool) string {
	msg := fmt.Sprintf("%d of %d files uploaded", s.Succeeded, s.Accepted)
	if len(s.Rejected) > 0 {
		msg += fmt.Sprintf(", %d rejected", len(s.Rejected))
	}
	switch s.Outcome {
	case upload.OutcomeAllSucceeded:
		return renderStatus(statusOK, "All files uploaded successfully! "+msg, colorize)
	case upload.OutcomePartial:
		return renderStatus(statusWarn, "Some uploads failed. "+msg, colorize)
	case upload.OutcomeAllFailed:
		return renderStatus(statusError, "Upload failed. "+msg, colorize)
	default:
		return renderStatus(statusWarn, "No files to upload.", colorize)
	}
}

// lineReporter prints one line per event. Used when stderr is not a terminal.
type lineReporter struct {
	w        io.Writer
	colorize bool
}

func newLineReporter(w io.Writer, colorize bool) *lineReporter {
	return &lineReporter{w: w, colorize: colorize}
}

func (l *lineReporter) Rejected(name, reason string) {
	fmt.Fprintln(l.w, renderStatus(statusWarn, name+": "+reason, l.colorize))
}

func (l *lineReporter) Progress(completed, total int, label string) {
	fmt.Fprintf(l.w, "%s (%d/%d)\n", label, completed, total)
}

func (l *lineReporter) Finished(upload.Summary) {}

func (l *lineReporter) Clear() {}

// barReporter drives a terminal progress bar.
type barReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newBarReporter(w io.Writer) *barReporter {
	return &barReporter{w: w}
}

func (b *barReporter) Rejected(name, reason string) {
	fmt.Fprintln(b.w, renderStatus(statusWarn, name+": "+reason, true))
}

func (b *barReporter) Progress(completed, total int, label string) {
	if b.bar == nil {
		b.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionEnableColorCodes(true),
		)
	}
	b.bar.Describe(label)
	_ = b.bar.Set(completed)
}

func (b *barReporter) Finished(upload.Summary) {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

func (b *barReporter) Clear() {
	if b.bar != nil {
		_ = b.bar.Clear()
		fmt.Fprintln(b.w)
		b.bar = nil
	}
}
