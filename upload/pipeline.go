package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Teddy-225/Event-Travel/transport"
)

const (
	DefaultBatchSize  = 3
	DefaultPause      = time.Second
	DefaultClearDelay = 3 * time.Second
)

// Reporter receives progress for a run. Calls come from the goroutine
// running Run, never concurrently.
type Reporter interface {
	Rejected(fileName, reason string)
	Progress(completed, total int, label string)
	Finished(s Summary)
	Clear()
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeAllSucceeded
	OutcomePartial
	OutcomeAllFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllSucceeded:
		return "all succeeded"
	case OutcomePartial:
		return "partial"
	case OutcomeAllFailed:
		return "all failed"
	default:
		return "none"
	}
}

// Summary is the tally of one run.
type Summary struct {
	Total     int
	Accepted  int
	Succeeded int
	Failed    int
	Rejected  []RejectedError
	// Batches holds the size of each batch in the order they ran.
	Batches []int
	Results []Task
	Outcome Outcome
}

type Options struct {
	BatchSize  int
	Pause      time.Duration
	ClearDelay time.Duration
	Uploader   string
	EventName  string
}

type Pipeline struct {
	tx       transport.UploadTransport
	policy   Policy
	album    *AlbumCell
	reporter Reporter
	opts     Options
	logger   *slog.Logger
}

// NewPipeline builds a pipeline. album may be nil, in which case uploads go
// out without a folder id and the gateway picks the album.
func NewPipeline(tx transport.UploadTransport, policy Policy, album *AlbumCell, reporter Reporter, opts Options, logger *slog.Logger) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		tx:       tx,
		policy:   policy,
		album:    album,
		reporter: reporter,
		opts:     opts,
		logger:   logger.With(slog.String("component", "upload")),
	}
}

// Run filters files, uploads the accepted ones in batches and reports the
// tally. A single file's failure never stops the rest.
func (p *Pipeline) Run(ctx context.Context, files []File) Summary {
	sum := Summary{Total: len(files)}

	tasks := make([]Task, 0, len(files))
	for _, f := range files {
		mimeType, err := p.policy.Check(f)
		var rej *RejectedError
		if errors.As(err, &rej) {
			sum.Rejected = append(sum.Rejected, *rej)
			p.reporter.Rejected(rej.FileName, rej.Reason)
			continue
		}
		tasks = append(tasks, Task{File: f, MIMEType: mimeType})
	}
	sum.Accepted = len(tasks)

	if len(tasks) > 0 {
		folderID := p.folderID(ctx)
		p.runBatches(ctx, tasks, folderID, &sum)
	}

	for _, t := range tasks {
		if t.State == StateSucceeded {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}
	sum.Results = tasks
	sum.Outcome = outcome(sum)

	p.reporter.Finished(sum)
	sleep(ctx, p.opts.ClearDelay)
	p.reporter.Clear()
	return sum
}

func (p *Pipeline) runBatches(ctx context.Context, tasks []Task, folderID string, sum *Summary) {
	total := len(tasks)
	batches := (total + p.opts.BatchSize - 1) / p.opts.BatchSize
	completed := 0

	for b := 0; b < batches; b++ {
		start := b * p.opts.BatchSize
		end := min(start+p.opts.BatchSize, total)
		batch := tasks[start:end]
		label := fmt.Sprintf("Uploading batch %d of %d (%d files)", b+1, batches, len(batch))

		p.reporter.Progress(completed, total, label)

		var g errgroup.Group
		for i := range batch {
			t := &batch[i]
			t.State = StateUploading
			g.Go(func() error {
				p.uploadOne(ctx, t, folderID)
				return nil
			})
		}
		_ = g.Wait()

		completed += len(batch)
		sum.Batches = append(sum.Batches, len(batch))
		p.reporter.Progress(completed, total, label)

		if b < batches-1 {
			sleep(ctx, p.opts.Pause)
		}
	}
}

// uploadOne fills in t. Each goroutine owns exactly one task.
func (p *Pipeline) uploadOne(ctx context.Context, t *Task, folderID string) {
	defer func() {
		if r := recover(); r != nil {
			t.State = StateFailed
			t.Error = fmt.Sprintf("upload panicked: %v", r)
			p.logger.Error("upload panicked", slog.String("file", t.File.Name), slog.Any("panic", r))
		}
	}()

	encoded, err := encodeFile(t.File)
	if err != nil {
		t.State = StateFailed
		t.Error = err.Error()
		p.logger.Warn("file unreadable", slog.String("file", t.File.Name), slog.String("error", err.Error()))
		return
	}

	res := p.tx.Upload(ctx, transport.FileUpload{
		FileName:  t.File.Name,
		MIMEType:  t.MIMEType,
		Size:      t.File.Size,
		Base64:    encoded,
		FolderID:  folderID,
		Uploader:  p.opts.Uploader,
		EventName: p.opts.EventName,
	})
	if !res.Success {
		t.State = StateFailed
		t.Error = res.Error
		p.logger.Warn("upload failed", slog.String("file", t.File.Name), slog.String("error", res.Error))
		return
	}
	t.State = StateSucceeded
	t.URL = res.URL
	t.Assumed = res.Assumed
	p.logger.Info("file uploaded",
		slog.String("file", t.File.Name),
		slog.String("url", res.URL),
		slog.Bool("assumed", res.Assumed),
	)
}

func (p *Pipeline) folderID(ctx context.Context) string {
	if p.album == nil {
		return ""
	}
	album, err := p.album.Get(ctx)
	if err != nil {
		p.logger.Warn("album lookup failed, gateway will resolve it", slog.String("error", err.Error()))
		return ""
	}
	return album.ID
}

func encodeFile(f File) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("%s has no content", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func outcome(s Summary) Outcome {
	switch {
	case s.Accepted == 0:
		return OutcomeNone
	case s.Succeeded == s.Accepted:
		return OutcomeAllSucceeded
	case s.Succeeded == 0:
		return OutcomeAllFailed
	default:
		return OutcomePartial
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
