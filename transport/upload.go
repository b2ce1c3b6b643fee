package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultFormPostTimeout is how long FormPostTransport waits for a
// completion signal before assuming the upload went through.
const DefaultFormPostTimeout = 30 * time.Second

// FileUpload is one file ready to send. Base64 holds the encoded bytes.
type FileUpload struct {
	FileName  string
	MIMEType  string
	Size      int64
	Base64    string
	FolderID  string
	Uploader  string
	EventName string
}

func (f FileUpload) fields() map[string]string {
	return map[string]string{
		"action":    "uploadFile",
		"fileName":  f.FileName,
		"mimeType":  f.MIMEType,
		"fileSize":  strconv.FormatInt(f.Size, 10),
		"fileData":  f.Base64,
		"folderId":  f.FolderID,
		"uploader":  f.Uploader,
		"eventName": f.EventName,
	}
}

// UploadResult is the per-file outcome every upload transport reports.
// Assumed marks a success inferred from a timeout rather than observed.
type UploadResult struct {
	Success  bool   `json:"success"`
	URL      string `json:"url,omitempty"`
	FileName string `json:"fileName"`
	Error    string `json:"error,omitempty"`
	Assumed  bool   `json:"assumed,omitempty"`
}

type UploadTransport interface {
	Upload(ctx context.Context, f FileUpload) UploadResult
}

// MultipartTransport posts multipart/form-data and reads the envelope.
type MultipartTransport struct {
	url    string
	client *http.Client
}

func NewMultipartTransport(url string, client *http.Client) (*MultipartTransport, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &ConfigurationError{Setting: "gateway url"}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MultipartTransport{url: url, client: client}, nil
}

func (t *MultipartTransport) Upload(ctx context.Context, f FileUpload) UploadResult {
	fail := func(err error) UploadResult {
		return UploadResult{FileName: f.FileName, Error: err.Error()}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range f.fields() {
		if err := w.WriteField(k, v); err != nil {
			return fail(fmt.Errorf("build form: %w", err))
		}
	}
	if err := w.Close(); err != nil {
		return fail(fmt.Errorf("build form: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, &buf)
	if err != nil {
		return fail(&TransportError{Op: "uploadFile", Err: err})
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return fail(&TransportError{Op: "uploadFile", Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return fail(&TransportError{Op: "uploadFile", Err: err})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(&ApplicationError{Status: resp.StatusCode, Message: replyMessage(raw, "upload failed")})
	}

	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return fail(errors.New("unreadable gateway response"))
	}
	if !reply.Success {
		return fail(errors.New(replyText(reply)))
	}

	var data struct {
		URL      string `json:"url"`
		FileName string `json:"fileName"`
	}
	_ = json.Unmarshal(reply.Data, &data)
	name := data.FileName
	if name == "" {
		name = f.FileName
	}
	return UploadResult{Success: true, URL: data.URL, FileName: name}
}

// FormPostTransport submits a URL-encoded form without reading the reply.
// The response status is the completion signal; if none arrives within
// Timeout the request is abandoned and the upload is assumed to have worked.
type FormPostTransport struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewFormPostTransport(url string, client *http.Client, timeout time.Duration) (*FormPostTransport, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &ConfigurationError{Setting: "gateway url"}
	}
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultFormPostTimeout
	}
	return &FormPostTransport{url: url, client: client, timeout: timeout}, nil
}

func (t *FormPostTransport) Upload(ctx context.Context, f FileUpload) UploadResult {
	values := url.Values{}
	for k, v := range f.fields() {
		values.Set(k, v)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, t.url, strings.NewReader(values.Encode()))
	if err != nil {
		return UploadResult{FileName: f.FileName, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	type signal struct {
		status int
		err    error
	}
	done := make(chan signal, 1)
	go func() {
		resp, err := t.client.Do(req)
		if err != nil {
			done <- signal{err: err}
			return
		}
		resp.Body.Close()
		done <- signal{status: resp.StatusCode}
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case s := <-done:
		switch {
		case s.err != nil:
			return UploadResult{FileName: f.FileName, Error: (&TransportError{Op: "uploadFile", Err: s.err}).Error()}
		case s.status < 200 || s.status > 299:
			return UploadResult{FileName: f.FileName, Error: fmt.Sprintf("upload rejected with status %d", s.status)}
		default:
			return UploadResult{Success: true, FileName: f.FileName}
		}
	case <-timer.C:
		return UploadResult{Success: true, FileName: f.FileName, Assumed: true}
	}
}
