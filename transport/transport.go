// Package transport carries client requests to the gateway.
//
// CORSTransport reads the JSON envelope back. OpaqueTransport fires the same
// request without reading the response, so its outcome is unknowable.
// FallbackTransport combines them: readable first, opaque only after a
// network-level failure.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxReplyBytes = 1 << 20

// Request is an action call. Fields are merged next to "action" in the body.
type Request struct {
	Action string
	Fields map[string]any
}

func (r Request) body() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		m[k] = v
	}
	m["action"] = r.Action
	return json.Marshal(m)
}

// Reply is the gateway envelope as seen by clients.
type Reply struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Result of a Send. When Readable is false the request went out but nothing
// is known about how it was handled.
type Result struct {
	Readable bool
	Reply    Reply
}

// OK treats unreadable results as provisionally successful.
func (r Result) OK() bool {
	return !r.Readable || r.Reply.Success
}

type Transport interface {
	Send(ctx context.Context, req Request) (Result, error)
}

// CORSTransport posts JSON and decodes the envelope.
type CORSTransport struct {
	url    string
	client *http.Client
}

func NewCORSTransport(url string, client *http.Client) (*CORSTransport, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &ConfigurationError{Setting: "gateway url"}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &CORSTransport{url: url, client: client}, nil
}

func (t *CORSTransport) Send(ctx context.Context, req Request) (Result, error) {
	body, err := req.body()
	if err != nil {
		return Result{}, fmt.Errorf("encode %s request: %w", req.Action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, &TransportError{Op: req.Action, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Result{}, &TransportError{Op: req.Action, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Result{}, &TransportError{Op: req.Action, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &ApplicationError{Status: resp.StatusCode, Message: replyMessage(raw, "Failed to save your data")}
	}

	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return Result{}, &ApplicationError{Status: resp.StatusCode, Message: "unreadable gateway response"}
	}
	return Result{Readable: true, Reply: reply}, nil
}

// replyMessage pulls message or error out of a JSON body, else returns def.
func replyMessage(raw []byte, def string) string {
	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return def
	}
	if reply.Message != "" {
		return reply.Message
	}
	if reply.Error != "" {
		return reply.Error
	}
	return def
}

// OpaqueTransport sends the request as text/plain and never reads the reply.
type OpaqueTransport struct {
	url    string
	client *http.Client
}

func NewOpaqueTransport(url string, client *http.Client) (*OpaqueTransport, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &ConfigurationError{Setting: "gateway url"}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpaqueTransport{url: url, client: client}, nil
}

func (t *OpaqueTransport) Send(ctx context.Context, req Request) (Result, error) {
	body, err := req.body()
	if err != nil {
		return Result{}, fmt.Errorf("encode %s request: %w", req.Action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, &TransportError{Op: req.Action, Err: err}
	}
	httpReq.Header.Set("Content-Type", "text/plain;charset=UTF-8")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Result{}, &TransportError{Op: req.Action, Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return Result{Readable: false}, nil
}

// FallbackTransport retries once through Fallback when Primary fails at the
// network level. Application errors are returned as they are.
type FallbackTransport struct {
	Primary  Transport
	Fallback Transport
	Logger   *slog.Logger
}

// New builds the usual readable-then-opaque transport for url.
func New(url string, client *http.Client, logger *slog.Logger) (*FallbackTransport, error) {
	primary, err := NewCORSTransport(url, client)
	if err != nil {
		return nil, err
	}
	fallback, err := NewOpaqueTransport(url, client)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackTransport{
		Primary:  primary,
		Fallback: fallback,
		Logger:   logger.With(slog.String("component", "transport")),
	}, nil
}

func (t *FallbackTransport) Send(ctx context.Context, req Request) (Result, error) {
	res, err := t.Primary.Send(ctx, req)
	var terr *TransportError
	if err == nil || !errors.As(err, &terr) {
		return res, err
	}

	if t.Logger != nil {
		t.Logger.Warn("readable request failed, retrying without reading the response",
			slog.String("action", req.Action),
			slog.String("error", err.Error()),
		)
	}
	return t.Fallback.Send(ctx, req)
}
