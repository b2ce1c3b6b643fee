package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Teddy-225/Event-Travel/models"
)

// Health fetches the gateway liveness payload.
func Health(ctx context.Context, client *http.Client, gatewayURL string) (models.Health, error) {
	var h models.Health
	if err := get(ctx, client, gatewayURL, nil, &h); err != nil {
		return models.Health{}, err
	}
	return h, nil
}

// TravelData reads every stored travel record through the GET query protocol.
func TravelData(ctx context.Context, client *http.Client, gatewayURL string) ([]map[string]string, error) {
	var reply Reply
	if err := get(ctx, client, gatewayURL, url.Values{"action": {"getTravelData"}}, &reply); err != nil {
		return nil, err
	}
	if !reply.Success {
		return nil, &ApplicationError{Message: replyText(reply)}
	}

	records := []map[string]string{}
	if len(reply.Data) > 0 {
		if err := json.Unmarshal(reply.Data, &records); err != nil {
			return nil, fmt.Errorf("decode travel data: %w", err)
		}
	}
	return records, nil
}

func get(ctx context.Context, client *http.Client, gatewayURL string, query url.Values, out any) error {
	if strings.TrimSpace(gatewayURL) == "" {
		return &ConfigurationError{Setting: "gateway url"}
	}
	if client == nil {
		client = http.DefaultClient
	}

	u, err := url.Parse(gatewayURL)
	if err != nil {
		return &ConfigurationError{Setting: "gateway url " + gatewayURL}
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q[k] = v
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &TransportError{Op: "get", Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Op: "get", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
		if err != nil {
			return &TransportError{Op: "get", Err: err}
		}
		return &ApplicationError{Status: resp.StatusCode, Message: replyMessage(raw, http.StatusText(resp.StatusCode))}
	}

	// Reads return every stored row, so the body is streamed without a cap.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

// replyText is the human readable part of a failed reply.
func replyText(r Reply) string {
	if r.Error != "" {
		return r.Error
	}
	if r.Message != "" {
		return r.Message
	}
	return "request failed"
}
