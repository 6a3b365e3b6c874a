package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vk/dyninputs/internal/ctxlog"
	"resty.dev/v3"
)

const (
	// EventName is the event the backend emits to request a cleanup.
	EventName = "memory_cleanup"
	// RequestType is the only payload type the relay acts upon.
	RequestType = "cleanup_request"
	// DefaultFreePath is the backend endpoint that releases memory.
	DefaultFreePath = "/free"

	defaultTimeout = 30 * time.Second
)

// ErrRequestFailed is returned when the free endpoint answers with a non-2xx status.
var ErrRequestFailed = errors.New("memory cleanup request failed")

// Request is the payload carried by a memory_cleanup event.
type Request struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Relay forwards cleanup requests to the free endpoint. It is safe for
// concurrent use.
type Relay struct {
	client  *resty.Client
	freeURL string
}

// NewRelay creates a Relay posting to freeURL.
func NewRelay(freeURL string) *Relay {
	client := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")
	return &Relay{client: client, freeURL: freeURL}
}

// Close releases the underlying HTTP client.
func (r *Relay) Close() error {
	return r.client.Close()
}

// Handle processes one event payload. Payloads of another type are ignored
// and return nil.
func (r *Relay) Handle(ctx context.Context, payload any) error {
	logger := ctxlog.FromContext(ctx).With("event", EventName)

	req, err := decodeRequest(payload)
	if err != nil {
		logger.Debug("Ignoring undecodable event payload.", "error", err)
		return nil
	}
	if req.Type != RequestType {
		logger.Debug("Ignoring event of another type.", "type", req.Type)
		return nil
	}
	logger.Info("Memory cleanup request received.")

	body := req.Data
	if body == nil {
		body = map[string]any{}
	}
	res, err := r.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(r.freeURL)
	if err != nil {
		logger.Error("Error sending memory cleanup request.", "url", r.freeURL, "error", err)
		return fmt.Errorf("failed to post cleanup request to '%s': %w", r.freeURL, err)
	}
	if !res.IsSuccess() {
		logger.Error("Memory cleanup request failed.", "url", r.freeURL, "status", res.StatusCode())
		return fmt.Errorf("%w: %s answered %d", ErrRequestFailed, r.freeURL, res.StatusCode())
	}

	logger.Info("Memory cleanup request sent.", "status", res.StatusCode())
	return nil
}

// decodeRequest accepts the shapes an event payload arrives in: an already
// decoded JSON object, or raw JSON bytes.
func decodeRequest(payload any) (*Request, error) {
	var raw []byte
	switch p := payload.(type) {
	case *Request:
		return p, nil
	case Request:
		return &p, nil
	case []byte:
		raw = p
	case string:
		raw = []byte(p)
	case json.RawMessage:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode payload: %w", err)
		}
		raw = b
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return &req, nil
}
