// Package producer is an HTTP client for the event ingress. It is what the
// send command uses to feed a stream of events into a running server.
package producer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
)

// ErrRejected is returned when the server refuses an event.
var ErrRejected = errors.New("event rejected by server")

// Result is the server's reply to one event.
type Result struct {
	StatusCode int
	Body       []byte
}

// Client posts events to one server.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the server at baseURL. timeout bounds each
// request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/events",
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Send posts one event. A 4xx reply is returned together with ErrRejected.
func (c *Client) Send(ctx context.Context, event []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(event))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response body: %w", err)
	}
	res := Result{StatusCode: resp.StatusCode, Body: bytes.TrimSpace(body)}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return res, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return res, ErrRejected
	default:
		return res, fmt.Errorf("unexpected status %s", resp.Status)
	}
}

// SendStream sends every JSON value read from r, in order. Rejected events
// are counted and skipped; any other failure stops the stream.
func (c *Client) SendStream(ctx context.Context, r io.Reader, fn func(Result)) (sent, rejected int, err error) {
	logger := ctxlog.FromContext(ctx)
	dec := json.NewDecoder(r)
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return sent, rejected, nil
			}
			return sent, rejected, fmt.Errorf("failed to read event %d: %w", sent+rejected+1, err)
		}

		res, err := c.Send(ctx, raw)
		switch {
		case errors.Is(err, ErrRejected):
			rejected++
			logger.Warn("Event rejected.", "event", string(raw), "status", res.StatusCode)
		case err != nil:
			return sent, rejected, err
		default:
			sent++
		}
		if fn != nil {
			fn(res)
		}
	}
}
