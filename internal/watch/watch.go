// Package watch is a socket.io observer client. It connects to a running
// server and hands every mesh event it receives to a callback.
package watch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/meshviz/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	defaultPath    = "/socket.io/"
	eventName      = "mesh_event"
	connectTimeout = 15 * time.Second
)

// ErrDisconnected is returned by Watch when the server closes the
// connection.
var ErrDisconnected = errors.New("disconnected by server")

// Options configures a watch session.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Event is one received mesh event.
type Event struct {
	Type    string
	Payload json.RawMessage
}

// Watch connects to opts.URL and calls fn for every event until ctx is done
// or the server disconnects. fn is called from a single goroutine.
func Watch(ctx context.Context, opts Options, fn func(Event)) error {
	logger := ctxlog.FromContext(ctx).With("url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("URL %q must include a scheme and host", opts.URL)
	}

	clientOpts := socket.DefaultOptions()
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = defaultPath
	}
	clientOpts.SetPath(path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		clientOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	clientOpts.SetTransports(types.NewSet(transports.WebSocket))
	clientOpts.SetReconnection(false)

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, clientOpts)
	io := manager.Socket(namespace, clientOpts)
	defer io.Disconnect()

	connected := make(chan error, 1)
	disconnected := make(chan struct{})
	received := make(chan Event, 256)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected.", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})
	io.Once(types.EventName("disconnect"), func(reason ...any) {
		logger.Debug("Disconnected.", "reason", reason)
		close(disconnected)
	})
	io.On(types.EventName(eventName), func(data ...any) {
		ev, err := decode(data)
		if err != nil {
			logger.Warn("Ignoring malformed event.", "error", err)
			return
		}
		select {
		case received <- ev:
		case <-disconnected:
		}
	})

	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(connectTimeout):
		return fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}

	for {
		select {
		case ev := <-received:
			fn(ev)
		case <-disconnected:
			return ErrDisconnected
		case <-ctx.Done():
			return nil
		}
	}
}

// decode accepts the payload either as the JSON string the server emits or
// as an already decoded object.
func decode(data []any) (Event, error) {
	if len(data) == 0 {
		return Event{}, errors.New("event without payload")
	}

	var raw []byte
	switch v := data[0].(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Event{}, err
		}
		raw = b
	}

	var head struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Event{}, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if head.EventType == "" {
		return Event{}, errors.New("payload has no event_type")
	}
	return Event{Type: head.EventType, Payload: json.RawMessage(raw)}, nil
}
