package cleanup

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const connectTimeout = 15 * time.Second

// SocketIOOptions configures DialSocketIO.
type SocketIOOptions struct {
	Namespace          string
	InsecureSkipVerify bool
}

// SocketIOSource is a Source backed by a socket.io connection.
type SocketIOSource struct {
	io *socket.Socket
}

var _ Source = (*SocketIOSource)(nil)

// DialSocketIO connects to the socket.io server at rawURL and waits for the
// connection to be established.
func DialSocketIO(ctx context.Context, rawURL string, opts SocketIOOptions) (*SocketIOSource, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	ioOpts := socket.DefaultOptions()
	ioOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		ioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	ioOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, ioOpts)
	io := manager.Socket(opts.Namespace, ioOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to event stream.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Connecting to event stream...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIOSource{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}
}

// On implements Source.
func (s *SocketIOSource) On(event string, fn func(args ...any)) {
	s.io.On(types.EventName(event), func(args ...any) {
		fn(args...)
	})
}

// Close implements Source.
func (s *SocketIOSource) Close() error {
	s.io.Disconnect()
	return nil
}
