package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
	"go.uber.org/zap"
)

var ErrNotConnected = errors.New("realtime: not connected")

const (
	transportPolling   = "polling"
	transportWebsocket = "websocket"
)

type Options struct {
	Transports           []string
	Upgrade              bool
	Reconnection         bool
	ReconnectionDelay    time.Duration
	ReconnectionDelayMax time.Duration
	// ReconnectionAttempts of 0 retries forever.
	ReconnectionAttempts int
	RandomizationFactor  float64
	Timeout              time.Duration
	Auth                 map[string]any
	Path                 string
	Header               http.Header
}

func DefaultOptions() Options {
	return Options{
		Transports:           []string{transportPolling, transportWebsocket},
		Upgrade:              true,
		Reconnection:         true,
		ReconnectionDelay:    time.Second,
		ReconnectionDelayMax: 5 * time.Second,
		RandomizationFactor:  0.5,
		Timeout:              20 * time.Second,
		Path:                 "/socket.io/",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if len(o.Transports) == 0 {
		o.Transports = def.Transports
	}
	if o.ReconnectionDelay <= 0 {
		o.ReconnectionDelay = def.ReconnectionDelay
	}
	if o.ReconnectionDelayMax < o.ReconnectionDelay {
		o.ReconnectionDelayMax = o.ReconnectionDelay
	}
	if o.RandomizationFactor < 0 || o.RandomizationFactor > 1 {
		o.RandomizationFactor = def.RandomizationFactor
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.Path == "" {
		o.Path = def.Path
	}
	return o
}

// socketOptions maps Options onto the socket.io client. The manager never
// auto connects and is never shared with another Client.
func (o Options) socketOptions() *socket.Options {
	so := socket.DefaultOptions()
	so.SetForceNew(true)
	so.SetAutoConnect(false)
	so.SetPath(o.Path)
	so.SetUpgrade(o.Upgrade)
	so.SetReconnection(o.Reconnection)
	so.SetReconnectionDelay(float64(o.ReconnectionDelay.Milliseconds()))
	so.SetReconnectionDelayMax(float64(o.ReconnectionDelayMax.Milliseconds()))
	so.SetRandomizationFactor(o.RandomizationFactor)
	so.SetTimeout(o.Timeout)

	attempts := math.Inf(1)
	if o.ReconnectionAttempts > 0 {
		attempts = float64(o.ReconnectionAttempts)
	}
	so.SetReconnectionAttempts(attempts)

	ctors := make([]transports.TransportCtor, 0, len(o.Transports))
	for _, name := range o.Transports {
		switch name {
		case transportPolling:
			ctors = append(ctors, transports.Polling)
		case transportWebsocket:
			ctors = append(ctors, transports.WebSocket)
		}
	}
	so.SetTransports(types.NewSet(ctors...))

	if len(o.Auth) > 0 {
		so.SetAuth(o.Auth)
	}
	if len(o.Header) > 0 {
		so.SetExtraHeaders(o.Header)
	}
	return so
}

// Handler receives the JSON encoded arguments of a server event.
type Handler func(args []json.RawMessage)

// Client is a Socket.IO client bound to one namespace.
type Client struct {
	namespace string
	opts      Options
	logger    *zap.Logger

	io   *socket.Manager
	sock *socket.Socket

	state atomic.Int32

	mu   sync.Mutex
	done chan struct{}
}

// NewClient parses endpoint as scheme://host[:port]/namespace.
func NewClient(endpoint string, opts Options, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("realtime: parse endpoint: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("realtime: endpoint %q has no host", endpoint)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("realtime: unsupported scheme %q", u.Scheme)
	}
	namespace := strings.TrimRight(u.Path, "/")
	if namespace == "" {
		namespace = "/"
	}
	base := &url.URL{Scheme: u.Scheme, Host: u.Host}
	switch base.Scheme {
	case "ws":
		base.Scheme = "http"
	case "wss":
		base.Scheme = "https"
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	so := opts.socketOptions()

	c := &Client{
		namespace: namespace,
		opts:      opts,
		logger:    logger.With(zap.String("namespace", namespace)),
	}
	c.io = socket.NewManager(base.String(), so)
	c.sock = c.io.Socket(namespace, so)

	// registered before any caller hook so state is settled when hooks run
	c.sock.On("connect", func(...any) {
		c.setState(StateConnected)
		c.logger.Debug("namespace connected", zap.String("sid", c.sock.Id()))
	})
	c.sock.On("connect_error", func(args ...any) {
		if !c.sock.Active() {
			c.detach()
		}
	})
	c.sock.On("disconnect", func(args ...any) {
		if c.sock.Active() && c.opts.Reconnection {
			c.setState(StateReconnecting)
			return
		}
		c.detach()
	})
	c.io.On("reconnect_attempt", func(args ...any) {
		c.setState(StateReconnecting)
		c.logger.Debug("reconnecting", zap.Int("attempt", attemptArg(args)))
	})
	c.io.On("reconnect_failed", func(...any) {
		c.logger.Warn("reconnection attempts exhausted", zap.Int("attempts", c.opts.ReconnectionAttempts))
		c.detach()
	})
	return c, nil
}

func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

func (c *Client) On(event string, h Handler) {
	c.sock.On(types.EventName(event), func(args ...any) {
		raw, ack, err := encodeArgs(args)
		if err != nil {
			c.logger.Debug("dropping undecodable event", zap.String("event", event), zap.Error(err))
			return
		}
		h(raw)
		if ack != nil {
			ack([]any{}, nil)
		}
	})
}

func (c *Client) OnConnect(fn func()) {
	c.sock.On("connect", func(...any) { fn() })
}

func (c *Client) OnConnectError(fn func(error)) {
	c.sock.On("connect_error", func(args ...any) { fn(errorArg(args)) })
}

func (c *Client) OnDisconnect(fn func(reason string)) {
	c.sock.On("disconnect", func(args ...any) { fn(reasonArg(args)) })
}

func (c *Client) OnReconnectAttempt(fn func(attempt int)) {
	c.io.On("reconnect_attempt", func(args ...any) { fn(attemptArg(args)) })
}

func (c *Client) OnReconnect(fn func(attempt int)) {
	c.io.On("reconnect", func(args ...any) { fn(attemptArg(args)) })
}

// Connect opens the namespace. It is a no-op while the client is already
// connecting, connected or reconnecting.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.setState(StateConnecting)
	c.sock.Connect()
}

// Disconnect closes the namespace and stops reconnecting. Safe to call any
// number of times.
func (c *Client) Disconnect() {
	c.mu.Lock()
	running := c.done != nil
	c.mu.Unlock()
	if !running {
		return
	}
	c.sock.Disconnect()
	c.detach()
}

// Done is closed once the client stops connecting or reconnecting.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

// Emit sends an event to the namespace.
func (c *Client) Emit(event string, args ...any) error {
	if c.State() != StateConnected {
		return ErrNotConnected
	}
	if err := c.sock.Emit(event, args...); err != nil {
		return fmt.Errorf("realtime: emit %s: %w", event, err)
	}
	return nil
}

// detach releases the client so that callbacks may call Connect again.
func (c *Client) detach() {
	c.mu.Lock()
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.mu.Unlock()
	c.setState(StateDisconnected)
}

// encodeArgs re-encodes decoded event arguments and splits off the server's
// ack callback, if the event asked for one.
func encodeArgs(args []any) ([]json.RawMessage, func([]any, error), error) {
	var ack func([]any, error)
	raw := make([]json.RawMessage, 0, len(args))
	for _, arg := range args {
		if fn, ok := arg.(func([]any, error)); ok {
			ack = fn
			continue
		}
		b, err := json.Marshal(arg)
		if err != nil {
			return nil, nil, err
		}
		raw = append(raw, b)
	}
	return raw, ack, nil
}

func errorArg(args []any) error {
	if len(args) == 0 {
		return errors.New("realtime: connect error")
	}
	if err, ok := args[0].(error); ok {
		return err
	}
	return fmt.Errorf("realtime: connect error: %v", args[0])
}

func reasonArg(args []any) string {
	if len(args) > 0 {
		if reason, ok := args[0].(string); ok {
			return reason
		}
	}
	return ""
}

func attemptArg(args []any) int {
	if len(args) == 0 {
		return 0
	}
	switch v := args[0].(type) {
	case uint64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
