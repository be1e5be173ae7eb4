package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/realtime"
	"go.uber.org/zap"
)

//go:generate mockgen -source=manager.go -destination=mocks/mock_socket.go -package=mock_channel

// ErrIdentityNotReady means the restaurant identity is not resolved yet. It is
// a "not ready" signal, not a failure.
var ErrIdentityNotReady = errors.New("restaurant identity not resolved")

const (
	EventJoinRestaurant = "join-restaurant"
	EventRoomJoined     = "restaurant-room-joined"

	DefaultNamespace = "/restaurant"
	closeTimeout     = 5 * time.Second
)

// Socket is the subset of realtime.Client the manager drives. Connect must
// not call back into the manager synchronously.
type Socket interface {
	Connect()
	Disconnect()
	Done() <-chan struct{}
	Emit(event string, args ...any) error
	On(event string, h realtime.Handler)
	OnConnect(fn func())
	OnConnectError(fn func(error))
	OnDisconnect(fn func(reason string))
	OnReconnectAttempt(fn func(attempt int))
	OnReconnect(fn func(attempt int))
}

type Config struct {
	BackendURL string
	Namespace  string
	Socket     realtime.Options
}

// Endpoint strips a trailing /api from the backend base and appends the namespace.
func Endpoint(backendURL, namespace string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(backendURL))
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("backend url %q must be absolute", backendURL)
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	p := strings.TrimRight(u.Path, "/")
	p = strings.TrimSuffix(p, "/api")
	u.Path = p + "/" + strings.TrimLeft(namespace, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Manager owns one real-time channel scoped to a restaurant identity.
type Manager struct {
	socket   Socket
	identity string
	logger   *zap.Logger

	mu     sync.Mutex
	state  realtime.State
	closed bool
	once   sync.Once
}

// Connect opens the restaurant channel. An empty identity yields
// ErrIdentityNotReady and nothing is opened.
func Connect(identity, token string, cfg Config, logger *zap.Logger) (*Manager, error) {
	if identity == "" {
		return nil, ErrIdentityNotReady
	}
	endpoint, err := Endpoint(cfg.BackendURL, cfg.Namespace)
	if err != nil {
		return nil, err
	}

	opts := cfg.Socket
	opts.Auth = map[string]any{"token": bearer(token)}

	client, err := realtime.NewClient(endpoint, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("create socket client: %w", err)
	}

	m, err := NewManager(client, identity, logger)
	if err != nil {
		return nil, err
	}
	m.Start()
	return m, nil
}

func bearer(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}

// NewManager binds the lifecycle handlers to socket without connecting.
func NewManager(socket Socket, identity string, logger *zap.Logger) (*Manager, error) {
	if identity == "" {
		return nil, ErrIdentityNotReady
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		socket:   socket,
		identity: identity,
		logger:   logger.With(zap.String("component", "channel"), zap.String("restaurant_id", identity)),
		state:    realtime.StateDisconnected,
	}

	socket.OnConnect(m.handleConnect)
	socket.OnReconnect(m.handleReconnect)
	socket.OnDisconnect(m.handleDisconnect)
	socket.OnConnectError(m.handleConnectError)
	socket.OnReconnectAttempt(m.handleReconnectAttempt)
	socket.On(EventRoomJoined, m.handleRoomJoined)
	return m, nil
}

func (m *Manager) Start() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.setStateLocked(realtime.StateConnecting)
	m.mu.Unlock()

	m.socket.Connect()
}

func (m *Manager) Identity() string {
	return m.identity
}

func (m *Manager) State() realtime.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Connected() bool {
	return m.State() == realtime.StateConnected
}

// On registers a handler for a server event on the channel.
func (m *Manager) On(event string, h realtime.Handler) {
	m.socket.On(event, h)
}

// Close disconnects and waits briefly for the connection loop to exit.
// Calling it again is a no-op.
func (m *Manager) Close() {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()

		done := m.socket.Done()
		m.socket.Disconnect()
		select {
		case <-done:
		case <-time.After(closeTimeout):
			m.logger.Warn("channel did not close in time")
		}

		m.mu.Lock()
		m.setStateLocked(realtime.StateDisconnected)
		m.mu.Unlock()
		m.logger.Info("channel closed")
	})
}

func (m *Manager) handleConnect() {
	m.enterConnected("connect")
}

func (m *Manager) handleReconnect(attempt int) {
	m.logger.Info("channel reconnected", zap.Int("attempt", attempt))
	m.enterConnected("reconnect")
}

// enterConnected joins the room once per transition into Connected, whichever
// lifecycle hook gets there first.
func (m *Manager) enterConnected(trigger string) {
	m.mu.Lock()
	if m.closed || m.state == realtime.StateConnected {
		m.mu.Unlock()
		return
	}
	m.setStateLocked(realtime.StateConnected)
	m.mu.Unlock()

	l := m.logger.With(zap.String("trigger", trigger))
	if err := m.socket.Emit(EventJoinRestaurant, m.identity); err != nil {
		l.Warn("join room failed", zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("join_restaurant").Inc()
		return
	}
	metrics.RoomJoinsTotal.Inc()
	l.Info("channel connected, joining restaurant room")
}

func (m *Manager) handleDisconnect(reason string) {
	m.logger.Info("channel disconnected", zap.String("reason", reason))

	// Close flips closed under mu before it disconnects, so a reconnect
	// started here is always torn down by it.
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setStateLocked(realtime.StateDisconnected)
	if reason == realtime.ReasonServerDisconnect && !m.closed {
		m.logger.Info("server closed the channel, reconnecting")
		m.socket.Connect()
	}
}

func (m *Manager) handleConnectError(err error) {
	metrics.ConnectErrorsTotal.Inc()
	m.logger.Debug("channel connect error", zap.Error(err))
}

func (m *Manager) handleReconnectAttempt(attempt int) {
	m.mu.Lock()
	if !m.closed {
		m.setStateLocked(realtime.StateReconnecting)
	}
	m.mu.Unlock()

	metrics.ReconnectAttemptsTotal.Inc()
	m.logger.Debug("channel reconnect attempt", zap.Int("attempt", attempt))
}

func (m *Manager) handleRoomJoined(args []json.RawMessage) {
	fields := []zap.Field{}
	if len(args) > 0 {
		fields = append(fields, zap.ByteString("payload", args[0]))
	}
	m.logger.Info("restaurant room joined", fields...)
}

func (m *Manager) setStateLocked(s realtime.State) {
	m.state = s
	metrics.ConnectionState.Set(float64(s))
}
