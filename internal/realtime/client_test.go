package realtime

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/engine.io-client-go/transports"
	socket_server "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const testToken = "Bearer t0k"

type testServer struct {
	io        *socket_server.Server
	url       string
	connected chan *socket_server.Socket
}

// newTestServer serves the /restaurant namespace, accepting only testToken
// and answering join-restaurant with restaurant-room-joined.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	io := socket_server.NewServer(nil, nil)
	s := &testServer{io: io, connected: make(chan *socket_server.Socket, 8)}

	nsp := io.Of("/restaurant", nil)
	nsp.Use(func(client *socket_server.Socket, next func(*socket_server.ExtendedError)) {
		auth, _ := client.Handshake().Auth.(map[string]any)
		if auth["token"] != testToken {
			next(socket_server.NewExtendedError("unauthorized", nil))
			return
		}
		next(nil)
	})
	nsp.On("connection", func(clients ...any) {
		client := clients[0].(*socket_server.Socket)
		client.On("join-restaurant", func(args ...any) {
			if len(args) > 0 {
				_ = client.Emit("restaurant-room-joined", map[string]any{"restaurantId": args[0]})
			}
		})
		s.connected <- client
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", io.ServeHandler(nil))
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		io.Close(nil)
		ts.CloseClientConnections()
		ts.Close()
	})
	s.url = ts.URL
	return s
}

func (s *testServer) endpoint() string {
	return s.url + "/restaurant"
}

func (s *testServer) nextClient(t *testing.T) *socket_server.Socket {
	t.Helper()
	select {
	case c := <-s.connected:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("server saw no connection")
		return nil
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Transports = []string{transportPolling}
	opts.Upgrade = false
	opts.ReconnectionDelay = 10 * time.Millisecond
	opts.ReconnectionDelayMax = 20 * time.Millisecond
	opts.RandomizationFactor = 0
	opts.Timeout = 2 * time.Second
	opts.Auth = map[string]any{"token": testToken}
	return opts
}

func newTestClient(t *testing.T, s *testServer, opts Options) (*Client, chan string) {
	t.Helper()
	c, err := NewClient(s.endpoint(), opts, zap.NewNop())
	require.NoError(t, err)

	events := make(chan string, 32)
	c.OnConnect(func() { events <- "connect" })
	c.OnDisconnect(func(reason string) { events <- "disconnect:" + reason })
	c.OnConnectError(func(err error) { events <- "connect_error:" + err.Error() })
	c.OnReconnectAttempt(func(n int) { events <- fmt.Sprintf("attempt:%d", n) })
	c.OnReconnect(func(n int) { events <- fmt.Sprintf("reconnect:%d", n) })

	t.Cleanup(func() {
		done := c.Done()
		c.Disconnect()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Error("client did not stop")
		}
	})
	return c, events
}

func next(t *testing.T, events <-chan string) string {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for client event")
		return ""
	}
}

// until collects events up to and including want.
func until(t *testing.T, events <-chan string, want string) []string {
	t.Helper()
	var seen []string
	for {
		ev := next(t, events)
		seen = append(seen, ev)
		if ev == want {
			return seen
		}
	}
}

func waitDone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("client kept running")
	}
}

func TestClient_Connect(t *testing.T) {
	t.Run("sends auth and exchanges events", func(t *testing.T) {
		s := newTestServer(t)
		c, events := newTestClient(t, s, testOptions())

		joined := make(chan []json.RawMessage, 1)
		c.On("restaurant-room-joined", func(args []json.RawMessage) { joined <- args })

		assert.Equal(t, StateDisconnected, c.State())
		assert.ErrorIs(t, c.Emit("join-restaurant", "r1"), ErrNotConnected)

		c.Connect()
		require.Equal(t, "connect", next(t, events))
		assert.Equal(t, StateConnected, c.State())
		s.nextClient(t)

		require.NoError(t, c.Emit("join-restaurant", "r1"))
		select {
		case args := <-joined:
			require.Len(t, args, 1)
			assert.JSONEq(t, `{"restaurantId":"r1"}`, string(args[0]))
		case <-time.After(5 * time.Second):
			t.Fatal("handler not called")
		}
	})

	t.Run("connect is a no-op while running", func(t *testing.T) {
		s := newTestServer(t)
		c, events := newTestClient(t, s, testOptions())

		c.Connect()
		c.Connect()
		require.Equal(t, "connect", next(t, events))
		s.nextClient(t)

		select {
		case <-s.connected:
			t.Fatal("second connection opened")
		case <-time.After(200 * time.Millisecond):
		}
	})

	t.Run("rejected auth", func(t *testing.T) {
		s := newTestServer(t)
		opts := testOptions()
		opts.Auth = map[string]any{"token": "Bearer stale"}
		c, events := newTestClient(t, s, opts)

		c.Connect()
		assert.Equal(t, "connect_error:unauthorized", next(t, events))
		waitDone(t, c)
		assert.Equal(t, StateDisconnected, c.State())
	})

	t.Run("websocket only", func(t *testing.T) {
		s := newTestServer(t)
		opts := testOptions()
		opts.Transports = []string{transportWebsocket}
		c, events := newTestClient(t, s, opts)

		c.Connect()
		require.Equal(t, "connect", next(t, events))
		s.nextClient(t)
	})
}

func TestClient_ServerDisconnect(t *testing.T) {
	t.Run("does not reconnect by itself", func(t *testing.T) {
		s := newTestServer(t)
		c, events := newTestClient(t, s, testOptions())

		c.Connect()
		require.Equal(t, "connect", next(t, events))
		s.nextClient(t).Disconnect(false)

		assert.Equal(t, "disconnect:"+ReasonServerDisconnect, next(t, events))
		waitDone(t, c)
		assert.Equal(t, StateDisconnected, c.State())
	})

	t.Run("connect again from disconnect callback", func(t *testing.T) {
		s := newTestServer(t)
		c, events := newTestClient(t, s, testOptions())
		c.OnDisconnect(func(reason string) {
			if reason == ReasonServerDisconnect {
				c.Connect()
			}
		})

		c.Connect()
		require.Equal(t, "connect", next(t, events))
		s.nextClient(t).Disconnect(false)

		assert.Equal(t, "disconnect:"+ReasonServerDisconnect, next(t, events))
		assert.Equal(t, "connect", next(t, events))
		s.nextClient(t)
	})
}

func TestClient_Reconnect(t *testing.T) {
	s := newTestServer(t)
	c, events := newTestClient(t, s, testOptions())

	c.Connect()
	require.Equal(t, "connect", next(t, events))

	// closing the underlying connection is a transport loss, not a namespace disconnect
	s.nextClient(t).Disconnect(true)

	seen := until(t, events, "connect")
	require.NotEmpty(t, seen)
	assert.Contains(t, seen[0], "disconnect:")
	assert.NotEqual(t, "disconnect:"+ReasonServerDisconnect, seen[0])
	assert.Contains(t, seen, "attempt:1")
	assert.Contains(t, seen, "reconnect:1")
	assert.Equal(t, StateConnected, c.State())
	s.nextClient(t)
}

func TestClient_Disconnect(t *testing.T) {
	s := newTestServer(t)
	c, events := newTestClient(t, s, testOptions())

	c.Connect()
	require.Equal(t, "connect", next(t, events))

	done := c.Done()
	c.Disconnect()
	c.Disconnect()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("client did not stop")
	}
	assert.Equal(t, "disconnect:"+ReasonClientDisconnect, next(t, events))
	assert.Equal(t, StateDisconnected, c.State())
	assert.ErrorIs(t, c.Emit("join-restaurant", "r1"), ErrNotConnected)

	c.Disconnect()
	select {
	case ev := <-events:
		t.Fatalf("unexpected event after teardown: %s", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		endpoint  string
		namespace string
		wantErr   bool
	}{
		{name: "namespace", endpoint: "http://localhost:4000/restaurant", namespace: "/restaurant"},
		{name: "trailing slash", endpoint: "https://api.example.com/restaurant/", namespace: "/restaurant"},
		{name: "root namespace", endpoint: "ws://localhost:4000", namespace: "/"},
		{name: "no host", endpoint: "/restaurant", wantErr: true},
		{name: "bad scheme", endpoint: "ftp://localhost/restaurant", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.endpoint, DefaultOptions(), nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.namespace, c.namespace)
			assert.Equal(t, StateDisconnected, c.State())
		})
	}
}

func TestOptions_socketOptions(t *testing.T) {
	t.Run("defaults retry forever", func(t *testing.T) {
		so := DefaultOptions().socketOptions()

		assert.True(t, math.IsInf(so.ReconnectionAttempts(), 1))
		assert.Equal(t, float64(1000), so.ReconnectionDelay())
		assert.Equal(t, float64(5000), so.ReconnectionDelayMax())
		assert.Equal(t, 0.5, so.RandomizationFactor())
		assert.Equal(t, 20*time.Second, so.Timeout())
		assert.False(t, so.AutoConnect())
		assert.True(t, so.Upgrade())
		assert.True(t, so.Transports().Has(transports.Polling))
		assert.True(t, so.Transports().Has(transports.WebSocket))
		assert.Nil(t, so.GetRawAuth())
	})

	t.Run("bounded attempts with auth", func(t *testing.T) {
		opts := testOptions()
		opts.ReconnectionAttempts = 3
		so := opts.withDefaults().socketOptions()

		assert.Equal(t, float64(3), so.ReconnectionAttempts())
		assert.Equal(t, float64(10), so.ReconnectionDelay())
		assert.False(t, so.Transports().Has(transports.WebSocket))
		assert.Equal(t, testToken, so.Auth()["token"])
	})
}

func TestEncodeArgs(t *testing.T) {
	var acked []any
	ack := func(args []any, _ error) { acked = args }

	raw, gotAck, err := encodeArgs([]any{map[string]any{"id": "O1"}, "x", ack})
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.JSONEq(t, `{"id":"O1"}`, string(raw[0]))
	assert.Equal(t, `"x"`, string(raw[1]))
	require.NotNil(t, gotAck)

	gotAck([]any{}, nil)
	assert.NotNil(t, acked)

	_, _, err = encodeArgs([]any{make(chan int)})
	assert.Error(t, err)
}
