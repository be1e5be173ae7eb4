package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/desk"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orderdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, desk.DefaultWindow, cfg.Desk.Window)
	assert.Equal(t, desk.DefaultPrepMinutes, cfg.Desk.PrepMinutes)
	assert.Equal(t, desk.PolicyFreeze, cfg.TimeoutPolicy())
	assert.Equal(t, "/restaurant", cfg.Socket.Namespace)
	assert.True(t, cfg.Socket.Reconnection)
	assert.Equal(t, BrokerNone, cfg.Broker.Kind)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: https://api.example.com/api
desk:
  window: 90s
  prep_minutes: 20
  timeout_policy: auto_reject
  auto_reject_reason: Kitchen closing soon
socket:
  transports: [websocket]
  reconnection_delay: 2s
journal:
  enabled: true
  dsn: postgres://desk@localhost/desk
broker:
  kind: kafka
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.Backend.URL)
	assert.Equal(t, 90*time.Second, cfg.Desk.Window)
	assert.Equal(t, 20, cfg.Desk.PrepMinutes)
	assert.Equal(t, desk.PolicyAutoReject, cfg.TimeoutPolicy())

	opts := cfg.SocketOptions()
	assert.Equal(t, []string{"websocket"}, opts.Transports)
	assert.Equal(t, 2*time.Second, opts.ReconnectionDelay)
	assert.True(t, opts.Upgrade)
	assert.Equal(t, "order_decisions", cfg.Broker.Topic)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "backend:\n  url: http://file.example/api\n")
	t.Setenv("ORDERDESK_BACKEND_URL", "http://env.example/api")
	t.Setenv("ORDERDESK_DESK_WINDOW", "3m")
	t.Setenv("ORDERDESK_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ORDERDESK_JOURNAL_ENABLED", "true")
	t.Setenv("ORDERDESK_DB_DSN", "postgres://env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env.example/api", cfg.Backend.URL)
	assert.Equal(t, 3*time.Minute, cfg.Desk.Window)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.Brokers)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "postgres://env", cfg.Journal.DSN)
}

func TestApplyEnv_BadValues(t *testing.T) {
	env := map[string]string{
		"ORDERDESK_DESK_WINDOW":       "soon",
		"ORDERDESK_DESK_PREP_MINUTES": "eleven",
		"ORDERDESK_CONTROL_ENABLED":   "maybe",
	}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORDERDESK_DESK_WINDOW")
	assert.Contains(t, err.Error(), "ORDERDESK_DESK_PREP_MINUTES")
	assert.Contains(t, err.Error(), "ORDERDESK_CONTROL_ENABLED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "relative backend", mutate: func(c *Config) { c.Backend.URL = "localhost:4000" }, wantErr: "backend.url"},
		{name: "zero prep", mutate: func(c *Config) { c.Desk.PrepMinutes = 0 }, wantErr: "desk.prep_minutes"},
		{name: "short window", mutate: func(c *Config) { c.Desk.Window = 500 * time.Millisecond }, wantErr: "desk.window"},
		{name: "unknown policy", mutate: func(c *Config) { c.Desk.TimeoutPolicy = "panic" }, wantErr: "desk.timeout_policy"},
		{name: "unknown reason", mutate: func(c *Config) { c.Desk.AutoRejectReason = "Because" }, wantErr: "desk.auto_reject_reason"},
		{name: "unknown transport", mutate: func(c *Config) { c.Socket.Transports = []string{"carrier-pigeon"} }, wantErr: "socket.transports"},
		{name: "control without hash", mutate: func(c *Config) { c.Control.Enabled = true }, wantErr: "password_hash"},
		{name: "journal without dsn", mutate: func(c *Config) { c.Journal.Enabled = true }, wantErr: "journal.dsn"},
		{name: "broker without journal", mutate: func(c *Config) { c.Broker.Kind = BrokerKafka }, wantErr: "broker requires the journal"},
		{name: "amqp without url", mutate: func(c *Config) {
			c.Journal.Enabled, c.Journal.DSN = true, "postgres://x"
			c.Broker.Kind = BrokerAMQP
		}, wantErr: "broker.amqp_url"},
		{name: "unknown broker", mutate: func(c *Config) { c.Broker.Kind = "nats" }, wantErr: "broker.kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
