package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/channel"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/desk"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/realtime"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ORDERDESK_"

const (
	BrokerNone    = "none"
	BrokerConsole = "console"
	BrokerKafka   = "kafka"
	BrokerAMQP    = "amqp"
)

type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Socket  SocketConfig  `yaml:"socket"`
	Desk    DeskConfig    `yaml:"desk"`
	Sound   SoundConfig   `yaml:"sound"`
	Control ControlConfig `yaml:"control"`
	Metrics MetricsConfig `yaml:"metrics"`
	Journal JournalConfig `yaml:"journal"`
	Broker  BrokerConfig  `yaml:"broker"`
	Log     logger.Config `yaml:"log"`
}

type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	// ProfileRetry is the pause between identity lookups at startup.
	ProfileRetry time.Duration `yaml:"profile_retry"`
}

type SessionConfig struct {
	File string `yaml:"file"`
}

type SocketConfig struct {
	Namespace            string        `yaml:"namespace"`
	Path                 string        `yaml:"path"`
	Transports           []string      `yaml:"transports"`
	Upgrade              bool          `yaml:"upgrade"`
	Reconnection         bool          `yaml:"reconnection"`
	ReconnectionDelay    time.Duration `yaml:"reconnection_delay"`
	ReconnectionDelayMax time.Duration `yaml:"reconnection_delay_max"`
	ReconnectionAttempts int           `yaml:"reconnection_attempts"`
	RandomizationFactor  float64       `yaml:"randomization_factor"`
	Timeout              time.Duration `yaml:"timeout"`
}

type DeskConfig struct {
	Window           time.Duration `yaml:"window"`
	PrepMinutes      int           `yaml:"prep_minutes"`
	TimeoutPolicy    string        `yaml:"timeout_policy"` // freeze | auto_reject | extend
	AutoRejectReason string        `yaml:"auto_reject_reason"`
	CommandTimeout   time.Duration `yaml:"command_timeout"`
	RecentOrders     int           `yaml:"recent_orders"`
}

type SoundConfig struct {
	// Command plays one chime, e.g. ["paplay", "/usr/share/sounds/bell.wav"].
	// An empty command falls back to the terminal bell.
	Command []string      `yaml:"command"`
	Bell    bool          `yaml:"bell"`
	LoopGap time.Duration `yaml:"loop_gap"`
}

type ControlConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	PasswordHash string        `yaml:"password_hash"` // bcrypt
	AuditWorkers int           `yaml:"audit_workers"`
	AuditBatch   int           `yaml:"audit_batch"`
	AuditFlush   time.Duration `yaml:"audit_flush"`
	Console      bool          `yaml:"console"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

type BrokerConfig struct {
	Kind         string        `yaml:"kind"` // none | console | kafka | amqp
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	AMQPURL      string        `yaml:"amqp_url"`
	Exchange     string        `yaml:"exchange"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
	MaxAttempts  int           `yaml:"max_attempts"`
}

func Default() Config {
	socket := realtime.DefaultOptions()
	return Config{
		Backend: BackendConfig{
			URL:          "http://localhost:4000/api",
			Timeout:      15 * time.Second,
			ProfileRetry: 3 * time.Second,
		},
		Session: SessionConfig{File: "session.json"},
		Socket: SocketConfig{
			Namespace:            channel.DefaultNamespace,
			Path:                 socket.Path,
			Transports:           socket.Transports,
			Upgrade:              socket.Upgrade,
			Reconnection:         socket.Reconnection,
			ReconnectionDelay:    socket.ReconnectionDelay,
			ReconnectionDelayMax: socket.ReconnectionDelayMax,
			RandomizationFactor:  socket.RandomizationFactor,
			Timeout:              socket.Timeout,
		},
		Desk: DeskConfig{
			Window:           desk.DefaultWindow,
			PrepMinutes:      desk.DefaultPrepMinutes,
			TimeoutPolicy:    string(desk.PolicyFreeze),
			AutoRejectReason: string(model.ReasonTooBusy),
			CommandTimeout:   20 * time.Second,
			RecentOrders:     100,
		},
		Sound: SoundConfig{Bell: true, LoopGap: 2 * time.Second},
		Control: ControlConfig{
			Addr:         "127.0.0.1:9000",
			Username:     "operator",
			AuditWorkers: 2,
			AuditBatch:   5,
			AuditFlush:   500 * time.Millisecond,
			Console:      true,
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		Broker: BrokerConfig{
			Kind:         BrokerNone,
			Brokers:      []string{"localhost:9092"},
			Topic:        "order_decisions",
			Exchange:     "orderdesk_topic",
			PollInterval: 2 * time.Second,
			BatchSize:    10,
			MaxAttempts:  5,
		},
		Log: logger.Config{Level: "info", Encoding: "console"},
	}
}

// Load reads path over the defaults, then .env and ORDERDESK_* variables.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	loadEnv(path)
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnv loads the first .env found next to the config file or in the
// working directory. Variables already set win.
func loadEnv(configPath string) {
	var candidates []string
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, ".env"), filepath.Join(wd, "..", ".env"))
	}
	for _, p := range candidates {
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = splitList(v)
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("BACKEND_URL", &c.Backend.URL)
	duration("BACKEND_TIMEOUT", &c.Backend.Timeout)
	str("SESSION_FILE", &c.Session.File)
	str("SOCKET_NAMESPACE", &c.Socket.Namespace)
	list("SOCKET_TRANSPORTS", &c.Socket.Transports)
	duration("DESK_WINDOW", &c.Desk.Window)
	integer("DESK_PREP_MINUTES", &c.Desk.PrepMinutes)
	str("DESK_TIMEOUT_POLICY", &c.Desk.TimeoutPolicy)
	list("SOUND_COMMAND", &c.Sound.Command)
	boolean("CONTROL_ENABLED", &c.Control.Enabled)
	str("CONTROL_ADDR", &c.Control.Addr)
	str("CONTROL_USERNAME", &c.Control.Username)
	str("CONTROL_PASSWORD_HASH", &c.Control.PasswordHash)
	boolean("CONSOLE", &c.Control.Console)
	boolean("METRICS_ENABLED", &c.Metrics.Enabled)
	boolean("JOURNAL_ENABLED", &c.Journal.Enabled)
	str("DB_DSN", &c.Journal.DSN)
	str("BROKER_KIND", &c.Broker.Kind)
	list("KAFKA_BROKERS", &c.Broker.Brokers)
	str("BROKER_TOPIC", &c.Broker.Topic)
	str("AMQP_URL", &c.Broker.AMQPURL)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_ENCODING", &c.Log.Encoding)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects values the desk cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.URL == "" {
		errs = append(errs, errors.New("backend.url is required"))
	} else if _, err := channel.Endpoint(c.Backend.URL, c.Socket.Namespace); err != nil {
		errs = append(errs, fmt.Errorf("backend.url: %w", err))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if c.Session.File == "" {
		errs = append(errs, errors.New("session.file is required"))
	}
	for _, tr := range c.Socket.Transports {
		if tr != "polling" && tr != "websocket" {
			errs = append(errs, fmt.Errorf("socket.transports: unknown transport %q", tr))
		}
	}
	if c.Socket.RandomizationFactor < 0 || c.Socket.RandomizationFactor > 1 {
		errs = append(errs, errors.New("socket.randomization_factor must be within [0, 1]"))
	}
	if c.Socket.ReconnectionAttempts < 0 {
		errs = append(errs, errors.New("socket.reconnection_attempts must not be negative"))
	}
	if c.Desk.Window < time.Second {
		errs = append(errs, errors.New("desk.window must be at least 1s"))
	}
	if c.Desk.PrepMinutes < desk.MinPrepMinutes {
		errs = append(errs, fmt.Errorf("desk.prep_minutes must be at least %d", desk.MinPrepMinutes))
	}
	if _, err := desk.ParseTimeoutPolicy(c.Desk.TimeoutPolicy); err != nil {
		errs = append(errs, fmt.Errorf("desk.timeout_policy: %w", err))
	}
	if _, err := model.ParseRejectReason(c.Desk.AutoRejectReason); err != nil {
		errs = append(errs, fmt.Errorf("desk.auto_reject_reason: %w", err))
	}
	if c.Control.Enabled {
		if c.Control.Addr == "" {
			errs = append(errs, errors.New("control.addr is required"))
		}
		if c.Control.Username == "" || c.Control.PasswordHash == "" {
			errs = append(errs, errors.New("control.username and control.password_hash are required"))
		}
		if c.Control.AuditWorkers <= 0 || c.Control.AuditBatch <= 0 {
			errs = append(errs, errors.New("control audit workers and batch must be positive"))
		}
	}
	if c.Journal.Enabled && c.Journal.DSN == "" {
		errs = append(errs, errors.New("journal.dsn is required when the journal is enabled"))
	}

	switch c.Broker.Kind {
	case "", BrokerNone:
	case BrokerConsole, BrokerKafka, BrokerAMQP:
		if !c.Journal.Enabled {
			errs = append(errs, errors.New("broker requires the journal"))
		}
		if c.Broker.Kind == BrokerKafka && len(c.Broker.Brokers) == 0 {
			errs = append(errs, errors.New("broker.brokers is required for kafka"))
		}
		if c.Broker.Kind == BrokerAMQP && c.Broker.AMQPURL == "" {
			errs = append(errs, errors.New("broker.amqp_url is required for amqp"))
		}
		if c.Broker.Topic == "" || c.Broker.PollInterval <= 0 || c.Broker.BatchSize <= 0 || c.Broker.MaxAttempts <= 0 {
			errs = append(errs, errors.New("broker topic, poll interval, batch size and max attempts must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("broker.kind: unknown broker %q", c.Broker.Kind))
	}

	return errors.Join(errs...)
}

// SocketOptions converts the socket section for the real-time client.
func (c *Config) SocketOptions() realtime.Options {
	return realtime.Options{
		Transports:           c.Socket.Transports,
		Upgrade:              c.Socket.Upgrade,
		Reconnection:         c.Socket.Reconnection,
		ReconnectionDelay:    c.Socket.ReconnectionDelay,
		ReconnectionDelayMax: c.Socket.ReconnectionDelayMax,
		ReconnectionAttempts: c.Socket.ReconnectionAttempts,
		RandomizationFactor:  c.Socket.RandomizationFactor,
		Timeout:              c.Socket.Timeout,
		Path:                 c.Socket.Path,
	}
}

func (c *Config) TimeoutPolicy() desk.TimeoutPolicy {
	p, _ := desk.ParseTimeoutPolicy(c.Desk.TimeoutPolicy)
	return p
}
