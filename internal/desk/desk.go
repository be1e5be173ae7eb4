package desk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
)

//go:generate mockgen -source=desk.go -destination=mocks/mock_desk.go -package=mock_desk

var (
	ErrBusy           = errors.New("a decision for this order is already in flight")
	ErrNotPending     = errors.New("no pending order")
	ErrReasonRequired = errors.New("choose a reject reason first")
	ErrClosed         = errors.New("desk is closed")
)

const (
	DefaultWindow      = 240 * time.Second
	DefaultPrepMinutes = 11
	MinPrepMinutes     = 1

	defaultCommandTimeout = 20 * time.Second
	recordTimeout         = 5 * time.Second
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseResolving
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseResolving:
		return "resolving"
	default:
		return "unknown"
	}
}

// TimeoutPolicy decides what happens when the response window reaches zero.
type TimeoutPolicy string

const (
	// PolicyFreeze keeps the order pending with the countdown at 00:00.
	PolicyFreeze TimeoutPolicy = "freeze"
	// PolicyAutoReject sends a reject with the configured reason.
	PolicyAutoReject TimeoutPolicy = "auto_reject"
	// PolicyExtend restarts the window once per order, then freezes.
	PolicyExtend TimeoutPolicy = "extend"
)

func ParseTimeoutPolicy(s string) (TimeoutPolicy, error) {
	switch p := TimeoutPolicy(s); p {
	case PolicyFreeze, PolicyAutoReject, PolicyExtend:
		return p, nil
	case "":
		return PolicyFreeze, nil
	default:
		return "", fmt.Errorf("unknown timeout policy %q", s)
	}
}

// Commander issues decisions to the backend.
type Commander interface {
	AcceptOrder(ctx context.Context, orderID string, prepMinutes int) error
	RejectOrder(ctx context.Context, orderID string, reason model.RejectReason) error
}

// Alert is the looped sound played while an order is pending.
type Alert interface {
	Start()
	Stop()
}

type DecisionRecorder interface {
	RecordDecision(ctx context.Context, d model.Decision) error
}

// Holder is the receiver-side copy of the held order. ClearIf drops it only
// while it is still the resolved order.
type Holder interface {
	ClearIf(orderID string)
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// FormatCountdown renders seconds as zero-padded MM:SS, clamping at zero.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

type Snapshot struct {
	Phase       Phase                     `json:"-"`
	State       string                    `json:"state"`
	Order       *model.IncomingOrderEvent `json:"order,omitempty"`
	Remaining   int                       `json:"remaining_seconds"`
	Countdown   string                    `json:"countdown"`
	PrepMinutes int                       `json:"prep_minutes"`
	RejectOpen  bool                      `json:"reject_open"`
	Reason      model.RejectReason        `json:"reason,omitempty"`
	Muted       bool                      `json:"muted"`
	Alert       string                    `json:"alert,omitempty"`
}

// Update is pushed to subscribers on every state change. Alert is set only
// for the update that raised it.
type Update struct {
	Snapshot Snapshot
	Alert    string
}
