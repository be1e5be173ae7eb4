package desk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/backend"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/notify"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

type Options struct {
	RestaurantID     string
	Window           time.Duration
	PrepMinutes      int
	Policy           TimeoutPolicy
	AutoRejectReason model.RejectReason
	CommandTimeout   time.Duration
	Holder           Holder
	Recorders        []DecisionRecorder
	NewTicker        func(time.Duration) Ticker
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.PrepMinutes < MinPrepMinutes {
		o.PrepMinutes = DefaultPrepMinutes
	}
	if o.Policy == "" {
		o.Policy = PolicyFreeze
	}
	if o.AutoRejectReason == "" {
		o.AutoRejectReason = model.ReasonTooBusy
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = defaultCommandTimeout
	}
	if o.NewTicker == nil {
		o.NewTicker = NewRealTicker
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Controller presents one pending order at a time and resolves it with an
// accept or reject decision inside the response window.
type Controller struct {
	cmd    Commander
	alert  Alert
	opts   Options
	logger *zap.Logger

	mu         sync.Mutex
	phase      Phase
	order      model.IncomingOrderEvent
	remaining  int
	prep       int
	rejectOpen bool
	reason     model.RejectReason
	muted      bool
	alertText  string
	// superseded marks an Offer that landed while a command was in flight.
	superseded bool
	expired    bool
	extended   bool

	gen      uint64
	tickQuit chan struct{}

	subs   map[int]chan Update
	nextID int
	closed bool
	once   sync.Once
}

func NewController(cmd Commander, alert Alert, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	c := &Controller{
		cmd:    cmd,
		alert:  alert,
		opts:   opts,
		logger: logger.With(zap.String("component", "desk")),
		subs:   make(map[int]chan Update),
	}
	c.resetWindowLocked()
	return c
}

// Run offers every new order from events until ctx ends or events closes.
func (c *Controller) Run(ctx context.Context, events <-chan notify.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind == notify.KindNewOrder {
				c.Offer(ev.Order)
			}
		}
	}
}

// Offer makes ev the pending order, resetting the window and the estimate.
func (c *Controller) Offer(ev model.IncomingOrderEvent) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if c.phase == PhaseResolving {
		c.superseded = true
	} else {
		c.phase = PhasePending
	}
	c.order = ev
	c.resetWindowLocked()
	c.alertText = ""
	c.startTickerLocked()
	if !c.muted {
		c.alert.Start()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("order pending", zap.String("order_id", ev.ID), zap.Int("window_seconds", snap.Remaining))
	c.publish(Update{Snapshot: snap})
}

func (c *Controller) IncrementPrep() (int, error) {
	return c.adjustPrep(1)
}

func (c *Controller) DecrementPrep() (int, error) {
	return c.adjustPrep(-1)
}

func (c *Controller) adjustPrep(delta int) (int, error) {
	c.mu.Lock()
	if c.phase != PhasePending {
		prep := c.prep
		c.mu.Unlock()
		return prep, c.notPendingErrLocked()
	}
	c.prep += delta
	if c.prep < MinPrepMinutes {
		c.prep = MinPrepMinutes
	}
	prep := c.prep
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(Update{Snapshot: snap})
	return prep, nil
}

func (c *Controller) OpenReject() error {
	return c.updatePending(func() error {
		c.rejectOpen = true
		return nil
	})
}

// SelectReason picks one of the fixed reject reasons and opens the dialog if
// needed.
func (c *Controller) SelectReason(reason string) error {
	r, err := model.ParseRejectReason(reason)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReasonRequired, err)
	}
	return c.updatePending(func() error {
		c.rejectOpen = true
		c.reason = r
		return nil
	})
}

func (c *Controller) CancelReject() error {
	return c.updatePending(func() error {
		c.rejectOpen = false
		c.reason = ""
		return nil
	})
}

func (c *Controller) updatePending(fn func() error) error {
	c.mu.Lock()
	if c.phase != PhasePending {
		err := c.notPendingErrLocked()
		c.mu.Unlock()
		return err
	}
	if err := fn(); err != nil {
		c.mu.Unlock()
		return err
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(Update{Snapshot: snap})
	return nil
}

// Accept sends the pending order's acceptance with the current estimate.
func (c *Controller) Accept(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhasePending {
		err := c.notPendingErrLocked()
		c.mu.Unlock()
		return err
	}
	order, prep := c.order, c.prep
	c.beginLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(Update{Snapshot: snap})

	d := c.decision(order, model.DecisionAccepted)
	d.PrepMinutes = prep

	ctx, cancel := context.WithTimeout(ctx, c.opts.CommandTimeout)
	defer cancel()
	err := c.cmd.AcceptOrder(ctx, order.CommandID(), prep)
	return c.settle("accept_order", d, err)
}

// Reject sends the selected reason. It refuses to run until a reason from the
// fixed list is chosen.
func (c *Controller) Reject(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhasePending {
		err := c.notPendingErrLocked()
		c.mu.Unlock()
		return err
	}
	if !c.rejectOpen || c.reason == "" {
		c.mu.Unlock()
		return ErrReasonRequired
	}
	order, reason := c.order, c.reason
	c.beginLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(Update{Snapshot: snap})

	return c.reject(ctx, order, reason, false)
}

func (c *Controller) reject(ctx context.Context, order model.IncomingOrderEvent, reason model.RejectReason, automatic bool) error {
	d := c.decision(order, model.DecisionRejected)
	d.Reason = reason
	d.Automatic = automatic

	ctx, cancel := context.WithTimeout(ctx, c.opts.CommandTimeout)
	defer cancel()
	err := c.cmd.RejectOrder(ctx, order.CommandID(), reason)
	return c.settle("reject_order", d, err)
}

func (c *Controller) beginLocked() {
	c.phase = PhaseResolving
	c.superseded = false
	c.alertText = ""
}

func (c *Controller) decision(order model.IncomingOrderEvent, kind model.DecisionKind) model.Decision {
	return model.Decision{
		RestaurantID: c.opts.RestaurantID,
		OrderID:      order.ID,
		BackendID:    order.BackendID,
		Kind:         kind,
	}
}

// settle applies the outcome of a command issued for d.OrderID.
func (c *Controller) settle(op string, d model.Decision, err error) error {
	l := c.logger.With(zap.String("order_id", d.OrderID), zap.String("operation", op))

	c.mu.Lock()
	if err != nil {
		alertText := backend.UserMessage(err)
		if c.superseded {
			// the failed command was for the replaced order, the newer one
			// stays pending untouched
			alertText = fmt.Sprintf("Order %s: %s", d.OrderID, alertText)
			c.superseded = false
		} else if !c.closed {
			c.alertText = alertText
		}
		if !c.closed {
			c.phase = PhasePending
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()

		metrics.OperationErrorsTotal.WithLabelValues(op).Inc()
		l.Warn("decision failed, order stays pending", zap.Error(err))
		c.publish(Update{Snapshot: snap, Alert: alertText})
		return err
	}

	d.DecidedAt = c.opts.Now().UTC()
	if c.superseded && !c.closed {
		// a newer order arrived meanwhile and keeps its own window
		c.phase = PhasePending
		c.superseded = false
	} else {
		c.resolveLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	metrics.DecisionsTotal.WithLabelValues(string(d.Kind)).Inc()
	l.Info("decision confirmed", zap.String("kind", string(d.Kind)), zap.Int("prep_minutes", d.PrepMinutes), zap.String("reason", string(d.Reason)))
	c.publish(Update{Snapshot: snap})
	c.record(d)
	return nil
}

func (c *Controller) record(d model.Decision) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	for _, r := range c.opts.Recorders {
		if err := r.RecordDecision(ctx, d); err != nil {
			metrics.OperationErrorsTotal.WithLabelValues("record_decision").Inc()
			c.logger.Error("record decision", zap.String("order_id", d.OrderID), zap.Error(err))
		}
	}
}

// resolveLocked returns to Idle and releases the timer and the alert.
func (c *Controller) resolveLocked() {
	id := c.order.ID
	c.phase = PhaseIdle
	c.order = model.IncomingOrderEvent{}
	c.resetWindowLocked()
	c.alertText = ""
	c.stopTickerLocked()
	c.alert.Stop()
	if c.opts.Holder != nil {
		c.opts.Holder.ClearIf(id)
	}
}

// Clear drops the pending order without telling the backend.
func (c *Controller) Clear() error {
	c.mu.Lock()
	switch c.phase {
	case PhaseResolving:
		c.mu.Unlock()
		return ErrBusy
	case PhaseIdle:
		c.mu.Unlock()
		return nil
	}
	id := c.order.ID
	c.resolveLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("pending order cleared", zap.String("order_id", id))
	c.publish(Update{Snapshot: snap})
	return nil
}

// ToggleMute starts or stops the looped alert and reports the new mute state.
// Nothing else changes.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	c.muted = !c.muted
	if c.phase != PhaseIdle && !c.closed {
		if c.muted {
			c.alert.Stop()
		} else {
			c.alert.Start()
		}
	}
	muted := c.muted
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(Update{Snapshot: snap})
	return muted
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a stream of updates and a func that releases it. A slow
// subscriber loses its oldest pending update.
func (c *Controller) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Close stops the countdown and the alert and ends all subscriptions. It is
// safe to call more than once.
func (c *Controller) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.stopTickerLocked()
		c.alert.Stop()
		for id, ch := range c.subs {
			delete(c.subs, id)
			close(ch)
		}
		c.mu.Unlock()
		metrics.CountdownSeconds.Set(0)
	})
}

func (c *Controller) resetWindowLocked() {
	c.remaining = int(c.opts.Window / time.Second)
	c.prep = c.opts.PrepMinutes
	c.rejectOpen = false
	c.reason = ""
	c.expired = false
	c.extended = false
	if c.phase == PhaseIdle {
		metrics.CountdownSeconds.Set(0)
	} else {
		metrics.CountdownSeconds.Set(float64(c.remaining))
	}
}

func (c *Controller) startTickerLocked() {
	c.stopTickerLocked()
	c.gen++
	quit := make(chan struct{})
	c.tickQuit = quit
	go c.countdown(c.opts.NewTicker(time.Second), c.gen, quit)
}

func (c *Controller) stopTickerLocked() {
	if c.tickQuit != nil {
		close(c.tickQuit)
		c.tickQuit = nil
	}
}

func (c *Controller) countdown(t Ticker, gen uint64, quit <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-quit:
			return
		case <-t.C():
			if !c.tick(gen) {
				return
			}
		}
	}
}

// tick advances the window by one second. It reports false once the ticker
// that called it is stale.
func (c *Controller) tick(gen uint64) bool {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return false
	}
	if c.phase != PhasePending {
		c.mu.Unlock()
		return true
	}
	if c.remaining > 0 {
		c.remaining--
		metrics.CountdownSeconds.Set(float64(c.remaining))
	}

	var autoReject *model.IncomingOrderEvent
	if c.remaining == 0 && !c.expired {
		c.expired = true
		switch c.opts.Policy {
		case PolicyExtend:
			if !c.extended {
				c.extended = true
				c.expired = false
				c.remaining = int(c.opts.Window / time.Second)
				c.logger.Info("response window extended", zap.String("order_id", c.order.ID))
			} else {
				c.logger.Warn("response window elapsed", zap.String("order_id", c.order.ID))
			}
		case PolicyAutoReject:
			order := c.order
			autoReject = &order
			c.beginLocked()
		default:
			c.logger.Warn("response window elapsed", zap.String("order_id", c.order.ID))
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(Update{Snapshot: snap})
	if autoReject != nil {
		c.logger.Info("response window elapsed, rejecting automatically", zap.String("order_id", autoReject.ID))
		go func(order model.IncomingOrderEvent) {
			_ = c.reject(context.Background(), order, c.opts.AutoRejectReason, true)
		}(*autoReject)
	}
	return true
}

func (c *Controller) notPendingErrLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.phase == PhaseResolving:
		return ErrBusy
	default:
		return ErrNotPending
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:       c.phase,
		State:       c.phase.String(),
		Remaining:   c.remaining,
		Countdown:   FormatCountdown(c.remaining),
		PrepMinutes: c.prep,
		RejectOpen:  c.rejectOpen,
		Reason:      c.reason,
		Muted:       c.muted,
		Alert:       c.alertText,
	}
	if c.phase != PhaseIdle {
		order := c.order
		s.Order = &order
	}
	return s
}

func (c *Controller) publish(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}
