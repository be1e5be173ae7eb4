package notify

import (
	"encoding/json"
	"sync"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/realtime"
	"go.uber.org/zap"
)

const (
	EventNewOrder    = "new_order"
	EventPlaySound   = "play_notification_sound"
	EventOrderStatus = "order_status_update"

	subscriberBuffer = 8
)

//go:generate mockgen -source=receiver.go -destination=mocks/mock_receiver.go -package=mock_notify

// Source is the channel the receiver listens on.
type Source interface {
	On(event string, h realtime.Handler)
	Connected() bool
}

type Cue interface {
	Trigger()
}

type StatusRecorder interface {
	Received(ev model.IncomingOrderEvent)
	UpdateStatus(orderID, status string, at time.Time)
}

type Kind int

const (
	KindNewOrder Kind = iota
	KindSound
	KindStatus
)

type Event struct {
	Kind   Kind
	Order  model.IncomingOrderEvent
	Status model.StatusUpdate
}

// Receiver turns channel events into the latest held order plus a sound cue.
type Receiver struct {
	cue    Cue
	source Source
	recent StatusRecorder
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	latest model.IncomingOrderEvent
	has    bool
	subs   map[int]chan Event
	nextID int
}

func NewReceiver(source Source, cue Cue, recent StatusRecorder, logger *zap.Logger) *Receiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Receiver{
		cue:    cue,
		source: source,
		recent: recent,
		logger: logger.With(zap.String("component", "notify")),
		now:    time.Now,
		subs:   make(map[int]chan Event),
	}
	source.On(EventNewOrder, r.handleNewOrder)
	source.On(EventPlaySound, r.handlePlaySound)
	source.On(EventOrderStatus, r.handleStatus)
	return r
}

// Latest returns the held order, if any.
func (r *Receiver) Latest() (model.IncomingOrderEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.has
}

// ClearIf drops the held order if it is still orderID. A newer order that
// arrived meanwhile is kept.
func (r *Receiver) ClearIf(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.has || r.latest.ID != orderID {
		return
	}
	r.latest = model.IncomingOrderEvent{}
	r.has = false
}

func (r *Receiver) Connected() bool {
	return r.source.Connected()
}

// Subscribe returns a channel of receiver events and a func that releases it.
// A slow subscriber loses its oldest pending event, never the newest.
func (r *Receiver) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
			close(ch)
		})
	}
}

func (r *Receiver) handleNewOrder(args []json.RawMessage) {
	if len(args) == 0 {
		r.invalid(EventNewOrder, "missing payload", nil)
		return
	}
	ev, err := model.DecodeIncomingOrder(args[0], r.now())
	if err != nil {
		r.invalid(EventNewOrder, "invalid order payload", err)
		return
	}

	r.mu.Lock()
	if r.has && r.latest.ID != ev.ID {
		r.logger.Warn("new order replaces an unresolved one",
			zap.String("replaced_order_id", r.latest.ID),
			zap.String("order_id", ev.ID))
	}
	r.latest = ev
	r.has = true
	r.mu.Unlock()

	metrics.OrdersReceivedTotal.Inc()
	if r.recent != nil {
		r.recent.Received(ev)
	}
	r.logger.Info("new order received",
		zap.String("order_id", ev.ID),
		zap.Int("items", len(ev.Items)),
		zap.String("total", ev.Total.StringFixed(2)))

	r.cue.Trigger()
	r.publish(Event{Kind: KindNewOrder, Order: ev})
}

func (r *Receiver) handlePlaySound(_ []json.RawMessage) {
	r.logger.Debug("sound requested by server")
	r.cue.Trigger()
	r.publish(Event{Kind: KindSound})
}

func (r *Receiver) handleStatus(args []json.RawMessage) {
	if len(args) == 0 {
		r.invalid(EventOrderStatus, "missing payload", nil)
		return
	}
	su, err := model.DecodeStatusUpdate(args[0])
	if err != nil {
		r.invalid(EventOrderStatus, "invalid status payload", err)
		return
	}
	if r.recent != nil {
		r.recent.UpdateStatus(su.OrderID, su.Status, r.now().UTC())
	}
	r.logger.Info("order status update", zap.String("order_id", su.OrderID), zap.String("status", su.Status))
	r.publish(Event{Kind: KindStatus, Status: su})
}

func (r *Receiver) invalid(event, msg string, err error) {
	metrics.InvalidPayloadsTotal.WithLabelValues(event).Inc()
	r.logger.Warn(msg, zap.String("event", event), zap.Error(err))
}

func (r *Receiver) publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
