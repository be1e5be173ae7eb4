package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"go.uber.org/zap"
)

const (
	StatusReceived = "received"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"

	DefaultCapacity = 100
)

type RecentOrder struct {
	ID        string          `json:"id"`
	BackendID string          `json:"backend_id,omitempty"`
	Status    string          `json:"status"`
	Items     int             `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Reason    string          `json:"reason,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type DecisionSource interface {
	ListRecentDecisions(ctx context.Context, limit int) ([]model.Decision, error)
}

// OrderCache keeps the orders seen by the desk with their latest status,
// dropping the least recently updated once capacity is reached.
type OrderCache struct {
	mu       sync.RWMutex
	cache    map[string]*RecentOrder
	capacity int
	logger   *zap.Logger
}

func NewOrderCache(capacity int, logger *zap.Logger) *OrderCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderCache{
		cache:    make(map[string]*RecentOrder),
		capacity: capacity,
		logger:   logger.With(zap.String("component", "order_cache")),
	}
}

// LoadInitialData warms the cache from the decision journal.
func (c *OrderCache) LoadInitialData(ctx context.Context, src DecisionSource) error {
	decisions, err := src.ListRecentDecisions(ctx, c.capacity)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range decisions {
		status := StatusAccepted
		if d.Kind == model.DecisionRejected {
			status = StatusRejected
		}
		c.cache[d.OrderID] = &RecentOrder{
			ID:        d.OrderID,
			BackendID: d.BackendID,
			Status:    status,
			Reason:    string(d.Reason),
			UpdatedAt: d.DecidedAt,
		}
	}
	c.evictLocked()
	c.logger.Info("loaded recent orders", zap.Int("count", len(c.cache)))
	return nil
}

// Get returns a copy of the cached order.
func (c *OrderCache) Get(orderID string) (*RecentOrder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	order, found := c.cache[orderID]
	if !found {
		return nil, false
	}
	orderCopy := *order
	return &orderCopy, true
}

func (c *OrderCache) Received(ev model.IncomingOrderEvent) {
	c.set(&RecentOrder{
		ID:        ev.ID,
		BackendID: ev.BackendID,
		Status:    StatusReceived,
		Items:     len(ev.Items),
		Total:     ev.Total,
		UpdatedAt: ev.CreatedAt,
	})
}

// UpdateStatus records a status for orderID, creating the entry if needed.
func (c *OrderCache) UpdateStatus(orderID, status string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, found := c.cache[orderID]
	if !found {
		order = &RecentOrder{ID: orderID}
		c.cache[orderID] = order
	}
	order.Status = status
	order.UpdatedAt = at
	c.evictLocked()
	c.logger.Debug("order status updated", zap.String("order_id", orderID), zap.String("status", status))
}

// RecordDecision marks the order as accepted or rejected.
func (c *OrderCache) RecordDecision(_ context.Context, d model.Decision) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, found := c.cache[d.OrderID]
	if !found {
		order = &RecentOrder{ID: d.OrderID, BackendID: d.BackendID}
		c.cache[d.OrderID] = order
	}
	order.Status = StatusAccepted
	if d.Kind == model.DecisionRejected {
		order.Status = StatusRejected
		order.Reason = string(d.Reason)
	}
	order.UpdatedAt = d.DecidedAt
	c.evictLocked()
	return nil
}

// List returns the cached orders, most recently updated first.
func (c *OrderCache) List() []RecentOrder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]RecentOrder, 0, len(c.cache))
	for _, o := range c.cache {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (c *OrderCache) set(order *RecentOrder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	orderCopy := *order
	c.cache[order.ID] = &orderCopy
	c.evictLocked()
}

func (c *OrderCache) evictLocked() {
	for len(c.cache) > c.capacity {
		var oldest *RecentOrder
		for _, o := range c.cache {
			if oldest == nil || o.UpdatedAt.Before(oldest.UpdatedAt) {
				oldest = o
			}
		}
		delete(c.cache, oldest.ID)
	}
	metrics.OrderCacheItems.Set(float64(len(c.cache)))
}
