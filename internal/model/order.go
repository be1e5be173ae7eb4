package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidOrder = errors.New("invalid order payload")

type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IncomingOrderEvent is a snapshot of a newly placed order. It is never
// mutated after decoding; a newer event replaces it as a whole.
type IncomingOrderEvent struct {
	ID              string          `json:"id"`
	BackendID       string          `json:"backend_id,omitempty"`
	Items           []OrderItem     `json:"items"`
	CustomerAddress string          `json:"customer_address,omitempty"`
	Cutlery         bool            `json:"cutlery"`
	CreatedAt       time.Time       `json:"created_at"`
	Total           decimal.Decimal `json:"total"`
}

// CommandID is the identifier the backend expects on accept/reject calls.
func (e IncomingOrderEvent) CommandID() string {
	if e.BackendID != "" {
		return e.BackendID
	}
	return e.ID
}

func (e IncomingOrderEvent) IsZero() bool {
	return e.ID == "" && e.BackendID == ""
}

type wireItem struct {
	Name     string           `json:"name"`
	Quantity *int             `json:"quantity"`
	Qty      *int             `json:"qty"`
	Price    *decimal.Decimal `json:"price"`
}

type wireOrder struct {
	MongoID         string           `json:"_id"`
	ID              string           `json:"id"`
	OrderID         string           `json:"orderId"`
	Items           []wireItem       `json:"items"`
	CustomerAddress string           `json:"customerAddress"`
	Address         string           `json:"address"`
	Cutlery         bool             `json:"cutlery"`
	CreatedAt       *time.Time       `json:"createdAt"`
	Total           *decimal.Decimal `json:"total"`
	TotalAmount     *decimal.Decimal `json:"totalAmount"`
}

// DecodeIncomingOrder validates a new_order payload and normalizes the
// field aliases the backend is known to send.
func DecodeIncomingOrder(raw []byte, now time.Time) (IncomingOrderEvent, error) {
	var w wireOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return IncomingOrderEvent{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	ev := IncomingOrderEvent{
		ID:              firstNonEmpty(w.OrderID, w.ID, w.MongoID),
		BackendID:       w.MongoID,
		CustomerAddress: strings.TrimSpace(firstNonEmpty(w.CustomerAddress, w.Address)),
		Cutlery:         w.Cutlery,
		CreatedAt:       now.UTC(),
	}
	if ev.ID == "" {
		return IncomingOrderEvent{}, fmt.Errorf("%w: missing order id", ErrInvalidOrder)
	}
	if w.CreatedAt != nil && !w.CreatedAt.IsZero() {
		ev.CreatedAt = w.CreatedAt.UTC()
	}

	computed := decimal.Zero
	ev.Items = make([]OrderItem, 0, len(w.Items))
	for i, wi := range w.Items {
		qty := wi.Quantity
		if qty == nil {
			qty = wi.Qty
		}
		if qty == nil || *qty <= 0 {
			return IncomingOrderEvent{}, fmt.Errorf("%w: item %d has no positive quantity", ErrInvalidOrder, i)
		}
		price := decimal.Zero
		if wi.Price != nil {
			price = *wi.Price
		}
		if price.IsNegative() {
			return IncomingOrderEvent{}, fmt.Errorf("%w: item %d has negative price", ErrInvalidOrder, i)
		}
		item := OrderItem{Name: strings.TrimSpace(wi.Name), Quantity: *qty, Price: price}
		computed = computed.Add(item.Subtotal())
		ev.Items = append(ev.Items, item)
	}

	switch {
	case w.Total != nil:
		ev.Total = *w.Total
	case w.TotalAmount != nil:
		ev.Total = *w.TotalAmount
	default:
		ev.Total = computed
	}
	if ev.Total.IsNegative() {
		return IncomingOrderEvent{}, fmt.Errorf("%w: negative total", ErrInvalidOrder)
	}

	return ev, nil
}

type StatusUpdate struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func DecodeStatusUpdate(raw []byte) (StatusUpdate, error) {
	var w struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return StatusUpdate{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	su := StatusUpdate{OrderID: firstNonEmpty(w.OrderID, w.ID, w.MongoID), Status: w.Status}
	if su.OrderID == "" || su.Status == "" {
		return StatusUpdate{}, fmt.Errorf("%w: status update without order id or status", ErrInvalidOrder)
	}
	return su, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
