package repository

import (
	"errors"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
)

var ErrObjectNotFound = errors.New("not found")

type Decision struct {
	ID           int64     `db:"id"`
	RestaurantID string    `db:"restaurant_id"`
	OrderID      string    `db:"order_id"`
	BackendID    string    `db:"backend_id"`
	Kind         string    `db:"kind"`
	PrepMinutes  int       `db:"prep_minutes"`
	Reason       string    `db:"reason"`
	Automatic    bool      `db:"automatic"`
	DecidedAt    time.Time `db:"decided_at"`
}

func DecisionFromModel(d model.Decision) *Decision {
	return &Decision{
		RestaurantID: d.RestaurantID,
		OrderID:      d.OrderID,
		BackendID:    d.BackendID,
		Kind:         string(d.Kind),
		PrepMinutes:  d.PrepMinutes,
		Reason:       string(d.Reason),
		Automatic:    d.Automatic,
		DecidedAt:    d.DecidedAt,
	}
}

func (d *Decision) Model() model.Decision {
	return model.Decision{
		RestaurantID: d.RestaurantID,
		OrderID:      d.OrderID,
		BackendID:    d.BackendID,
		Kind:         model.DecisionKind(d.Kind),
		PrepMinutes:  d.PrepMinutes,
		Reason:       model.RejectReason(d.Reason),
		Automatic:    d.Automatic,
		DecidedAt:    d.DecidedAt,
	}
}

type AuditEntry struct {
	ID         int64     `db:"id"`
	LoggedAt   time.Time `db:"logged_at"`
	Operator   string    `db:"operator"`
	Method     string    `db:"method"`
	Path       string    `db:"path"`
	Action     string    `db:"action"`
	StatusCode int       `db:"status_code"`
	OrderID    string    `db:"order_id"`
	Request    string    `db:"request"`
	Response   string    `db:"response"`
}

func AuditFromModel(e model.AuditEntry) *AuditEntry {
	return &AuditEntry{
		LoggedAt:   e.Timestamp,
		Operator:   e.Operator,
		Method:     e.Method,
		Path:       e.Path,
		Action:     e.Action,
		StatusCode: e.StatusCode,
		OrderID:    e.OrderID,
		Request:    e.Request,
		Response:   e.Response,
	}
}
