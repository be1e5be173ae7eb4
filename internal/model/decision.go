package model

import (
	"fmt"
	"time"
)

type RejectReason string

const (
	ReasonTooBusy         RejectReason = "Restaurant is too busy"
	ReasonItemUnavailable RejectReason = "Item not available"
	ReasonOutsideArea     RejectReason = "Outside delivery area"
	ReasonKitchenClosing  RejectReason = "Kitchen closing soon"
	ReasonTechnicalIssue  RejectReason = "Technical issue"
	ReasonOther           RejectReason = "Other reason"
)

// RejectReasons is the fixed list offered to the operator, in display order.
var RejectReasons = []RejectReason{
	ReasonTooBusy,
	ReasonItemUnavailable,
	ReasonOutsideArea,
	ReasonKitchenClosing,
	ReasonTechnicalIssue,
	ReasonOther,
}

func ParseRejectReason(s string) (RejectReason, error) {
	for _, r := range RejectReasons {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown reject reason %q", s)
}

type DecisionKind string

const (
	DecisionAccepted DecisionKind = "accepted"
	DecisionRejected DecisionKind = "rejected"
)

// Decision is a resolution the backend confirmed.
type Decision struct {
	RestaurantID string       `json:"restaurant_id"`
	OrderID      string       `json:"order_id"`
	BackendID    string       `json:"backend_id,omitempty"`
	Kind         DecisionKind `json:"kind"`
	PrepMinutes  int          `json:"prep_minutes,omitempty"`
	Reason       RejectReason `json:"reason,omitempty"`
	Automatic    bool         `json:"automatic,omitempty"`
	DecidedAt    time.Time    `json:"decided_at"`
}
