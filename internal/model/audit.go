package model

import "time"

// AuditEntry is one operator request seen by the control API.
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Operator   string    `json:"operator,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Action     string    `json:"action"`
	StatusCode int       `json:"status_code"`
	OrderID    string    `json:"order_id,omitempty"`
	Request    string    `json:"request,omitempty"`
	Response   string    `json:"response,omitempty"`
}
