package realtime

import "time"

const (
	MessageTypeAuth      = "auth"
	MessageTypeRowChange = "row_change"
)

// Message is pushed to every open connection of a user.
type Message struct {
	Type      string    `json:"type"`
	Event     string    `json:"event,omitempty"`
	Table     string    `json:"table,omitempty"`
	Action    string    `json:"action,omitempty"`
	RowID     int64     `json:"rowId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
