package domain

import "time"

// Operation names a state-machine transition carried by a queue entry or an
// interaction action. The set is closed; anything else is a decode error.
type Operation string

const (
	OperationApprove Operation = "APPROVE"
	OperationReject  Operation = "REJECT"
	OperationRevert  Operation = "REVERT"
)

// QueueEntry is one row of the deferred queue. The table is append-only and
// doubles as an audit log: rows are never deleted, only the Processed flag
// flips, exactly once.
type QueueEntry struct {
	ID              int64     `json:"id"`
	EnqueuedAt      time.Time `json:"enqueued_at"`
	Operation       Operation `json:"operation"`
	RegistrationID  string    `json:"registration_id"`
	ActingUser      string    `json:"acting_user"`
	Payload         string    `json:"payload"` // free text, e.g. rejection reason
	OriginChannel   string    `json:"origin_channel"`
	OriginMessageTS string    `json:"origin_message_ts"`
	Processed       bool      `json:"processed"`
}
