// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityQueueName is the durable queue account events are published to.
const ActivityQueueName = "account.activity"

// ActivityEvent mirrors an audit record. It is published after each
// significant account action so downstream consumers can log, notify or
// feed analytics without querying the primary database.
type ActivityEvent struct {
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email"`
	Action      string `json:"action"`
	Description string `json:"description"`
	IPAddress   string `json:"ip_address"`
	UserAgent   string `json:"user_agent"`
	OccurredAt  string `json:"occurred_at"`
}
