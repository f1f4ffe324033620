package events

import "time"

const CreditLifecycleTopic = "cto.credit.lifecycle.v1"

const (
	EventCreditIssued     = "credit_issued"
	EventCreditRolledBack = "credit_rolled_back"
)

type CreditLifecycleEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	CreditID    string    `json:"credit_id"`
	MemoNo      string    `json:"memo_no"`
	TotalHours  float64   `json:"total_hours"`
	EmployeeIDs []string  `json:"employee_ids"`
	ActorID     string    `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}
