package events

import "time"

const ApplicationLifecycleTopic = "cto.application.lifecycle.v1"

// Notification kinds consumed by the notifier.
const (
	KindNextApprover  = "NEXT_APPROVER"
	KindFinalApproval = "FINAL_APPROVAL"
	KindRejection     = "REJECTION"
)

const (
	EventApplicationSubmitted = "application_submitted"
	EventApplicationAdvanced  = "application_advanced"
	EventApplicationApproved  = "application_approved"
	EventApplicationRejected  = "application_rejected"
)

type ApplicationLifecycleEvent struct {
	EventType      string    `json:"event_type"`
	Kind           string    `json:"kind"`
	RequestID      string    `json:"request_id,omitempty"`
	ApplicationID  string    `json:"application_id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	EmployeeEmail  string    `json:"employee_email"`
	ApproverID     string    `json:"approver_id,omitempty"`
	ApproverEmail  string    `json:"approver_email,omitempty"`
	Level          int       `json:"level,omitempty"`
	RequestedHours float64   `json:"requested_hours"`
	Remarks        string    `json:"remarks,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
