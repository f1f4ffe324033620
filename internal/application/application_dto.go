package application

import "strings"

type ApproverChainInput struct {
	Level1 string `json:"level1" binding:"required,uuid"`
	Level2 string `json:"level2" binding:"required,uuid"`
	Level3 string `json:"level3" binding:"required,uuid"`
}

type SubmitApplicationRequest struct {
	RequestedHours float64             `json:"requested_hours" binding:"required,gt=0"`
	Reason         string              `json:"reason"`
	DateFrom       string              `json:"date_from"`
	DateTo         string              `json:"date_to"`
	ApproverChain  *ApproverChainInput `json:"approver_chain"`
}

type DecideRequest struct {
	Decision string `json:"decision" binding:"required"`
	Remarks  string `json:"remarks"`
}

// NormalizedDecision folds the legacy DENY spellings into REJECT.
func (r DecideRequest) NormalizedDecision() string {
	switch strings.ToUpper(strings.TrimSpace(r.Decision)) {
	case DecisionApprove, "APPROVED":
		return DecisionApprove
	case DecisionReject, "REJECTED", "DENY", "DENIED":
		return DecisionReject
	default:
		return ""
	}
}

type ApprovalStepResponse struct {
	ID         string  `json:"id"`
	Level      int     `json:"level"`
	ApproverID string  `json:"approver_id"`
	Status     string  `json:"status"`
	Remarks    string  `json:"remarks,omitempty"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
}

type MemoAllocationResponse struct {
	CreditID     string  `json:"credit_id"`
	AppliedHours float64 `json:"applied_hours"`
}

type ApplicationResponse struct {
	ID             string                   `json:"id"`
	EmployeeID     string                   `json:"employee_id"`
	RequestedHours float64                  `json:"requested_hours"`
	Reason         string                   `json:"reason,omitempty"`
	DateFrom       *string                  `json:"date_from,omitempty"`
	DateTo         *string                  `json:"date_to,omitempty"`
	Status         string                   `json:"status"`
	DateCompleted  *string                  `json:"date_completed,omitempty"`
	Steps          []ApprovalStepResponse   `json:"steps"`
	Allocations    []MemoAllocationResponse `json:"allocations"`
}
