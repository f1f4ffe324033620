package credit

type DurationInput struct {
	Hours   int `json:"hours" binding:"min=0"`
	Minutes int `json:"minutes" binding:"min=0,max=59"`
}

type IssueCreditRequest struct {
	EmployeeIDs   []string      `json:"employee_ids" binding:"required,min=1,dive,uuid"`
	Duration      DurationInput `json:"duration" binding:"required"`
	MemoNo        string        `json:"memo_no" binding:"required"`
	DateApproved  string        `json:"date_approved"`
	AttachmentRef string        `json:"attachment_ref"`
}

type CreditEntryResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	CreditedHours  float64 `json:"credited_hours"`
	UsedHours      float64 `json:"used_hours"`
	ReservedHours  float64 `json:"reserved_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	Status         string  `json:"status"`
	DateCredited   string  `json:"date_credited"`
}

type CreditResponse struct {
	ID             string                `json:"id"`
	MemoNo         string                `json:"memo_no"`
	DateApproved   string                `json:"date_approved"`
	AttachmentRef  string                `json:"attachment_ref,omitempty"`
	Hours          int                   `json:"hours"`
	Minutes        int                   `json:"minutes"`
	TotalHours     float64               `json:"total_hours"`
	Status         string                `json:"status"`
	IssuedBy       string                `json:"issued_by"`
	RolledBackBy   *string               `json:"rolled_back_by,omitempty"`
	DateRolledBack *string               `json:"date_rolled_back,omitempty"`
	Entries        []CreditEntryResponse `json:"entries,omitempty"`
}

type EmployeeCreditSummary struct {
	EmployeeID     string                `json:"employee_id"`
	AvailableHours float64               `json:"available_hours"`
	Entries        []CreditEntryResponse `json:"entries"`
}
