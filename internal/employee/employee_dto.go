package employee

type CreateEmployeeRequest struct {
	FullName      string  `json:"full_name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Role          string  `json:"role" binding:"required,oneof=employee supervisor hr admin"`
	DesignationID *string `json:"designation_id" binding:"omitempty,uuid"`
}

type UpdateEmployeeRequest struct {
	FullName      string  `json:"full_name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Role          string  `json:"role" binding:"required,oneof=employee supervisor hr admin"`
	DesignationID *string `json:"designation_id" binding:"omitempty,uuid"`
}

type EmployeeResponse struct {
	ID            string  `json:"id"`
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	DesignationID *string `json:"designation_id,omitempty"`
	CtoHours      float64 `json:"cto_hours"`
}
