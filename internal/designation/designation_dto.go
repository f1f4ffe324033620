package designation

type UpsertDesignationRequest struct {
	Name             string  `json:"name" binding:"required"`
	ProvincialOffice string  `json:"provincial_office"`
	Level1ApproverID *string `json:"level1_approver_id" binding:"omitempty,uuid"`
	Level2ApproverID *string `json:"level2_approver_id" binding:"omitempty,uuid"`
	Level3ApproverID *string `json:"level3_approver_id" binding:"omitempty,uuid"`
}

type DesignationResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	ProvincialOffice string  `json:"provincial_office,omitempty"`
	Level1ApproverID *string `json:"level1_approver_id,omitempty"`
	Level2ApproverID *string `json:"level2_approver_id,omitempty"`
	Level3ApproverID *string `json:"level3_approver_id,omitempty"`
}
