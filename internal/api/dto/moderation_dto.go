package dto

// BulkModerationRequest payload for bulk approve/reject.
type BulkModerationRequest struct {
	IDs []string `json:"ids" validate:"required,max=500"`
}

// BulkModerationResponse reports how many entries changed status.
type BulkModerationResponse struct {
	Changed int `json:"changed"`
}
