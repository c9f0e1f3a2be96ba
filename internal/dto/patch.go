package dto

// EditRequest is one proposed file change: current content and the content
// the file should have after the patch.
type EditRequest struct {
	Path     string `json:"path" binding:"required"`
	Original string `json:"original"`
	Modified string `json:"modified"`
}

// GeneratePatchRequest creates a pending patch from proposed edits.
type GeneratePatchRequest struct {
	ChangeID    string        `json:"changeId" binding:"required"`
	Description string        `json:"description"`
	Edits       []EditRequest `json:"edits" binding:"required"`
}

// PatchSafetyResponse is the dry-run check result.
type PatchSafetyResponse struct {
	ChangeID string `json:"changeId"`
	Safe     bool   `json:"safe"`
}
