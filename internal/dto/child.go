package dto

// ── Children DTOs ──

// CreateChildRequest adds a child profile to the caller's account.
type CreateChildRequest struct {
	Name      string  `json:"name"       binding:"required,min=1,max=100"`
	Color     string  `json:"color"      binding:"omitempty"` // #RRGGBB, defaulted when empty
	BirthDate *string `json:"birth_date" binding:"omitempty"` // YYYY-MM-DD
}

// UpdateChildRequest patches a child profile; nil fields stay unchanged.
type UpdateChildRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=1,max=100"`
	Color     *string `json:"color"      binding:"omitempty"`
	BirthDate *string `json:"birth_date" binding:"omitempty"`
}

// ChildResponse is the child profile view.
type ChildResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	BirthDate     string `json:"birth_date,omitempty"`
	ActivityCount int    `json:"activity_count,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}
