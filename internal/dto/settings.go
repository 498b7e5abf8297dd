package dto

// ── Settings DTOs ──

// UpdateSettingsRequest patches the caller's calendar settings; nil
// fields stay unchanged.
type UpdateSettingsRequest struct {
	MaxColumns      *int    `json:"max_columns"      binding:"omitempty,min=1,max=8"`
	WeekStartsOn    *int    `json:"week_starts_on"   binding:"omitempty,min=0,max=6"`
	DefaultTimezone *string `json:"default_timezone" binding:"omitempty"`
}

// SettingsResponse is the calendar settings view.
type SettingsResponse struct {
	MaxColumns      int    `json:"max_columns"`
	WeekStartsOn    int    `json:"week_starts_on"`
	DefaultTimezone string `json:"default_timezone"`
	UpdatedAt       string `json:"updated_at"`
}
