package dto

// ── Activities DTOs ──

// CreateActivityRequest adds a weekly recurring activity to a child.
// Days, clock strings and timezone get their business validation in the
// activity service, which owns the rule invariants.
type CreateActivityRequest struct {
	ChildID    string `json:"child_id"     binding:"required,uuid"`
	Title      string `json:"title"        binding:"required,min=1,max=200"`
	Location   string `json:"location"     binding:"omitempty,max=200"`
	DaysOfWeek []int  `json:"days_of_week" binding:"required"` // 0=Sunday .. 6=Saturday
	StartTime  string `json:"start_time"   binding:"required"` // HH:MM
	EndTime    string `json:"end_time"     binding:"required"` // HH:MM
	Timezone   string `json:"timezone"     binding:"omitempty"`
}

// UpdateActivityRequest patches an activity; nil fields stay unchanged.
type UpdateActivityRequest struct {
	ChildID    *string `json:"child_id"     binding:"omitempty,uuid"`
	Title      *string `json:"title"        binding:"omitempty,min=1,max=200"`
	Location   *string `json:"location"     binding:"omitempty,max=200"`
	DaysOfWeek *[]int  `json:"days_of_week" binding:"omitempty"`
	StartTime  *string `json:"start_time"   binding:"omitempty"`
	EndTime    *string `json:"end_time"     binding:"omitempty"`
	Timezone   *string `json:"timezone"     binding:"omitempty"`
}

// ActivityListRequest filters the activity list.
type ActivityListRequest struct {
	ChildID string `form:"child_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// ActivityResponse is the activity view.
type ActivityResponse struct {
	ID         string `json:"id"`
	ChildID    string `json:"child_id"`
	ChildName  string `json:"child_name,omitempty"`
	ChildColor string `json:"child_color,omitempty"`
	Title      string `json:"title"`
	Location   string `json:"location,omitempty"`
	DaysOfWeek []int  `json:"days_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Timezone   string `json:"timezone"`
	Source     string `json:"source"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ── ICS import ──

// ImportICSRequest names the child receiving the imported activities.
// The .ics payload itself arrives as a multipart file.
type ImportICSRequest struct {
	ChildID string `form:"child_id" binding:"required,uuid"`
}

// ImportICSResponse summarizes an .ics import.
type ImportICSResponse struct {
	ImportedCount int                     `json:"imported_count"`
	Activities    []ImportedActivityEvent `json:"activities"`
}

// ImportedActivityEvent is one weekly rule recovered from the feed.
type ImportedActivityEvent struct {
	Title      string `json:"title"`
	Location   string `json:"location,omitempty"`
	DaysOfWeek []int  `json:"days_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}
