package dto

// ── Calendar view requests ──

// DayViewRequest selects one calendar day.
type DayViewRequest struct {
	Date string `form:"date" binding:"required"` // YYYY-MM-DD
}

// WeekViewRequest selects a 7-day window. Start is optional; when empty
// the window anchors on the current week per the caller's settings.
type WeekViewRequest struct {
	Start string `form:"start" binding:"omitempty"` // YYYY-MM-DD
}

// UpcomingRequest asks for the next N occurrences from now.
type UpcomingRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ── Calendar view responses ──

// OccurrenceResponse is one dated instance of a recurring activity.
type OccurrenceResponse struct {
	ID            string `json:"id"`
	ActivityID    string `json:"activity_id"`
	Date          string `json:"date"`            // YYYY-MM-DD
	StartDateTime string `json:"start_date_time"` // RFC 3339
	EndDateTime   string `json:"end_date_time"`
	StartTime     string `json:"start_time"` // HH:MM
	EndTime       string `json:"end_time"`
	StartMinutes  int    `json:"start_minutes"`
	EndMinutes    int    `json:"end_minutes"`
	Title         string `json:"title"`
	Location      string `json:"location,omitempty"`
	ChildName     string `json:"child_name"`
	ChildColor    string `json:"child_color"`
}

// LayoutSegmentResponse is one per-concurrency-stretch geometry slice.
// Width and Left are percentages of the day column.
type LayoutSegmentResponse struct {
	StartMinutes int     `json:"start_minutes"`
	EndMinutes   int     `json:"end_minutes"`
	ColumnIndex  int     `json:"column_index"`
	ColumnCount  int     `json:"column_count"`
	Width        float64 `json:"width"`
	Left         float64 `json:"left"`
}

// LayoutBlockResponse positions one occurrence inside the day column.
type LayoutBlockResponse struct {
	Occurrence OccurrenceResponse      `json:"occurrence"`
	Column     int                     `json:"column"`
	IsOverflow bool                    `json:"is_overflow"`
	Segments   []LayoutSegmentResponse `json:"segments"`
}

// DayViewResponse is the rendered model for one calendar day.
type DayViewResponse struct {
	Date          string                `json:"date"`
	Occurrences   []OccurrenceResponse  `json:"occurrences"`
	Layouts       []LayoutBlockResponse `json:"layouts"`
	OverflowCount int                   `json:"overflow_count"`
	MaxColumns    int                   `json:"max_columns"`
}

// WeekViewResponse is the rendered model for a 7-day window.
type WeekViewResponse struct {
	StartDate  string            `json:"start_date"`
	EndDate    string            `json:"end_date"`
	Days       []DayViewResponse `json:"days"`
	MaxColumns int               `json:"max_columns"`
}

// UpcomingResponse lists the next occurrences in start order.
type UpcomingResponse struct {
	Occurrences []OccurrenceResponse `json:"occurrences"`
}
