package model

// Activity is a weekly recurring activity attached to one child,
// table activities. Clock columns hold "HH:MM" strings so they
// round-trip unchanged into the occurrence generator.
type Activity struct {
	ActivityID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	UserID     string   `gorm:"type:uuid;not null"                             json:"user_id"`
	ChildID    string   `gorm:"type:uuid;not null"                             json:"child_id"`
	Title      string   `gorm:"type:varchar(200);not null"                     json:"title"`
	Location   string   `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	DaysOfWeek IntArray `gorm:"type:int[];not null"                            json:"days_of_week"` // 0=Sunday .. 6=Saturday
	StartTime  string   `gorm:"type:varchar(5);not null"                       json:"start_time"`   // HH:MM
	EndTime    string   `gorm:"type:varchar(5);not null"                       json:"end_time"`     // HH:MM
	Timezone   string   `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone"`
	Source     string   `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // manual | ics
	VersionedModel

	// associations
	User  *User  `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
	Child *Child `gorm:"foreignKey:ChildID;references:ChildID" json:"child,omitempty"`
}

// TableName sets the table name.
func (Activity) TableName() string { return "activities" }

// ActivitySource values.
const (
	ActivitySourceManual = "manual"
	ActivitySourceICS    = "ics"
)
