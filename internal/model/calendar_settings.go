package model

// CalendarSettings is the per-account display configuration, table
// calendar_settings (one row per user, provisioned on first read).
type CalendarSettings struct {
	SettingsID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"settings_id"`
	UserID          string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	MaxColumns      int    `gorm:"type:smallint;not null;default:4"               json:"max_columns"`    // 1..8
	WeekStartsOn    int    `gorm:"type:smallint;not null;default:0"               json:"week_starts_on"` // 0=Sunday .. 6=Saturday
	DefaultTimezone string `gorm:"type:varchar(64);not null;default:'UTC'"        json:"default_timezone"`
	BaseModel
}

// TableName sets the table name.
func (CalendarSettings) TableName() string { return "calendar_settings" }
