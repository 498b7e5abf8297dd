package model

import "time"

// Child is a kid profile under a parent account, table children.
// Color is the display hex used to tint that child's calendar blocks.
type Child struct {
	ChildID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"child_id"`
	UserID    string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Name      string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Color     string     `gorm:"type:varchar(7);not null;default:'#3B82F6'"     json:"color"` // #RRGGBB
	BirthDate *time.Time `gorm:"type:date"                                      json:"birth_date,omitempty"`
	VersionedModel

	// associations
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName sets the table name.
func (Child) TableName() string { return "children" }
