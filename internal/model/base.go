package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ── PostgreSQL INT[] custom type ──

// IntArray maps a PostgreSQL INT[] column, implementing the GORM
// Scanner/Valuer pair.
type IntArray []int

// Scan parses the {1,2,3} text form PostgreSQL returns into []int.
// Literals without the surrounding braces are rejected.
func (a *IntArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("IntArray.Scan: unsupported type %T", src)
	}
	body, ok := strings.CutPrefix(s, "{")
	if ok {
		body, ok = strings.CutSuffix(body, "}")
	}
	if !ok {
		return fmt.Errorf("IntArray.Scan: malformed array literal %q", s)
	}
	if body == "" {
		*a = IntArray{}
		return nil
	}
	elems := strings.Split(body, ",")
	out := make(IntArray, len(elems))
	for i, e := range elems {
		n, err := strconv.Atoi(strings.TrimSpace(e))
		if err != nil {
			return fmt.Errorf("IntArray.Scan: invalid element %q: %w", e, err)
		}
		out[i] = n
	}
	*a = out
	return nil
}

// Value serializes []int into the PostgreSQL {1,2,3} text form.
func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, n := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte('}')
	return b.String(), nil
}

// BaseModel holds the audit columns every business model embeds.
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel adds soft-delete columns on top of the audit set.
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel adds an optimistic-lock version to the soft-delete set.
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
