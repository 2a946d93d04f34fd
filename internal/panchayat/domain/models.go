package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Panchayat is the local administrative unit farmers and purchases belong to.
type Panchayat struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Code      string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	District  string       `gorm:"type:text" json:"district,omitempty"`
	State     string       `gorm:"type:text" json:"state,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Panchayat) TableName() string {
	return "panchayats"
}
