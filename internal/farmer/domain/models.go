package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Farmer is the marketplace profile behind a farmer login. ProfileID is the
// identity provider subject.
type Farmer struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	ProfileID           string       `gorm:"type:text;not null;uniqueIndex" json:"profile_id"`
	PanchayatID         snowflake.ID `gorm:"not null;index" json:"panchayat_id"`
	Name                string       `gorm:"type:text;not null" json:"name"`
	Phone               string       `gorm:"type:text;not null" json:"phone"`
	PayoutAccountSealed string       `gorm:"type:text" json:"-"`
	PayoutAccountLast4  string       `gorm:"type:text" json:"payout_account_last4,omitempty"`
	CreatedAt           time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null" json:"updated_at"`
}

func (Farmer) TableName() string {
	return "farmers"
}
