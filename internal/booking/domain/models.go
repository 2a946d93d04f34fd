package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PricingMode string

const (
	PricingModeHourly PricingMode = "hourly"
	PricingModeDaily  PricingMode = "daily"
)

func ParsePricingMode(value string) (PricingMode, bool) {
	switch PricingMode(strings.ToLower(strings.TrimSpace(value))) {
	case PricingModeHourly:
		return PricingModeHourly, true
	case PricingModeDaily:
		return PricingModeDaily, true
	default:
		return "", false
	}
}

type MachineType string

const (
	MachineHappySeeder   MachineType = "happy_seeder"
	MachineSuperSeeder   MachineType = "super_seeder"
	MachineBaler         MachineType = "baler"
	MachineMulcher       MachineType = "mulcher"
	MachineRotavator     MachineType = "rotavator"
	MachineZeroTillDrill MachineType = "zero_till_drill"
)

var machineTypes = map[MachineType]struct{}{
	MachineHappySeeder:   {},
	MachineSuperSeeder:   {},
	MachineBaler:         {},
	MachineMulcher:       {},
	MachineRotavator:     {},
	MachineZeroTillDrill: {},
}

func ParseMachineType(value string) (MachineType, bool) {
	machine := MachineType(strings.ToLower(strings.TrimSpace(value)))
	_, ok := machineTypes[machine]
	return machine, ok
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

func ParseBookingStatus(value string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return status, true
	default:
		return "", false
	}
}

// CanTransition reports whether a booking may move from one status to another.
// Completed and cancelled bookings are terminal.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MachineBooking is a farmer's reservation of a residue-management machine.
// Cost and RateApplied are fixed when the booking is created.
type MachineBooking struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	FarmerID      snowflake.ID    `gorm:"not null;index" json:"farmer_id"`
	PanchayatID   snowflake.ID    `gorm:"not null;index" json:"panchayat_id"`
	MachineType   MachineType     `gorm:"type:text;not null" json:"machine_type"`
	PricingMode   PricingMode     `gorm:"type:text;not null" json:"pricing_mode"`
	BookingDate   time.Time       `gorm:"not null" json:"booking_date"`
	Duration      int             `gorm:"not null" json:"duration"`
	DurationHours int             `gorm:"not null" json:"duration_hours"`
	RateApplied   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"rate_applied"`
	Cost          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"cost"`
	Status        BookingStatus   `gorm:"type:text;not null;index" json:"status"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (MachineBooking) TableName() string {
	return "machine_bookings"
}

// Validate checks a row read back from storage.
func (b MachineBooking) Validate() error {
	if _, ok := machineTypes[b.MachineType]; !ok {
		return ErrInvalidMachineType
	}
	if _, ok := ParsePricingMode(string(b.PricingMode)); !ok {
		return ErrInvalidPricingMode
	}
	if _, ok := ParseBookingStatus(string(b.Status)); !ok {
		return ErrInvalidStatus
	}
	if b.DurationHours <= 0 {
		return ErrInvalidDuration
	}
	if b.Cost.IsNegative() {
		return ErrInvalidCost
	}
	return nil
}
