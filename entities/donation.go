package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	DonationStatusOpen      = "Open"
	DonationStatusClaimed   = "Claimed"
	DonationStatusExpired   = "Expired"
	DonationStatusCancelled = "Cancelled"
)

// TerminalDonationStatus reports whether a status admits no further transitions.
func TerminalDonationStatus(status string) bool {
	return status == DonationStatusClaimed ||
		status == DonationStatusExpired ||
		status == DonationStatusCancelled
}

type Donation struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	DonorID           uuid.UUID  `gorm:"index" json:"donor_id"`
	Description       string     `json:"description"`
	QuantityKg        float64    `json:"quantity_kg"`
	FoodType          string     `json:"food_type"` // e.g. Cooked, Raw, Packaged
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	Status            string     `gorm:"index" json:"status"` // Open, Claimed, Expired, Cancelled
	FreshnessDeadline time.Time  `gorm:"index" json:"freshness_deadline"`
	ClaimedBy         *uuid.UUID `json:"claimed_by,omitempty"`
	ClaimedAt         *time.Time `json:"claimed_at,omitempty"`
	ImageURL          string     `json:"image_url,omitempty"`

	Donor *User `gorm:"foreignKey:DonorID"`
	Timestamp
}
