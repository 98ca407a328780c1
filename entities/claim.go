package entities

import (
	"time"

	"github.com/google/uuid"
)

// Claim is the audit record of a resolved claim attempt. Exactly one row per
// donation may carry ResultWon; lost attempts are kept for dispute resolution.
type Claim struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	DonationID  uuid.UUID `gorm:"index" json:"donation_id"`
	RescuerID   uuid.UUID `gorm:"index" json:"rescuer_id"`
	Result      string    `json:"result"` // Won or Lost
	PickupCode  string    `json:"pickup_code,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`

	Donation *Donation `gorm:"foreignKey:DonationID"`
	Rescuer  *User     `gorm:"foreignKey:RescuerID"`
	Timestamp
}

type ActivityLog struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `gorm:"index" json:"user_id"`
	Action string    `json:"action"`
	Detail string    `json:"detail"`

	User *User `gorm:"foreignKey:UserID"`
	Timestamp
}
