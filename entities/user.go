package entities

import (
	"time"

	"github.com/google/uuid"
)

type Timestamp struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Username           string    `gorm:"uniqueIndex" json:"username"`
	Email              string    `gorm:"uniqueIndex" json:"email"`
	Password           string    `json:"-"`
	Role               string    `json:"role"` // donor or rescuer
	OrganizationName   string    `json:"organization_name"`
	RegistrationNumber string    `gorm:"uniqueIndex" json:"registration_number"`
	BusinessType       string    `json:"business_type"` // e.g. Restaurant, NGO
	IsVerified         bool      `json:"is_verified"`
	Latitude           *float64  `json:"latitude,omitempty"`
	Longitude          *float64  `json:"longitude,omitempty"`

	Donations []*Donation `gorm:"foreignKey:DonorID"`
	Claims    []*Claim    `gorm:"foreignKey:RescuerID"`
	Timestamp
}
