package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessCreateDonation  = "donation created successfully"
	MessageSuccessGetDonations    = "donations retrieved successfully"
	MessageSuccessGetDonation     = "donation retrieved successfully"
	MessageSuccessCancelDonation  = "donation cancelled successfully"
	MessageSuccessGetNearby       = "nearby donations retrieved successfully"
	MessageFailedCreateDonation   = "failed to create donation"
	MessageFailedGetDonations     = "failed to retrieve donations"
	MessageFailedCancelDonation   = "failed to cancel donation"
	MessageFailedGetNearby        = "failed to retrieve nearby donations"
	MessageFailedStorageError     = "storage unavailable"
	MessageNoNearbyDonationsFound = "no open donations found nearby"

	ErrDonationNotFound           = errors.New("donation not found")
	ErrDonationNotOpen            = errors.New("donation is no longer open")
	ErrStaleState                 = errors.New("donation state changed concurrently")
	ErrInvalidCoordinates         = errors.New("invalid coordinates")
	ErrInvalidQuantity            = errors.New("quantity must be positive")
	ErrInvalidFreshness           = errors.New("freshness window must be positive")
	ErrUnauthorizedDonationAccess = errors.New("unauthorized access to donation")
	ErrUserNotVerified            = errors.New("account not verified")
)

type (
	CreateDonationRequest struct {
		Description      string                `json:"description" validate:"required"`
		QuantityKg       float64               `json:"quantity" validate:"required,gt=0"`
		FoodType         string                `json:"food_type" validate:"omitempty,oneof=Cooked Raw Packaged"`
		Latitude         *float64              `json:"lat" validate:"omitempty,latitude"`
		Longitude        *float64              `json:"lng" validate:"omitempty,longitude"`
		FreshnessMinutes int                   `json:"freshness_minutes" validate:"required,gt=0"`
		Photo            *multipart.FileHeader `json:"-" form:"photo"`
	}

	NearbyDonationsRequest struct {
		Latitude     *float64 `validate:"omitempty,latitude"`
		Longitude    *float64 `validate:"omitempty,longitude"`
		RadiusMeters float64  `validate:"omitempty,gt=0"`
		Limit        int      `validate:"omitempty,gt=0,max=100"`
	}

	// DonationView is the listing/detail projection returned to rescuers.
	// DistanceMeters is set only when the query carried an origin.
	DonationView struct {
		ID                string     `json:"id"`
		DonorID           string     `json:"donor_id"`
		OrganizationName  string     `json:"organization_name,omitempty"`
		Description       string     `json:"description"`
		QuantityKg        float64    `json:"quantity_kg"`
		FoodType          string     `json:"food_type,omitempty"`
		Latitude          float64    `json:"lat"`
		Longitude         float64    `json:"lng"`
		Status            string     `json:"status"`
		FreshnessDeadline time.Time  `json:"freshness_deadline"`
		CreatedAt         time.Time  `json:"created_at"`
		DistanceMeters    *float64   `json:"distance_meters,omitempty"`
		ImageURL          string     `json:"image_url,omitempty"`
		CanClaim          bool       `json:"can_claim"`
		ClaimedAt         *time.Time `json:"claimed_at,omitempty"`
	}
)
