package domain

import "errors"

// Claim outcomes. Won and Lost are race results; AlreadyTerminal means the
// donation had expired or been cancelled before the attempt; NotFound means
// the donation id is unknown.
const (
	ClaimResultWon             = "Won"
	ClaimResultLost            = "Lost"
	ClaimResultNotFound        = "NotFound"
	ClaimResultAlreadyTerminal = "AlreadyTerminal"
)

var (
	MessageSuccessClaim    = "claim resolved"
	MessageFailedClaim     = "failed to process claim"
	MessageSuccessGetClaim = "claims retrieved successfully"

	ErrSelfClaim       = errors.New("donors cannot claim their own donation")
	ErrClaimNotAllowed = errors.New("only rescuers can claim donations")
)

type (
	ClaimRequest struct {
		DonationID string `json:"donation_id" validate:"required,uuid"`
	}

	ClaimOutcome struct {
		DonationID string `json:"donation_id"`
		Result     string `json:"result"`
		PickupCode string `json:"pickup_code,omitempty"`
	}

	ClaimView struct {
		ID          string `json:"id"`
		DonationID  string `json:"donation_id"`
		RescuerID   string `json:"rescuer_id"`
		Result      string `json:"result"`
		PickupCode  string `json:"pickup_code,omitempty"`
		AttemptedAt string `json:"attempted_at"`
	}
)
