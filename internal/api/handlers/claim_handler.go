package handlers

import (
	"errors"
	"strconv"

	"github.com/b1gw1z/frn-backend/domain"
	"github.com/b1gw1z/frn-backend/internal/api/presenters"
	"github.com/b1gw1z/frn-backend/pkg/claim"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ClaimHandler interface {
		Claim(c *fiber.Ctx) error
		GetUserClaims(c *fiber.Ctx) error
		GetDonationClaims(c *fiber.Ctx) error
	}

	claimHandler struct {
		claimService claim.ClaimService
		validator    *validator.Validate
	}
)

func NewClaimHandler(claimService claim.ClaimService, validator *validator.Validate) ClaimHandler {
	return &claimHandler{
		claimService: claimService,
		validator:    validator,
	}
}

func (h *claimHandler) Claim(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	req := new(domain.ClaimRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedClaim, err)
	}

	outcome, err := h.claimService.Claim(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, claimErrorStatus(err), domain.MessageFailedClaim, err)
	}

	status := fiber.StatusOK
	if outcome.Result == domain.ClaimResultNotFound {
		status = fiber.StatusNotFound
	}
	return presenters.SuccessResponse(c, outcome, status, domain.MessageSuccessClaim)
}

func (h *claimHandler) GetUserClaims(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	claims, count, err := h.claimService.GetUserClaims(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedClaim, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"claims": claims,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": count,
		},
	}, fiber.StatusOK, domain.MessageSuccessGetClaim)
}

// GetDonationClaims serves the donor's attempt history for one donation.
func (h *claimHandler) GetDonationClaims(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	donationID := c.Params("id")

	claims, err := h.claimService.GetDonationClaims(c.Context(), donationID, userID)
	if err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrDonationNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, domain.ErrUnauthorizedDonationAccess):
			status = fiber.StatusForbidden
		}
		return presenters.ErrorResponse(c, status, domain.MessageFailedClaim, err)
	}

	return presenters.SuccessResponse(c, claims, fiber.StatusOK, domain.MessageSuccessGetClaim)
}

func claimErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrSelfClaim),
		errors.Is(err, domain.ErrParseUUID):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrClaimNotAllowed),
		errors.Is(err, domain.ErrUserNotVerified):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
