package handlers

import (
	"errors"
	"strconv"

	"github.com/b1gw1z/frn-backend/domain"
	"github.com/b1gw1z/frn-backend/internal/api/presenters"
	"github.com/b1gw1z/frn-backend/pkg/donation"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	DonationHandler interface {
		CreateDonation(c *fiber.Ctx) error
		ListNearbyDonations(c *fiber.Ctx) error
		GetDonationByID(c *fiber.Ctx) error
		CancelDonation(c *fiber.Ctx) error
		GetUserDonations(c *fiber.Ctx) error
	}

	donationHandler struct {
		donationService donation.DonationService
		validator       *validator.Validate
	}
)

func NewDonationHandler(donationService donation.DonationService, validator *validator.Validate) DonationHandler {
	return &donationHandler{
		donationService: donationService,
		validator:       validator,
	}
}

func (h *donationHandler) CreateDonation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	req := new(domain.CreateDonationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	// Photo is optional multipart
	req.Photo, _ = c.FormFile("photo")

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateDonation, err)
	}

	created, err := h.donationService.CreateDonation(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, donationErrorStatus(err), domain.MessageFailedCreateDonation, err)
	}

	return presenters.SuccessResponse(c, created, fiber.StatusCreated, domain.MessageSuccessCreateDonation)
}

func (h *donationHandler) ListNearbyDonations(c *fiber.Ctx) error {
	req := domain.NearbyDonationsRequest{}

	if latStr := c.Query("lat"); latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetNearby, domain.ErrInvalidCoordinates)
		}
		req.Latitude = &lat
	}
	if lngStr := c.Query("lng"); lngStr != "" {
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetNearby, domain.ErrInvalidCoordinates)
		}
		req.Longitude = &lng
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetNearby, domain.ErrInvalidCoordinates)
	}

	if radius, err := strconv.ParseFloat(c.Query("radius", "0"), 64); err == nil && radius > 0 {
		req.RadiusMeters = radius
	}
	if limit, err := strconv.Atoi(c.Query("limit", "20")); err == nil && limit > 0 {
		req.Limit = limit
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetNearby, err)
	}

	viewerID, _ := c.Locals("user_id").(string)

	donations, err := h.donationService.ListNearbyDonations(c.Context(), req, viewerID)
	if err != nil {
		return presenters.ErrorResponse(c, donationErrorStatus(err), domain.MessageFailedGetNearby, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"donations": donations,
	}, fiber.StatusOK, domain.MessageSuccessGetNearby)
}

func (h *donationHandler) GetDonationByID(c *fiber.Ctx) error {
	donationID := c.Params("id")
	if donationID == "" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetDonations, domain.ErrDonationNotFound)
	}

	var lat, lng *float64
	if latStr, lngStr := c.Query("lat"), c.Query("lng"); latStr != "" && lngStr != "" {
		if la, err := strconv.ParseFloat(latStr, 64); err == nil {
			if ln, err := strconv.ParseFloat(lngStr, 64); err == nil {
				lat, lng = &la, &ln
			}
		}
	}

	viewerID, _ := c.Locals("user_id").(string)

	view, err := h.donationService.GetDonationByID(c.Context(), donationID, viewerID, lat, lng)
	if err != nil {
		return presenters.ErrorResponse(c, donationErrorStatus(err), domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, view, fiber.StatusOK, domain.MessageSuccessGetDonation)
}

func (h *donationHandler) CancelDonation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	donationID := c.Params("id")

	if err := h.donationService.CancelDonation(c.Context(), donationID, userID); err != nil {
		return presenters.ErrorResponse(c, donationErrorStatus(err), domain.MessageFailedCancelDonation, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessCancelDonation)
}

func (h *donationHandler) GetUserDonations(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	donations, count, err := h.donationService.GetUserDonations(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, donationErrorStatus(err), domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"donations": donations,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func donationErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrDonationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorizedDonationAccess),
		errors.Is(err, domain.ErrUserNotAllowed),
		errors.Is(err, domain.ErrUserNotVerified):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidFreshness),
		errors.Is(err, domain.ErrDonationNotOpen):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
