package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/b1gw1z/frn-backend/domain"
	"github.com/b1gw1z/frn-backend/entities"
	"github.com/b1gw1z/frn-backend/internal/utils/storage"
	"github.com/b1gw1z/frn-backend/pkg/activity"
	"github.com/b1gw1z/frn-backend/pkg/clock"
	"github.com/b1gw1z/frn-backend/pkg/spatial"
	"github.com/b1gw1z/frn-backend/pkg/user"
	"github.com/google/uuid"
)

const defaultListLimit = 20

type (
	DonationService interface {
		CreateDonation(ctx context.Context, req domain.CreateDonationRequest, donorID string) (*domain.DonationView, error)
		ListNearbyDonations(ctx context.Context, req domain.NearbyDonationsRequest, viewerID string) ([]*domain.DonationView, error)
		GetDonationByID(ctx context.Context, id string, viewerID string, lat, lng *float64) (*domain.DonationView, error)
		CancelDonation(ctx context.Context, id string, donorID string) error
		GetUserDonations(ctx context.Context, donorID string, page, limit int) ([]*domain.DonationView, int64, error)
	}

	donationService struct {
		donationRepository DonationRepository
		userRepository     user.UserRepository
		activityRepository activity.ActivityRepository
		index              spatial.Index
		s3                 storage.AwsS3
		clock              clock.Clock
	}
)

func NewDonationService(
	donationRepository DonationRepository,
	userRepository user.UserRepository,
	activityRepository activity.ActivityRepository,
	index spatial.Index,
	s3 storage.AwsS3,
	clk clock.Clock,
) DonationService {
	return &donationService{
		donationRepository: donationRepository,
		userRepository:     userRepository,
		activityRepository: activityRepository,
		index:              index,
		s3:                 s3,
		clock:              clk,
	}
}

func (s *donationService) CreateDonation(ctx context.Context, req domain.CreateDonationRequest, donorID string) (*domain.DonationView, error) {
	donor, err := s.userRepository.GetUserByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if donor.Role != domain.RoleDonor {
		return nil, domain.ErrUserNotAllowed
	}
	if !donor.IsVerified {
		return nil, domain.ErrUserNotVerified
	}

	// Coordinate comes from the payload, falling back to the donor's
	// display location.
	var lat, lng float64
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		lat, lng = *req.Latitude, *req.Longitude
	case donor.Latitude != nil && donor.Longitude != nil:
		lat, lng = *donor.Latitude, *donor.Longitude
	default:
		return nil, domain.ErrInvalidCoordinates
	}

	if req.QuantityKg <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.FreshnessMinutes <= 0 {
		return nil, domain.ErrInvalidFreshness
	}

	donationID := uuid.New()
	now := s.clock.Now()
	deadline := now.Add(time.Duration(req.FreshnessMinutes) * time.Minute)

	var imageURL string
	if req.Photo != nil {
		objectKey, err := s.s3.UploadFile(
			fmt.Sprintf("donation-%s", donationID.String()),
			req.Photo,
			"donations",
			storage.AllowImage...,
		)
		if err != nil {
			return nil, err
		}
		imageURL = s.s3.GetPublicLinkKey(objectKey)
	}

	donation := &entities.Donation{
		ID:                donationID,
		DonorID:           donor.ID,
		Description:       req.Description,
		QuantityKg:        req.QuantityKg,
		FoodType:          req.FoodType,
		Latitude:          lat,
		Longitude:         lng,
		Status:            entities.DonationStatusOpen,
		FreshnessDeadline: deadline,
		ImageURL:          imageURL,
	}

	if err := s.donationRepository.CreateDonation(ctx, donation); err != nil {
		return nil, err
	}

	// The donation is already committed; an audit miss must not fail the request.
	_ = s.activityRepository.Append(ctx, donor.ID, "POST_DONATION",
		fmt.Sprintf("Posted %s (%.1fkg)", donation.Description, donation.QuantityKg))

	donation.Donor = donor
	return s.toView(donation, "", nil), nil
}

// ListNearbyDonations answers "open donations near me". With an origin
// (explicit, or the viewer's stored display location) the spatial index
// ranks candidates by distance and the store re-checks each one is still
// Open at read time; without any origin it is a plain newest-first listing.
// Donations past their freshness deadline are filtered even if the reaper
// has not swept them yet.
func (s *donationService) ListNearbyDonations(ctx context.Context, req domain.NearbyDonationsRequest, viewerID string) ([]*domain.DonationView, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	now := s.clock.Now()

	lat, lng := req.Latitude, req.Longitude
	if lat == nil || lng == nil {
		// Fall back to the viewer's display location as the origin.
		if viewerID != "" {
			if viewer, err := s.userRepository.GetUserByID(ctx, viewerID); err == nil &&
				viewer.Latitude != nil && viewer.Longitude != nil {
				lat, lng = viewer.Latitude, viewer.Longitude
			}
		}
	}

	if lat == nil || lng == nil {
		donations, err := s.donationRepository.GetOpenDonations(ctx, limit)
		if err != nil {
			return nil, err
		}
		views := make([]*domain.DonationView, 0, len(donations))
		for _, d := range donations {
			if !d.FreshnessDeadline.After(now) {
				continue
			}
			views = append(views, s.toView(d, viewerID, nil))
		}
		return views, nil
	}

	matches := s.index.Nearest(*lat, *lng, limit, req.RadiusMeters)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}

	// The index may be one in-flight transition stale; the store filters to
	// rows still Open so the list never contains a definitely-non-Open
	// donation.
	donations, err := s.donationRepository.GetOpenDonationsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entities.Donation, len(donations))
	for _, d := range donations {
		byID[d.ID.String()] = d
	}

	views := make([]*domain.DonationView, 0, len(matches))
	for _, m := range matches {
		d, ok := byID[m.ID]
		if !ok {
			continue
		}
		if !d.FreshnessDeadline.After(now) {
			continue
		}
		distance := m.DistanceMeters
		views = append(views, s.toView(d, viewerID, &distance))
	}
	return views, nil
}

func (s *donationService) GetDonationByID(ctx context.Context, id string, viewerID string, lat, lng *float64) (*domain.DonationView, error) {
	donation, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var distance *float64
	if lat != nil && lng != nil {
		d := spatial.Haversine(*lat, *lng, donation.Latitude, donation.Longitude)
		distance = &d
	}
	return s.toView(donation, viewerID, distance), nil
}

func (s *donationService) CancelDonation(ctx context.Context, id string, donorID string) error {
	donation, err := s.donationRepository.GetDonationByID(ctx, id)
	if err != nil {
		return err
	}
	if donation.DonorID.String() != donorID {
		return domain.ErrUnauthorizedDonationAccess
	}

	err = s.donationRepository.TransitionStatus(ctx, id, entities.DonationStatusOpen, entities.DonationStatusCancelled)
	if errors.Is(err, domain.ErrStaleState) {
		return domain.ErrDonationNotOpen
	}
	if err != nil {
		return err
	}

	_ = s.activityRepository.Append(ctx, donation.DonorID, "CANCEL_DONATION",
		fmt.Sprintf("Cancelled %s", donation.Description))
	return nil
}

func (s *donationService) GetUserDonations(ctx context.Context, donorID string, page, limit int) ([]*domain.DonationView, int64, error) {
	donations, count, err := s.donationRepository.GetUserDonations(ctx, donorID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*domain.DonationView, 0, len(donations))
	for _, d := range donations {
		views = append(views, s.toView(d, donorID, nil))
	}
	return views, count, nil
}

func (s *donationService) toView(d *entities.Donation, viewerID string, distance *float64) *domain.DonationView {
	view := &domain.DonationView{
		ID:                d.ID.String(),
		DonorID:           d.DonorID.String(),
		Description:       d.Description,
		QuantityKg:        d.QuantityKg,
		FoodType:          d.FoodType,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		Status:            d.Status,
		FreshnessDeadline: d.FreshnessDeadline,
		CreatedAt:         d.CreatedAt,
		DistanceMeters:    distance,
		ImageURL:          d.ImageURL,
		ClaimedAt:         d.ClaimedAt,
	}
	if d.Donor != nil {
		view.OrganizationName = d.Donor.OrganizationName
	}
	if d.Status == entities.DonationStatusOpen &&
		!d.FreshnessDeadline.After(s.clock.Now()) {
		// Not yet swept by the reaper, but no longer claimable.
		view.Status = entities.DonationStatusExpired
	}
	view.CanClaim = view.Status == entities.DonationStatusOpen &&
		viewerID != "" &&
		viewerID != view.DonorID
	return view
}
