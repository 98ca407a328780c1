package claim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/b1gw1z/frn-backend/domain"
	"github.com/b1gw1z/frn-backend/entities"
	"github.com/b1gw1z/frn-backend/pkg/activity"
	"github.com/b1gw1z/frn-backend/pkg/clock"
	"github.com/b1gw1z/frn-backend/pkg/donation"
	"github.com/b1gw1z/frn-backend/pkg/user"
	"github.com/google/uuid"
)

// MailSender delivers the claim notification to the donor. A nil sender
// disables notifications.
type MailSender func(toEmail, subject, body string) error

type (
	// ClaimService coordinates competing claim attempts. Attempts on the
	// same donation serialize on a per-donation mutex and resolve through
	// the store's conditional Open -> Claimed transition, so at most one
	// caller ever observes Won.
	ClaimService interface {
		Claim(ctx context.Context, req domain.ClaimRequest, rescuerID string) (*domain.ClaimOutcome, error)
		GetUserClaims(ctx context.Context, rescuerID string, page, limit int) ([]*domain.ClaimView, int64, error)
		GetDonationClaims(ctx context.Context, donationID, requesterID string) ([]*domain.ClaimView, error)
	}

	claimService struct {
		donationRepository donation.DonationRepository
		claimRepository    ClaimRepository
		userRepository     user.UserRepository
		activityRepository activity.ActivityRepository
		clock              clock.Clock
		sendMail           MailSender
		locks              *donationLocks
	}
)

func NewClaimService(
	donationRepository donation.DonationRepository,
	claimRepository ClaimRepository,
	userRepository user.UserRepository,
	activityRepository activity.ActivityRepository,
	clk clock.Clock,
	sendMail MailSender,
) ClaimService {
	return &claimService{
		donationRepository: donationRepository,
		claimRepository:    claimRepository,
		userRepository:     userRepository,
		activityRepository: activityRepository,
		clock:              clk,
		sendMail:           sendMail,
		locks:              newDonationLocks(),
	}
}

func (s *claimService) Claim(ctx context.Context, req domain.ClaimRequest, rescuerID string) (*domain.ClaimOutcome, error) {
	rescuerUUID, err := uuid.Parse(rescuerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	target, err := s.donationRepository.GetDonationByID(ctx, req.DonationID)
	if err != nil {
		if errors.Is(err, domain.ErrDonationNotFound) {
			return &domain.ClaimOutcome{DonationID: req.DonationID, Result: domain.ClaimResultNotFound}, nil
		}
		return nil, err
	}

	// Self-claims are a caller mistake, not a race: reject before taking
	// the serialization point so the state is never read under contention.
	if target.DonorID == rescuerUUID {
		return nil, domain.ErrSelfClaim
	}

	rescuer, err := s.userRepository.GetUserByID(ctx, rescuerID)
	if err != nil {
		return nil, err
	}
	if rescuer.Role != domain.RoleRescuer {
		return nil, domain.ErrClaimNotAllowed
	}
	if !rescuer.IsVerified {
		return nil, domain.ErrUserNotVerified
	}

	s.locks.lock(req.DonationID)
	defer s.locks.unlock(req.DonationID)

	return s.resolve(ctx, req.DonationID, target, rescuer)
}

// resolve runs under the per-donation lock. The critical section is one read
// plus one conditional write; once the conditional update has been issued the
// outcome is committed and returned regardless of the caller still waiting.
func (s *claimService) resolve(ctx context.Context, donationID string, target *entities.Donation, rescuer *entities.User) (*domain.ClaimOutcome, error) {
	current, err := s.donationRepository.GetDonationByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, domain.ErrDonationNotFound) {
			return &domain.ClaimOutcome{DonationID: donationID, Result: domain.ClaimResultNotFound}, nil
		}
		return nil, err
	}

	now := s.clock.Now()

	if current.Status == entities.DonationStatusClaimed {
		return s.lost(ctx, current, rescuer, now)
	}
	if entities.TerminalDonationStatus(current.Status) {
		return &domain.ClaimOutcome{DonationID: donationID, Result: domain.ClaimResultAlreadyTerminal}, nil
	}

	// Past-deadline donations the reaper has not swept yet are treated as
	// terminal rather than handing out food that is no longer safe.
	if !current.FreshnessDeadline.After(now) {
		return &domain.ClaimOutcome{DonationID: donationID, Result: domain.ClaimResultAlreadyTerminal}, nil
	}

	err = s.donationRepository.ClaimDonation(ctx, donationID, rescuer.ID, now)
	if errors.Is(err, domain.ErrStaleState) {
		// Another transition slipped in between the read and the write.
		refreshed, rerr := s.donationRepository.GetDonationByID(ctx, donationID)
		if rerr != nil {
			return nil, rerr
		}
		if refreshed.Status == entities.DonationStatusClaimed {
			return s.lost(ctx, refreshed, rescuer, now)
		}
		return &domain.ClaimOutcome{DonationID: donationID, Result: domain.ClaimResultAlreadyTerminal}, nil
	}
	if err != nil {
		return nil, err
	}

	pickupCode := newPickupCode()
	record := &entities.Claim{
		ID:          uuid.New(),
		DonationID:  current.ID,
		RescuerID:   rescuer.ID,
		Result:      domain.ClaimResultWon,
		PickupCode:  pickupCode,
		AttemptedAt: now,
	}
	if err := s.claimRepository.CreateClaim(ctx, record); err != nil {
		return nil, err
	}

	_ = s.activityRepository.Append(ctx, rescuer.ID, "CLAIM_ITEM",
		fmt.Sprintf("Claimed %.1fkg of %s", current.QuantityKg, current.Description))

	s.notifyDonor(current, rescuer, pickupCode)

	return &domain.ClaimOutcome{
		DonationID: donationID,
		Result:     domain.ClaimResultWon,
		PickupCode: pickupCode,
	}, nil
}

func (s *claimService) lost(ctx context.Context, current *entities.Donation, rescuer *entities.User, now time.Time) (*domain.ClaimOutcome, error) {
	record := &entities.Claim{
		ID:          uuid.New(),
		DonationID:  current.ID,
		RescuerID:   rescuer.ID,
		Result:      domain.ClaimResultLost,
		AttemptedAt: now,
	}
	if err := s.claimRepository.CreateClaim(ctx, record); err != nil {
		return nil, err
	}
	return &domain.ClaimOutcome{DonationID: current.ID.String(), Result: domain.ClaimResultLost}, nil
}

func (s *claimService) notifyDonor(current *entities.Donation, rescuer *entities.User, pickupCode string) {
	if s.sendMail == nil || current.Donor == nil || current.Donor.Email == "" {
		return
	}
	donor := current.Donor
	body := fmt.Sprintf(
		"Hello %s,\n\n%s just claimed %.1fkg of your %s.\n\nPickup Code: %s\n",
		donor.OrganizationName,
		rescuer.OrganizationName,
		current.QuantityKg,
		current.Description,
		pickupCode,
	)
	// The claim is already committed; a mail failure only gets logged.
	if err := s.sendMail(donor.Email, "Someone claimed your food!", body); err != nil {
		log.Printf("claim notification to %s failed: %v", donor.Email, err)
	}
}

func (s *claimService) GetUserClaims(ctx context.Context, rescuerID string, page, limit int) ([]*domain.ClaimView, int64, error) {
	claims, count, err := s.claimRepository.GetUserClaims(ctx, rescuerID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toClaimViews(claims), count, nil
}

// GetDonationClaims returns the attempt history for one donation, oldest
// first. Only the donor may read it; the pickup code it carries is what the
// donor checks at handoff and what settles who actually won a contended
// donation.
func (s *claimService) GetDonationClaims(ctx context.Context, donationID, requesterID string) ([]*domain.ClaimView, error) {
	target, err := s.donationRepository.GetDonationByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if target.DonorID.String() != requesterID {
		return nil, domain.ErrUnauthorizedDonationAccess
	}

	claims, err := s.claimRepository.GetDonationClaims(ctx, donationID)
	if err != nil {
		return nil, err
	}
	return toClaimViews(claims), nil
}

func toClaimViews(claims []*entities.Claim) []*domain.ClaimView {
	views := make([]*domain.ClaimView, 0, len(claims))
	for _, c := range claims {
		views = append(views, &domain.ClaimView{
			ID:          c.ID.String(),
			DonationID:  c.DonationID.String(),
			RescuerID:   c.RescuerID.String(),
			Result:      c.Result,
			PickupCode:  c.PickupCode,
			AttemptedAt: c.AttemptedAt.Format(time.RFC3339),
		})
	}
	return views
}

func newPickupCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
