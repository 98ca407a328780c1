package donation

import (
	"context"
	"errors"
	"time"

	"github.com/b1gw1z/frn-backend/domain"
	"github.com/b1gw1z/frn-backend/entities"
	"github.com/b1gw1z/frn-backend/pkg/spatial"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// DonationRepository is the durable donation store. It owns the state
	// machine: every transition out of Open goes through a conditional
	// UPDATE guarded on the current status, and on success the spatial
	// projection is pruned before the call returns, so no reader observes
	// a donation as both discoverable and non-Open.
	DonationRepository interface {
		CreateDonation(ctx context.Context, donation *entities.Donation) error
		GetDonationByID(ctx context.Context, id string) (*entities.Donation, error)
		GetOpenDonations(ctx context.Context, limit int) ([]*entities.Donation, error)
		GetOpenDonationsByIDs(ctx context.Context, ids []string) ([]*entities.Donation, error)
		GetUserDonations(ctx context.Context, donorID string, page, limit int) ([]*entities.Donation, int64, error)
		GetDonationsPastDeadline(ctx context.Context, now time.Time) ([]*entities.Donation, error)
		ClaimDonation(ctx context.Context, id string, rescuerID uuid.UUID, claimedAt time.Time) error
		TransitionStatus(ctx context.Context, id string, from, to string) error
	}

	donationRepository struct {
		db    *gorm.DB
		index spatial.Index
	}
)

func NewDonationRepository(db *gorm.DB, index spatial.Index) DonationRepository {
	return &donationRepository{db: db, index: index}
}

func (r *donationRepository) CreateDonation(ctx context.Context, donation *entities.Donation) error {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return err
	}
	r.index.Insert(donation.ID.String(), donation.Latitude, donation.Longitude)
	return nil
}

func (r *donationRepository) GetDonationByID(ctx context.Context, id string) (*entities.Donation, error) {
	var donation entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("id = ?", id).
		First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) GetOpenDonations(ctx context.Context, limit int) ([]*entities.Donation, error) {
	var donations []*entities.Donation
	query := r.db.WithContext(ctx).
		Preload("Donor").
		Where("status = ?", entities.DonationStatusOpen).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) GetOpenDonationsByIDs(ctx context.Context, ids []string) ([]*entities.Donation, error) {
	if len(ids) == 0 {
		return []*entities.Donation{}, nil
	}
	var donations []*entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("id IN ? AND status = ?", ids, entities.DonationStatusOpen).
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) GetUserDonations(ctx context.Context, donorID string, page, limit int) ([]*entities.Donation, int64, error) {
	var donations []*entities.Donation
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("donor_id = ?", donorID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, count, nil
}

func (r *donationRepository) GetDonationsPastDeadline(ctx context.Context, now time.Time) ([]*entities.Donation, error) {
	var donations []*entities.Donation
	if err := r.db.WithContext(ctx).
		Where("status = ? AND freshness_deadline <= ?", entities.DonationStatusOpen, now).
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

// ClaimDonation performs the conditional Open -> Claimed transition. The WHERE
// clause on the current status is the compare-and-swap the claim protocol
// relies on: zero affected rows means another transition got there first and
// the caller receives ErrStaleState, never a silent no-op.
func (r *donationRepository) ClaimDonation(ctx context.Context, id string, rescuerID uuid.UUID, claimedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ?", id, entities.DonationStatusOpen).
		Updates(map[string]interface{}{
			"status":     entities.DonationStatusClaimed,
			"claimed_by": rescuerID,
			"claimed_at": claimedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleState
	}
	r.index.Remove(id)
	return nil
}

// TransitionStatus applies a conditional transition between two states; used
// for Open -> Expired (reaper) and Open -> Cancelled (donor).
func (r *donationRepository) TransitionStatus(ctx context.Context, id string, from, to string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleState
	}
	if from == entities.DonationStatusOpen {
		r.index.Remove(id)
	}
	return nil
}
