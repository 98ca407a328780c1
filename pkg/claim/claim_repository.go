package claim

import (
	"context"

	"github.com/b1gw1z/frn-backend/entities"
	"gorm.io/gorm"
)

type (
	// ClaimRepository stores the audit trail of resolved claim attempts.
	ClaimRepository interface {
		CreateClaim(ctx context.Context, claim *entities.Claim) error
		GetDonationClaims(ctx context.Context, donationID string) ([]*entities.Claim, error)
		GetUserClaims(ctx context.Context, rescuerID string, page, limit int) ([]*entities.Claim, int64, error)
	}

	claimRepository struct {
		db *gorm.DB
	}
)

func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) CreateClaim(ctx context.Context, claim *entities.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *claimRepository) GetDonationClaims(ctx context.Context, donationID string) ([]*entities.Claim, error) {
	var claims []*entities.Claim
	if err := r.db.WithContext(ctx).
		Where("donation_id = ?", donationID).
		Order("attempted_at ASC").
		Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) GetUserClaims(ctx context.Context, rescuerID string, page, limit int) ([]*entities.Claim, int64, error) {
	var claims []*entities.Claim
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.Claim{}).
		Where("rescuer_id = ?", rescuerID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Donation").
		Where("rescuer_id = ?", rescuerID).
		Order("attempted_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&claims).Error; err != nil {
		return nil, 0, err
	}

	return claims, count, nil
}
