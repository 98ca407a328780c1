package activity

import (
	"context"

	"github.com/b1gw1z/frn-backend/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// ActivityRepository is the append-only audit trail of user actions.
	ActivityRepository interface {
		Append(ctx context.Context, userID uuid.UUID, action, detail string) error
		GetUserActivity(ctx context.Context, userID string, limit int) ([]*entities.ActivityLog, error)
	}

	activityRepository struct {
		db *gorm.DB
	}
)

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, userID uuid.UUID, action, detail string) error {
	entry := &entities.ActivityLog{
		ID:     uuid.New(),
		UserID: userID,
		Action: action,
		Detail: detail,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) GetUserActivity(ctx context.Context, userID string, limit int) ([]*entities.ActivityLog, error) {
	var entries []*entities.ActivityLog
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
