package activity

import (
	"context"

	"github.com/b1gw1z/frn-backend/domain"
)

const defaultActivityLimit = 50

type (
	ActivityService interface {
		GetUserActivity(ctx context.Context, userID string, limit int) ([]*domain.ActivityView, error)
	}

	activityService struct {
		activityRepository ActivityRepository
	}
)

func NewActivityService(activityRepository ActivityRepository) ActivityService {
	return &activityService{activityRepository: activityRepository}
}

func (s *activityService) GetUserActivity(ctx context.Context, userID string, limit int) ([]*domain.ActivityView, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	entries, err := s.activityRepository.GetUserActivity(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.ActivityView, 0, len(entries))
	for _, e := range entries {
		views = append(views, &domain.ActivityView{
			ID:        e.ID.String(),
			Action:    e.Action,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		})
	}
	return views, nil
}
