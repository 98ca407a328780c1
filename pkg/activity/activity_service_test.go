package activity

import (
	"context"
	"testing"

	"github.com/b1gw1z/frn-backend/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivityRepo struct {
	entries   []*entities.ActivityLog
	lastLimit int
}

func (r *fakeActivityRepo) Append(_ context.Context, userID uuid.UUID, action, detail string) error {
	r.entries = append(r.entries, &entities.ActivityLog{
		ID:     uuid.New(),
		UserID: userID,
		Action: action,
		Detail: detail,
	})
	return nil
}

func (r *fakeActivityRepo) GetUserActivity(_ context.Context, userID string, limit int) ([]*entities.ActivityLog, error) {
	r.lastLimit = limit
	var out []*entities.ActivityLog
	for _, e := range r.entries {
		if e.UserID.String() == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestGetUserActivity(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo)

	userID := uuid.New()
	require.NoError(t, repo.Append(context.Background(), userID, "POST_DONATION", "Posted Rice (8.0kg)"))
	require.NoError(t, repo.Append(context.Background(), userID, "CANCEL_DONATION", "Cancelled Rice"))
	require.NoError(t, repo.Append(context.Background(), uuid.New(), "CLAIM_ITEM", "someone else"))

	views, err := svc.GetUserActivity(context.Background(), userID.String(), 0)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "POST_DONATION", views[0].Action)
	assert.Equal(t, "CANCEL_DONATION", views[1].Action)

	// A non-positive limit falls back to the default.
	assert.Equal(t, defaultActivityLimit, repo.lastLimit)
}
