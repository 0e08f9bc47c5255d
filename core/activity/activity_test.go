package activity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/activity"
	inmemdb "github.com/ilmhub/ilm/storage/database/inmem"
)

// blindRepo never finds an activity, like a toggle racing another one that has not committed yet.
type blindRepo struct {
	activity.Repository
}

func (blindRepo) FindActivity(context.Context, activity.QueryFilter) (activity.Activity, error) {
	return activity.Activity{}, activity.ErrNotFound
}

func TestService_ToggleBookmark(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewActivityRepository(inmemdb.NewDB())
	svc := activity.NewService(repo)

	on, err := svc.ToggleBookmark(ctx, "u1", activity.TargetHadith, "h1")
	require.NoError(t, err)
	assert.True(t, on)

	on, err = svc.ToggleBookmark(ctx, "u1", activity.TargetHadith, "h1")
	require.NoError(t, err)
	assert.False(t, on)

	_, err = svc.ToggleBookmark(ctx, "u1", "planet", "h1")
	assert.Error(t, err)
}

func TestService_ToggleBookmark_concurrentAdd(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewActivityRepository(inmemdb.NewDB())
	racing := activity.NewService(blindRepo{Repository: repo})

	for i := 0; i < 2; i++ {
		on, err := racing.ToggleBookmark(ctx, "u1", activity.TargetContent, "c1")
		require.NoError(t, err)
		assert.True(t, on)
	}

	acts, err := activity.NewService(repo).ListByUser(ctx, "u1", activity.QueryFilter{ActivityType: activity.TypeBookmark}, core.NewPage(10, 0))
	require.NoError(t, err)
	assert.Len(t, acts, 1)

	_, err = repo.CreateActivity(ctx, activity.Activity{UserID: "u1", ActivityType: activity.TypeBookmark, TargetType: activity.TargetContent, TargetID: "c1"})
	assert.Equal(t, activity.ErrAlreadyBookmarked, err)
	_, err = repo.CreateActivity(ctx, activity.Activity{UserID: "u1", ActivityType: activity.TypeView, TargetType: activity.TargetContent, TargetID: "c1"})
	assert.NoError(t, err)
}
