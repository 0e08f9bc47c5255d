package content_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/content"
	"github.com/ilmhub/ilm/core/user"
	cachesvc "github.com/ilmhub/ilm/services/cache"
	emailsvc "github.com/ilmhub/ilm/services/email"
	logsvc "github.com/ilmhub/ilm/services/logger"
	inmemdb "github.com/ilmhub/ilm/storage/database/inmem"
	"github.com/ilmhub/ilm/tests"
)

// snapshotRepo serves GetItem from a copy taken earlier, like a request that read the row before another one wrote it.
type snapshotRepo struct {
	content.Repository
	snapshot *content.Item
}

func (repo *snapshotRepo) GetItem(ctx context.Context, id string) (content.Item, error) {
	if repo.snapshot != nil && repo.snapshot.ID == id {
		return *repo.snapshot, nil
	}
	return repo.Repository.GetItem(ctx, id)
}

type contentEnv struct {
	svc     content.Service
	repo    *snapshotRepo
	usrRepo user.Repository
}

func setupContent(t *testing.T) *contentEnv {
	t.Helper()
	conf := testutil.NewConfig()
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	db := inmemdb.NewDB()
	e := &contentEnv{
		repo:    &snapshotRepo{Repository: inmemdb.NewContentRepository(db)},
		usrRepo: inmemdb.NewUserRepository(db),
	}
	e.svc = content.NewService(
		e.repo,
		user.NewService(e.usrRepo),
		activity.NewService(inmemdb.NewActivityRepository(db)),
		emailsvc.NewConsoleServiceMock(conf, logger),
		cachesvc.NewMemoryCache(),
		logger,
	)
	return e
}

func TestService_Update_afterSubmit(t *testing.T) {
	e := setupContent(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.usrRepo, "Author", "author", "author@test.ilm", "", []string{user.RoleAuthor}, true)
	it := testutil.CreateItem(t, e.repo, "Wudu", "fiqh", nil, author, content.StatusDraft)

	stale, err := e.svc.Get(ctx, it.ID, &author)
	require.NoError(t, err)

	_, err = e.svc.Transition(ctx, it.ID, content.ActionSubmit, author, "")
	require.NoError(t, err)

	title := "Wudu, revised"
	_, err = e.svc.Update(ctx, stale, content.UpdateItem{Title: &title}, author)
	assert.Equal(t, core.ErrInvalidTransition, errors.Cause(err))

	stored, err := e.svc.Get(ctx, it.ID, &author)
	require.NoError(t, err)
	assert.Equal(t, content.StatusPendingReview, stored.Status)
	assert.Equal(t, "Wudu", stored.Title)
}

func TestService_Transition_concurrentReviews(t *testing.T) {
	e := setupContent(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.usrRepo, "Author", "author", "author@test.ilm", "", []string{user.RoleAuthor}, true)
	editor1 := testutil.CreateUser(t, e.usrRepo, "Editor 1", "editor1", "", "", []string{user.RoleEditor}, true)
	editor2 := testutil.CreateUser(t, e.usrRepo, "Editor 2", "editor2", "", "", []string{user.RoleEditor}, true)
	it := testutil.CreateItem(t, e.repo, "Salah", "fiqh", nil, author, content.StatusPendingReview)

	pending, err := e.repo.GetItem(ctx, it.ID)
	require.NoError(t, err)

	_, err = e.svc.Transition(ctx, it.ID, content.ActionApprove, editor1, "")
	require.NoError(t, err)

	// the second editor still sees the item as pending
	e.repo.snapshot = &pending
	_, err = e.svc.Transition(ctx, it.ID, content.ActionReject, editor2, "needs sources")
	assert.Equal(t, core.ErrInvalidTransition, errors.Cause(err))
	e.repo.snapshot = nil

	stored, err := e.repo.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, content.StatusPublished, stored.Status)
	assert.Equal(t, editor1.ID, stored.ReviewerID.String)
	assert.Len(t, emailsvc.GetSentMessages(), 1, "only the approval is mailed")
}
