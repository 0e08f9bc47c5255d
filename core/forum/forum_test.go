package forum_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmhub/ilm/core/forum"
	"github.com/ilmhub/ilm/core/user"
	inmemdb "github.com/ilmhub/ilm/storage/database/inmem"
)

// hookedRepo runs beforeAdd right before an answer is stored, i.e. after the service accepted it.
type hookedRepo struct {
	forum.Repository
	beforeAdd func()
}

func (repo *hookedRepo) AddAnswer(ctx context.Context, a forum.Answer) (forum.Answer, error) {
	if repo.beforeAdd != nil {
		repo.beforeAdd()
	}
	return repo.Repository.AddAnswer(ctx, a)
}

var (
	asker   = user.User{ID: "asker", Roles: []string{user.RoleMember}}
	scholar = user.User{ID: "scholar", Roles: []string{user.RoleScholar}}
)

func ask(t *testing.T, svc forum.Service) forum.Question {
	t.Helper()
	q, err := svc.Ask(context.Background(), forum.NewQuestion{Title: "Zakat on gold", Body: "What is the nisab?"}, asker)
	require.NoError(t, err)
	return q
}

func TestService_Answer_closedMeanwhile(t *testing.T) {
	ctx := context.Background()
	repo := &hookedRepo{Repository: inmemdb.NewForumRepository(inmemdb.NewDB())}
	svc := forum.NewService(repo)
	q := ask(t, svc)

	repo.beforeAdd = func() {
		_, err := svc.Close(ctx, q.ID, asker)
		require.NoError(t, err)
	}
	_, err := svc.Answer(ctx, q.ID, forum.NewAnswer{Body: "85 grams"}, scholar)
	assert.Equal(t, forum.ErrClosed, err)

	got, err := svc.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StatusClosed, got.Status)
	assert.Zero(t, got.AnswersCount)
	assert.Empty(t, got.Answers)

	_, err = svc.Close(ctx, q.ID, asker)
	assert.Equal(t, forum.ErrClosed, err)
}

func TestService_Answer_concurrent(t *testing.T) {
	ctx := context.Background()
	svc := forum.NewService(inmemdb.NewForumRepository(inmemdb.NewDB()))
	q := ask(t, svc)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Answer(ctx, q.ID, forum.NewAnswer{Body: "85 grams"}, scholar)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StatusAnswered, got.Status)
	assert.Equal(t, n, got.AnswersCount)
	assert.Len(t, got.Answers, n)

	_, err = svc.Answer(ctx, "missing", forum.NewAnswer{Body: "x"}, scholar)
	assert.Equal(t, forum.ErrNotFound, err)
	_, err = svc.Answer(ctx, q.ID, forum.NewAnswer{Body: "x"}, asker)
	assert.Error(t, err)
}
