// Package tests exercises the HTTP API end to end against in-memory repositories.
package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/ilmhub/ilm/apps/api/echo"
	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/calendar"
	"github.com/ilmhub/ilm/core/content"
	"github.com/ilmhub/ilm/core/event"
	"github.com/ilmhub/ilm/core/forum"
	"github.com/ilmhub/ilm/core/graph"
	"github.com/ilmhub/ilm/core/group"
	"github.com/ilmhub/ilm/core/hadith"
	"github.com/ilmhub/ilm/core/job"
	"github.com/ilmhub/ilm/core/quiz"
	"github.com/ilmhub/ilm/core/user"
	"github.com/ilmhub/ilm/services/cache"
	"github.com/ilmhub/ilm/services/email"
	"github.com/ilmhub/ilm/services/logger"
	"github.com/ilmhub/ilm/storage/database/inmem"
	"github.com/ilmhub/ilm/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

// env is a running API with direct access to its repositories.
type env struct {
	app  *echoapi.Server
	conf *core.Config

	usrRepo     user.Repository
	contentRepo content.Repository
	hadithRepo  hadith.Repository
	quizRepo    quiz.Repository
	forumRepo   forum.Repository
	eventRepo   event.Repository
	jobRepo     job.Repository
	groupRepo   group.Repository
}

func setup(t *testing.T, confOpts ...func(*core.Config)) *env {
	t.Helper()

	conf := testutil.NewConfig()
	for _, opt := range confOpts {
		opt(conf)
	}
	logger := logsvc.NewNopLogger()
	validate, translator := testutil.NewValidator()
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	db := inmemdb.NewDB()
	e := &env{
		conf:        conf,
		usrRepo:     inmemdb.NewUserRepository(db),
		contentRepo: inmemdb.NewContentRepository(db),
		hadithRepo:  inmemdb.NewHadithRepository(db),
		quizRepo:    inmemdb.NewQuizRepository(db),
		forumRepo:   inmemdb.NewForumRepository(db),
		eventRepo:   inmemdb.NewEventRepository(db),
		jobRepo:     inmemdb.NewJobRepository(db),
		groupRepo:   inmemdb.NewGroupRepository(db),
	}

	cache := cachesvc.NewMemoryCache()
	conv := calendar.Converter{Adjustment: conf.Calendar.Adjustment}
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	usrSvc := user.NewService(e.usrRepo)
	activitySvc := activity.NewService(inmemdb.NewActivityRepository(db))
	contentSvc := content.NewService(e.contentRepo, usrSvc, activitySvc, mailSvc, cache, logger)

	e.app = echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		Calendar:    conv,
		UserSvc:     usrSvc,
		EventSvc:    event.NewService(e.eventRepo, conv),
		JobSvc:      job.NewService(e.jobRepo),
		GroupSvc:    group.NewService(e.groupRepo),
		ContentSvc:  contentSvc,
		ActivitySvc: activitySvc,
		QuizSvc:     quiz.NewService(e.quizRepo, activitySvc),
		HadithSvc:   hadith.NewService(e.hadithRepo, cache, conf.Redis.CacheTTL, validate, logger),
		ForumSvc:    forum.NewService(e.forumRepo),
		GraphSvc:    graph.NewService(contentSvc, cache, conf.Redis.CacheTTL, logger),
	})
	return e
}

func (e *env) createUser(t *testing.T, name, uname string, roles ...string) user.User {
	return testutil.CreateUser(t, e.usrRepo, name, uname, uname+"@test.ilm", "", roles, true)
}

func (e *env) token(t *testing.T, usr user.User) string {
	token, err := e.app.GenerateToken(usr)
	require.NoError(t, err)
	return token
}

// do runs a request against the app. body is marshalled to JSON unless it already is []byte.
func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)
	return rec
}

func (e *env) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	return e.do(t, http.MethodGet, path, token, nil)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	var he httpErr
	decode(t, rec, &he)
	return he.Error
}

// fieldErrors decodes a validation error response.
func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	errs := make(map[string]string)
	decode(t, rec, &errs)
	return errs
}
