package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/hadith"
	"github.com/ilmhub/ilm/core/job"
	"github.com/ilmhub/ilm/core/user"
	cachesvc "github.com/ilmhub/ilm/services/cache"
	logsvc "github.com/ilmhub/ilm/services/logger"
	inmemdb "github.com/ilmhub/ilm/storage/database/inmem"
	"github.com/ilmhub/ilm/tests"
)

type testEnv struct {
	cli        *commandLine
	usrRepo    user.Repository
	hadithRepo hadith.Repository
	jobRepo    job.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := inmemdb.NewDB()
	logger := logsvc.NewNopLogger()
	validate, _ := testutil.NewValidator()

	e := &testEnv{
		usrRepo:    inmemdb.NewUserRepository(db),
		hadithRepo: inmemdb.NewHadithRepository(db),
		jobRepo:    inmemdb.NewJobRepository(db),
	}
	e.cli = &commandLine{
		usrRepo:   e.usrRepo,
		hadithSvc: hadith.NewService(e.hadithRepo, cachesvc.NewMemoryCache(), time.Minute, validate, logger),
		jobSvc:    job.NewService(e.jobRepo),
		validate:  validate,
		logger:    logger,
	}
	return e
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.wantErrStr)
	default:
		assert.NoError(t, err)
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	e := setup(t)

	t.Run("memory engine", func(t *testing.T) {
		err := e.cli.run([]string{"admin", "migrate", "up"})
		assert.EqualError(t, err, "migrations need a postgres database")
	})

	db, err := sqlx.Open("postgres", "postgres://localhost/ilm_test?sslmode=disable")
	require.NoError(t, err)
	defer db.Close()
	e.cli.db = db

	var got []string
	runMigrationsFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		got = append([]string{command}, args...)
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "quran_recitations", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, e.cli.run(args))
		})
	}
	assert.Equal(t, []string{"create", "quran_recitations", "sql"}, got, "arguments are passed through")
}

func Test_commandLine_addUser(t *testing.T) {
	e := setup(t)
	existing := testutil.CreateUser(t, e.usrRepo, "Old", "old", "old@test.ilm", "Fir5t-Pa55word", []string{user.RoleAuthor}, false)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email missing", args: []string{"adduser", "-username", "imam"}, extra: "pwd", wantErr: errHelp},
		{name: "password missing", args: []string{"adduser", "-username", "imam", "-email", "imam@test.ilm"}, wantErr: errHelp},
		{name: "weak password", args: []string{"adduser", "-username", "imam", "-email", "imam@test.ilm"}, extra: "pwd", wantErrStr: "password must contain at least 8 characters"},
		{name: "create", args: []string{"adduser", "-username", "Imam", "-email", "IMAM@test.ilm"}, extra: "Kr1tik@l-Pa55"},
		{name: "create admin", args: []string{"adduser", "-username", "root", "-email", "root@test.ilm", "-admin"}, extra: "Kr1tik@l-Pa55"},
		{name: "update by email", args: []string{"adduser", "-username", "renamed", "-email", existing.Email}, extra: "S3cond-Pa55word"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, e.cli.run(args))
		})
	}

	ctx := context.Background()
	imam, err := e.usrRepo.GetUser(ctx, user.GetFilter{Username: "imam"})
	require.NoError(t, err)
	assert.Equal(t, "imam@test.ilm", imam.Email)
	assert.Equal(t, []string{user.RoleMember}, imam.Roles)
	assert.True(t, imam.IsActive)
	assert.NoError(t, imam.CheckPassword("Kr1tik@l-Pa55"))

	root, err := e.usrRepo.GetUser(ctx, user.GetFilter{Username: "root"})
	require.NoError(t, err)
	assert.Equal(t, user.AllRoles, root.Roles)

	old, err := e.usrRepo.GetUser(ctx, user.GetFilter{ID: existing.ID})
	require.NoError(t, err)
	assert.Equal(t, "old", old.Username, "existing users keep their username")
	assert.Equal(t, []string{user.RoleAuthor}, old.Roles)
	assert.True(t, old.IsActive)
	assert.NoError(t, old.CheckPassword("S3cond-Pa55word"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	e := setup(t)
	usr := testutil.CreateUser(t, e.usrRepo, "User", "awe", "awe@test.ilm", "Fir5t-Pa55word", nil, true)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "awe"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: "Kr1tik@l-Pa55", wantErr: user.ErrNotFound},
		{name: "all numeric", args: []string{"resetpassword", "-username", "awe"}, extra: "1234567890", wantErrStr: "password cannot be entirely numeric"},
		{name: "reset with username", args: []string{"resetpassword", "-username", "AWE"}, extra: "Kr1tik@l-Pa55"},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: "S3cond-Pa55word"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, e.cli.run(args))
		})
	}

	refreshed, err := e.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("S3cond-Pa55word"))
}

func Test_commandLine_importHadith(t *testing.T) {
	e := setup(t)

	write := func(name string, v interface{}) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(path, data, 0o600))
		return path
	}
	valid := write("valid.json", []hadith.NewHadith{
		{Collection: "bukhari", Number: 1, ArabicText: "إنما الأعمال بالنيات", Grade: "sahih"},
		{Collection: "muslim", Number: 8, ArabicText: "بني الإسلام على خمس", Grade: "sahih"},
	})
	invalid := write("invalid.json", []hadith.NewHadith{{Collection: "bukhari", Number: 0, ArabicText: "x", Grade: "sahih"}})
	garbage := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0o600))

	tests := []cliTest{
		{name: "no file", args: []string{"importhadith"}, wantErr: errHelp},
		{name: "missing file", args: []string{"importhadith", "-file", "/nonexistent.json"}, wantErrStr: "reading hadith file"},
		{name: "bad json", args: []string{"importhadith", "-file", garbage}, wantErrStr: "decoding"},
		{name: "invalid hadith", args: []string{"importhadith", "-file", invalid}, wantErrStr: "hadith #1 (bukhari 0)"},
		{name: "import", args: []string{"importhadith", "-file", valid}},
		{name: "import again", args: []string{"importhadith", "-file", valid}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, e.cli.run(args))
		})
	}

	hs, err := e.hadithRepo.QueryHadiths(context.Background(), &hadith.QueryFilter{}, nil, core.Page{})
	require.NoError(t, err)
	assert.Len(t, hs, 2, "imports upsert by collection and number")
}

func Test_commandLine_expireJobs(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	now := core.NowFunc()

	create := func(title string, deadline null.Time) job.Job {
		j, err := e.jobRepo.CreateJob(ctx, job.Job{
			Title:     title,
			JobType:   job.TypePartTime,
			IsActive:  true,
			Deadline:  deadline,
			CreatedAt: now,
			UpdatedAt: now,
		})
		require.NoError(t, err)
		return j
	}
	past := create("Past", null.TimeFrom(now.Add(-time.Hour)))
	future := create("Future", null.TimeFrom(now.Add(time.Hour)))
	open := create("Open", null.Time{})

	require.NoError(t, e.cli.run([]string{"admin", "expirejobs"}))

	for _, tt := range []struct {
		j      job.Job
		active bool
	}{{past, false}, {future, true}, {open, true}} {
		got, err := e.jobRepo.GetJob(ctx, tt.j.ID)
		require.NoError(t, err)
		assert.Equal(t, tt.active, got.IsActive, got.Title)
	}
}
