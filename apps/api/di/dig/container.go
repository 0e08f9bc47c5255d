package dig_container

import (
	"context"
	"fmt"
	"log"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

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
	cachesvc "github.com/ilmhub/ilm/services/cache"
	emailsvc "github.com/ilmhub/ilm/services/email"
	logsvc "github.com/ilmhub/ilm/services/logger"
	"github.com/ilmhub/ilm/storage/database"
	inmemdb "github.com/ilmhub/ilm/storage/database/inmem"
	sqlxrepos "github.com/ilmhub/ilm/storage/database/sqlx"
)

// EngineMemory keeps everything in process memory. Data is lost on restart.
const EngineMemory = "memory"

const setupTimeout = 30 * time.Second

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are backed by Postgres, or by memory when database.engine is "memory".
type Repositories struct {
	dig.Out

	Users      user.Repository
	Activities activity.Repository
	Content    content.Repository
	Events     event.Repository
	Jobs       job.Repository
	Groups     group.Repository
	Quizzes    quiz.Repository
	Hadiths    hadith.Repository
	Forum      forum.Repository
}

func newLogger(zl *zap.Logger, conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(zl.Named("api"), conf)
}

func newDBLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zl.Named("db"), conf)
}

// newDB returns nil for the memory engine.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == EngineMemory {
		loggerParam.Logger.Warn("using the in-memory database: data will not survive a restart")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
		defer cancel()

		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(ctx, db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(db *sqlx.DB) Repositories {
	if db == nil {
		mem := inmemdb.NewDB()
		return Repositories{
			Users:      inmemdb.NewUserRepository(mem),
			Activities: inmemdb.NewActivityRepository(mem),
			Content:    inmemdb.NewContentRepository(mem),
			Events:     inmemdb.NewEventRepository(mem),
			Jobs:       inmemdb.NewJobRepository(mem),
			Groups:     inmemdb.NewGroupRepository(mem),
			Quizzes:    inmemdb.NewQuizRepository(mem),
			Hadiths:    inmemdb.NewHadithRepository(mem),
			Forum:      inmemdb.NewForumRepository(mem),
		}
	}
	return Repositories{
		Users:      sqlxrepos.NewUserRepository(db),
		Activities: sqlxrepos.NewActivityRepository(db),
		Content:    sqlxrepos.NewContentRepository(db),
		Events:     sqlxrepos.NewEventRepository(db),
		Jobs:       sqlxrepos.NewJobRepository(db),
		Groups:     sqlxrepos.NewGroupRepository(db),
		Quizzes:    sqlxrepos.NewQuizRepository(db),
		Hadiths:    sqlxrepos.NewHadithRepository(db),
		Forum:      sqlxrepos.NewForumRepository(db),
	}
}

// newCache uses redis when an address is configured, memory otherwise.
func newCache(conf *core.Config, logger core.Logger) core.Cache {
	if conf.Redis.Address == "" {
		return cachesvc.NewMemoryCache()
	}
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	client, err := cachesvc.NewRedisClient(ctx, conf)
	if err != nil {
		logger.Error(fmt.Sprintf("falling back to the memory cache: %v", err), err)
		return cachesvc.NewMemoryCache()
	}
	return cachesvc.NewRedisCache(client, conf)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	job.InitValidators(validate, translator)
	group.InitValidators(validate, translator)
	content.InitValidators(validate, translator)
	quiz.InitValidators(validate, translator)
	hadith.InitValidators(validate, translator)
	return validate, translator
}

func newCalendar(conf *core.Config) calendar.Converter {
	return calendar.Converter{Adjustment: conf.Calendar.Adjustment}
}

func newHadithService(repo hadith.Repository, cache core.Cache, conf *core.Config, validate *validator.Validate, logger core.Logger) hadith.Service {
	return hadith.NewService(repo, cache, conf.Redis.CacheTTL, validate, logger)
}

func newGraphService(contentSvc content.Service, cache core.Cache, conf *core.Config, logger core.Logger) graph.Service {
	return graph.NewService(contentSvc, cache, conf.Redis.CacheTTL, logger)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(logsvc.NewZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(func(l *logsvc.RollbarLogger) core.Logger { return l }))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newCache))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))
	must(c.Provide(newCalendar))

	must(c.Provide(user.NewService))
	must(c.Provide(activity.NewService))
	must(c.Provide(content.NewService))
	must(c.Provide(event.NewService))
	must(c.Provide(job.NewService))
	must(c.Provide(group.NewService))
	must(c.Provide(quiz.NewService))
	must(c.Provide(newHadithService))
	must(c.Provide(forum.NewService))
	must(c.Provide(newGraphService))

	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
