package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	dig_container "github.com/ilmhub/ilm/apps/api/di/dig"
	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/hadith"
	"github.com/ilmhub/ilm/core/job"
	"github.com/ilmhub/ilm/core/user"
)

func main() {
	c := dig_container.New()

	err := c.Invoke(func(
		logger core.Logger,
		db *sqlx.DB,
		usrRepo user.Repository,
		hadithSvc hadith.Service,
		jobSvc job.Service,
		validate *validator.Validate,
	) {
		user.LoadCommonPasswords()
		if db != nil {
			defer func() { _ = db.Close() }()
		}

		cli := commandLine{
			db:        db,
			usrRepo:   usrRepo,
			hadithSvc: hadithSvc,
			jobSvc:    jobSvc,
			validate:  validate,
			logger:    logger,
		}
		if err := cli.run(os.Args); err != nil {
			if err != errHelp {
				logger.Error("command failed", err)
			}
			os.Exit(1)
		}
	})
	if err != nil {
		log.Fatal(err)
	}
}
