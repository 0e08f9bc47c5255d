package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/storage/database"
)

var runMigrationsFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("migrations need a postgres database")
	}
	return runMigrationsFunc(context.Background(), cli.db.DB, args[0], args[1:]...)
}
