package main

import (
	"context"
	"fmt"

	"github.com/ilmhub/ilm/core"
)

func (cli *commandLine) expireJobs() error {
	n, err := cli.jobSvc.ExpirePastDeadline(context.Background(), core.NowFunc())
	if err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("%d job postings expired", n))
	return nil
}
