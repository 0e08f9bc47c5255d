package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/hadith"
)

func (cli *commandLine) importHadith(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading hadith file")
	}
	var nhs []hadith.NewHadith
	if err := json.Unmarshal(data, &nhs); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}

	n, err := cli.hadithSvc.Import(context.Background(), nhs)
	if err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("%d hadiths imported from %s", n, path))
	return nil
}
