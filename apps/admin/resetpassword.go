package main

import (
	"context"
	"errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
	if err != nil {
		return err
	}
	if msg := user.CheckPassword(pwd, usr.Name, usr.Username, usr.Email); msg != "" {
		return errors.New(msg)
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = core.NowFunc()
	if _, err := cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
