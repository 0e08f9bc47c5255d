package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err == user.ErrNotFound {
		usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: email})
	}
	create := err == user.ErrNotFound
	if err != nil && !create {
		return err
	}

	now := core.NowFunc()
	if create {
		usr = user.User{
			Name:      uname,
			Username:  uname,
			Email:     email,
			Roles:     []string{user.RoleMember},
			CreatedAt: now,
		}
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if msg := user.CheckPassword(pwd, usr.Name, usr.Username, usr.Email); msg != "" {
		return errors.New(msg)
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if create {
		if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
			return err
		}
		cli.logger.Info(fmt.Sprintf("user %q created", uname))
		return nil
	}
	if _, err := cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("user %q updated", usr.Username))
	return nil
}
