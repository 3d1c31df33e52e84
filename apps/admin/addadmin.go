package main

import (
	"context"
	"time"

	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/core/user"
)

// addAdmin creates an admin account, or promotes the existing account
// registered under the given email. Registration only ever creates students,
// so the first admin must be seeded here.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      name,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
		usr.Role = user.RoleAdmin
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err := cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	if name != "" {
		usr.Name = name
	}
	usr.Role = user.RoleAdmin
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
