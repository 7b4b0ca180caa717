package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/academy/core"
	"github.com/trezcool/academy/core/user"
)

// addUser creates an active user, or reactivates & updates the one owning this email.
func (cli *commandLine) addUser(name, email, role, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	if user.RolePriority(role) == 0 {
		return fmt.Errorf("%q: unknown role", role)
	}

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	exists := err == nil
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			ID:        uuid.NewString(),
			AcademyID: core.DefaultAcademyID,
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Name = name
	usr.Role = role
	usr.Status = user.StatusActive
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	if err != nil {
		return err
	}
	cli.printf("%s <%s> saved as %s.\n", usr.Name, usr.Email, usr.Role)
	return nil
}
