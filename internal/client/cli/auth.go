package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/neurofit/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for username, email and password (twice), creates the
// account and logs in.
func (a *App) Register(ctx context.Context, args []string) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return fmt.Errorf("%w: passwords do not match", errUsage)
	}

	u, err := a.authService.Register(ctx, username, email, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Username)
	return nil
}

// Login prompts for credentials. A username may be given as the argument.
func (a *App) Login(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		s, err := getSimpleText(a.reader, "Enter username", a.out)
		if err != nil {
			return err
		}
		username = s
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, username, string(password))
	if err != nil {
		a.log.Info(ctx, "login unsuccessful", "username", username, "error", err)
		return err
	}

	a.coachService.Reset()
	fmt.Fprintf(a.out, "Logged in as %s.\n", u.Username)
	return nil
}

func (a *App) Logout(ctx context.Context, args []string) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.coachService.Reset()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Whoami(ctx context.Context, args []string) error {
	switch u := a.authService.CurrentUser(); {
	case u != nil:
		fmt.Fprintf(a.out, "%s (id %d)\n", u.Username, u.ID)
	case a.isLoggedIn():
		fmt.Fprintln(a.out, "Logged in, profile not loaded yet.")
	default:
		fmt.Fprintln(a.out, "Not logged in.")
	}
	return nil
}
