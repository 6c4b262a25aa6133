package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mvoronkov/recipeshelf/internal/client/api"
	"github.com/mvoronkov/recipeshelf/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username and password and attempts to create a
// new account.
//
// Depending on the server response the new account is either logged in right
// away (the response carried a token) or left for a manual login (the
// response carried only a confirmation message). The password byte slice is
// wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.session.Register(ctx, api.RegisterData{
		Email:    email,
		Username: username,
		Password: string(password),
	})
	if err != nil {
		a.printSessionError()
		return nil
	}

	if resp.HasToken() {
		fmt.Println("Account created, you are now logged in.")
	} else if resp.Message != "" {
		fmt.Println(resp.Message)
	} else {
		fmt.Println("Account created, please log in.")
	}
	return nil
}

// Login prompts for credentials and authenticates against the server. On
// success the session token is persisted so the next run starts logged in.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, api.Credentials{
		Email:    email,
		Password: string(password),
	}); err != nil {
		a.printSessionError()
		st := a.session.State()
		if st.LoginAttempts > 2 {
			fmt.Printf("Failed login attempts: %d\n", st.LoginAttempts)
		}
		return nil
	}

	fmt.Println("Logged in.")
	return nil
}

// Logout drops the session locally. It always succeeds; no server call is
// involved.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout()
	fmt.Println("Logged out.")
	return nil
}

// WhoAmI prints the current profile, fetching it first if the session was
// restored from a token file and the profile is not loaded yet.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.session.State()
	if !st.IsAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}
	if st.NeedsProfile() {
		if err := a.session.FetchProfile(ctx); err != nil {
			return err
		}
		st = a.session.State()
	}
	if st.User == nil {
		fmt.Println("Profile not available.")
		return nil
	}
	fmt.Printf("%s <%s> (id %d)\n", st.User.Username, st.User.Email, st.User.ID)
	return nil
}

// printSessionError renders the session's error state: the general message
// plus any per-field validation messages.
func (a *App) printSessionError() {
	st := a.session.State()
	if st.Error != "" {
		fmt.Println(st.Error)
	}
	for field, msg := range st.FieldErrors {
		fmt.Printf("  %s: %s\n", field, msg)
	}
}
