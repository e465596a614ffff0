package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hopespring/backoffice/internal/client/api"
	"github.com/hopespring/backoffice/internal/client/models"
	"github.com/hopespring/backoffice/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates through the session store.
//
// Empty email or password is rejected before any network call
// (session.ErrValidation). On failure the user stays on the form: the error
// is printed and the REPL re-prompts on the next "login". The password
// buffer is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if email == "" {
		printlnFn("Email is required.")
		return fmt.Errorf("%w: email", session.ErrValidation)
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer wipeBytes(password)
	if len(password) == 0 {
		printlnFn("Password is required.")
		return fmt.Errorf("%w: password", session.ErrValidation)
	}

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	st := a.session.Snapshot()
	printlnFn("Welcome,", st.Identity.Name+"!")
	return nil
}

// Signup prompts for the registration payload, including an optional
// profile picture path, and creates the account. A successful signup logs
// the user in, same as Login.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if name == "" || email == "" {
		printlnFn("Name and email are required.")
		return fmt.Errorf("%w: name/email", session.ErrValidation)
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer wipeBytes(password)
	if len(password) == 0 {
		printlnFn("Password is required.")
		return fmt.Errorf("%w: password", session.ErrValidation)
	}

	role, err := getSimpleText(a.reader, "Enter role (Admin/Editor/Volunteer/Member, default Volunteer)", os.Stdout)
	if err != nil {
		return err
	}
	if role == "" {
		role = string(models.RoleVolunteer)
	}

	mobile, err := getSimpleText(a.reader, "Enter mobile (optional)", os.Stdout)
	if err != nil {
		return err
	}

	req := api.SignupRequest{
		Name:     name,
		Email:    email,
		Password: string(password),
		Role:     models.Role(role),
		Mobile:   mobile,
	}

	picPath, err := getSimpleText(a.reader, "Profile picture path (optional)", os.Stdout)
	if err != nil {
		return err
	}
	if picPath != "" {
		f, err := os.Open(picPath)
		if err != nil {
			printlnFn("Cannot read picture:", err.Error())
			return err
		}
		defer f.Close()
		req.ProfilePic = &api.FileAttachment{Name: filepath.Base(picPath), Reader: f}
	}

	if err := a.session.Signup(ctx, req); err != nil {
		printlnFn("Signup failed:", err.Error())
		return err
	}

	printlnFn("Account created. You are now logged in.")
	return nil
}

// UpdateProfile edits the logged-in account. Empty answers keep the current
// value; password and picture are optional.
func (a *App) UpdateProfile(ctx context.Context) error {
	st := a.session.Snapshot()
	if !st.LoggedIn() {
		printlnFn("Not logged in.")
		return session.ErrNoSession
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Enter name [%s]", st.Identity.Name), os.Stdout)
	if err != nil {
		return err
	}
	if name == "" {
		name = st.Identity.Name
	}

	email, err := getSimpleText(a.reader, fmt.Sprintf("Enter email [%s]", st.Identity.Email), os.Stdout)
	if err != nil {
		return err
	}
	if email == "" {
		email = st.Identity.Email
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer wipeBytes(password)

	req := api.ProfileUpdate{Name: name, Email: email, Password: string(password)}

	picPath, err := getSimpleText(a.reader, "Profile picture path (optional)", os.Stdout)
	if err != nil {
		return err
	}
	if picPath != "" {
		f, err := os.Open(picPath)
		if err != nil {
			printlnFn("Cannot read picture:", err.Error())
			return err
		}
		defer f.Close()
		req.ProfilePic = &api.FileAttachment{Name: filepath.Base(picPath), Reader: f}
	}

	if err := a.session.UpdateProfile(ctx, req); err != nil {
		printlnFn("Profile update failed:", err.Error())
		return err
	}

	printlnFn("Profile updated.")
	return nil
}

// Logout drops the session. It never fails and is safe to repeat.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out.")
	return nil
}

// WhoAmI prints the current identity, if any.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.session.Snapshot()
	if !st.LoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}
	printlnFn(fmt.Sprintf("%s <%s> — %s", st.Identity.Name, st.Identity.Email, st.Identity.Role))
	return nil
}
