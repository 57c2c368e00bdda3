package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/capgallery/internal/client/auth"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login switches the form to login mode and submits it.
func (a *App) Login(ctx context.Context) error {
	a.auth.SetMode(models.AuthModeLogin)
	return a.submitAuth(ctx)
}

// Register switches the form to register mode and submits it.
func (a *App) Register(ctx context.Context) error {
	a.auth.SetMode(models.AuthModeRegister)
	return a.submitAuth(ctx)
}

// ToggleMode flips the auth form between login and register.
func (a *App) ToggleMode(ctx context.Context) error {
	mode := a.auth.Toggle()
	fmt.Fprintf(a.out, "Auth form mode: %s\n", mode)
	return nil
}

// readCredentials prompts for the form fields. An empty username keeps the
// value entered on the previous failed attempt.
func (a *App) readCredentials(mode models.AuthMode) (models.Credentials, error) {
	prev := a.auth.Values()

	prompt := "Enter username"
	if prev.Username != "" {
		prompt = fmt.Sprintf("Enter username [%s]", prev.Username)
	}
	username, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return models.Credentials{}, err
	}
	if username == "" {
		username = prev.Username
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return models.Credentials{}, err
	}
	defer wipe(password)
	creds := models.Credentials{Username: username, Password: string(password)}

	if mode == models.AuthModeRegister {
		confirm, err := getPassword("Confirm password", a.out)
		if err != nil {
			return models.Credentials{}, err
		}
		defer wipe(confirm)
		creds.ConfirmPassword = string(confirm)
	}
	return creds, nil
}

func (a *App) submitAuth(ctx context.Context) error {
	mode := a.auth.Mode()
	creds, err := a.readCredentials(mode)
	if err != nil {
		return err
	}

	sess, err := a.auth.Submit(ctx, creds)
	if err != nil {
		if fe, ok := auth.AsFieldErrors(err); ok {
			a.printFieldErrors(fe)
			return err
		}
		fmt.Fprintf(a.out, "%s failed, please try again\n", mode)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", sess.Username)

	if m := a.mount(); m != nil {
		if err := m.Refresh(ctx); err == nil {
			a.render(m)
		}
	}
	return nil
}

func (a *App) printFieldErrors(fe auth.FieldErrors) {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(a.out, "  %s: %s\n", f, fe[f])
	}
}
