package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medisync/internal/client/models"
	"github.com/dmitrijs2005/medisync/internal/client/session"
	"github.com/dmitrijs2005/medisync/internal/common"
)

// Register prompts for the account fields and creates the account. A
// successful registration also signs the user in.
func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	first, err := GetSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := GetSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}
	role, err := GetSimpleText(a.reader, "Role (senior or guardian)", a.out)
	if err != nil {
		return err
	}
	phone, err := GetSimpleText(a.reader, "Phone number (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	reg := models.Registration{
		Email:           email,
		Password:        string(password),
		PasswordConfirm: string(confirm),
		FirstName:       first,
		LastName:        last,
		Role:            models.Role(strings.ToLower(role)),
		PhoneNumber:     phone,
	}
	if err := a.store.Register(ctx, reg); err != nil {
		return a.storeError(err)
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", a.store.Snapshot().User.DisplayName())
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.store.Login(ctx, email, string(password)); err != nil {
		return a.storeError(err)
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", a.store.Snapshot().User.DisplayName())
	return nil
}

// Logout forgets the stored tokens. The server is not contacted.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	if err := a.store.FetchUser(ctx); err != nil {
		return a.storeError(err)
	}
	printUser(a.out, *a.store.Snapshot().User)
	return nil
}

// Status reports what the stored access token says about the session,
// without contacting the server.
func (a *App) Status(ctx context.Context) error {
	pair, err := a.creds.Load(ctx)
	if err != nil {
		return err
	}
	if pair.Empty() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	claims, err := session.Inspect(pair.Access)
	switch {
	case errors.Is(err, session.ErrNotJWT):
		fmt.Fprintln(a.out, "Logged in (opaque access token)")
	case err != nil:
		return err
	default:
		state := "valid"
		if claims.Expired(a.now()) {
			state = "expired, will refresh on next call"
		}
		fmt.Fprintf(a.out, "Logged in as user %d, access token %s", claims.UserID, state)
		if !claims.ExpiresAt.IsZero() {
			fmt.Fprintf(a.out, " (expires %s)", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(a.out)
	}

	if pair.Refresh == "" {
		fmt.Fprintln(a.out, "No refresh token stored")
	}
	if n := len(a.store.Snapshot().Unconfirmed); n > 0 {
		fmt.Fprintf(a.out, "%d dose(s) waiting for server confirmation\n", n)
	}
	return nil
}

// storeError prefixes err with the message the store published and clears
// the slot so it is reported once.
func (a *App) storeError(err error) error {
	msg := a.store.Snapshot().Error
	a.store.ClearError()
	if msg == "" {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
