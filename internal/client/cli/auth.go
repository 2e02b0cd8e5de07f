package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/api"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// Login authenticates with a username and password.
func (a *App) Login(ctx context.Context) {

	username, err := GetSimpleText(a.reader, "Enter username:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	user, err := a.session.LoginWithCredentials(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		a.printAuthError(err)
		return
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", user.FirstName)
}

// TelegramLogin authenticates with a signed Telegram widget payload. The
// payload is verified server-side; the console just collects and forwards it.
func (a *App) TelegramLogin(ctx context.Context) {

	id, err := GetSimpleText(a.reader, "Enter Telegram id:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	firstName, err := GetSimpleText(a.reader, "Enter first name:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	hash, err := GetSimpleText(a.reader, "Enter widget hash:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	referral, err := GetSimpleText(a.reader, "Referral code (optional):", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	payload := api.TelegramPayload{
		ID:        id,
		FirstName: firstName,
		AuthDate:  time.Now().Unix(),
		Hash:      hash,
	}

	user, err := a.session.LoginWithTelegram(ctx, payload, referral)
	if err != nil {
		a.printAuthError(err)
		return
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", user.FirstName)
	if user.ReferralCode != "" {
		fmt.Fprintf(a.out, "Your referral code: %s\n", user.ReferralCode)
	}
}

// Register creates a new account and signs in.
func (a *App) Register(ctx context.Context) {

	username, err := GetSimpleText(a.reader, "Enter username:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	firstName, err := GetSimpleText(a.reader, "Enter first name:", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	referral, err := GetSimpleText(a.reader, "Referral code (optional):", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	reg := api.Registration{
		Username:     username,
		Password:     password,
		FirstName:    firstName,
		ReferralCode: referral,
	}

	user, err := a.session.Register(ctx, reg)
	if err != nil {
		a.printAuthError(err)
		return
	}

	fmt.Fprintf(a.out, "Account created, welcome %s!\n", user.FirstName)
}

func (a *App) printAuthError(err error) {
	var apiErr *api.Error
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(a.out, "Invalid credentials")
	case errors.Is(err, common.ErrUnavailable):
		fmt.Fprintln(a.out, "Server is unavailable, please try again later")
	case errors.As(err, &apiErr):
		fmt.Fprintln(a.out, "Error:", apiErr.Message)
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}
