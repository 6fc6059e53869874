package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/fanclub/internal/models/dto"
)

// minPasswordLength mirrors the server side rule.
const minPasswordLength = 6

// SignupForm is the signup form. ConfirmPassword is checked when given.
type SignupForm struct {
	Nickname        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// PasswordForm is the change password form.
type PasswordForm struct {
	Current string
	New     string
	Confirm string
}

// Login signs in with email and password.
func (a *App) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return a.reject(msgLoginRequired)
	}
	done := a.loading.Begin()
	defer done()

	auth, err := a.gw.Login(ctx, email, password)
	if err != nil {
		a.logger.Printf("login: %v", err)
		return a.report(msgLoginFailed, err)
	}
	return a.signedIn(ctx, auth, msgLoginOK)
}

// Signup creates an account and signs in with it.
func (a *App) Signup(ctx context.Context, f SignupForm) error {
	f.Nickname = strings.TrimSpace(f.Nickname)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	if f.Nickname == "" || f.Email == "" || f.Password == "" {
		return a.reject(msgRequiredFields)
	}
	if utf8.RuneCountInString(f.Password) < minPasswordLength {
		return a.reject(msgPasswordTooShort)
	}
	if f.ConfirmPassword != "" && f.ConfirmPassword != f.Password {
		return a.reject(msgPasswordMismatch)
	}
	done := a.loading.Begin()
	defer done()

	auth, err := a.gw.Signup(ctx, dto.SignupRequest{
		Nickname: f.Nickname,
		Email:    f.Email,
		Phone:    f.Phone,
		Password: f.Password,
	})
	if err != nil {
		a.logger.Printf("signup: %v", err)
		return a.report(msgSignupFailed, err)
	}
	return a.signedIn(ctx, auth, msgSignupOK)
}

func (a *App) signedIn(ctx context.Context, auth dto.LoginResponse, message string) error {
	if err := a.sess.SignIn(auth); err != nil {
		a.logger.Printf("store session: %v", err)
	}
	user := auth.User
	a.view.SetAuthState(&user)
	a.notifier.Notify(NoticeSuccess, message)
	if a.Page() == PageAuth || a.Page() == "" {
		return a.ShowTop(ctx)
	}
	return nil
}

// Logout ends the session and returns to the top page.
func (a *App) Logout(ctx context.Context) error {
	a.signedOut()
	a.notifier.Notify(NoticeSuccess, msgLogoutOK)
	return a.ShowTop(ctx)
}

// ChangePassword changes the signed-in user's password.
func (a *App) ChangePassword(ctx context.Context, f PasswordForm) error {
	if !a.sess.LoggedIn() {
		return a.needLogin(msgProfileNeedsLogin, AuthLogin)
	}
	if f.Current == "" || f.New == "" || f.Confirm == "" {
		return a.reject(msgFieldsRequired)
	}
	if f.New != f.Confirm {
		return a.reject(msgPasswordMismatch)
	}
	if utf8.RuneCountInString(f.New) < minPasswordLength {
		return a.reject(msgPasswordTooShort)
	}
	done := a.loading.Begin()
	defer done()

	if err := a.gw.UpdatePassword(ctx, f.Current, f.New); err != nil {
		return a.fail("change password", msgPasswordFailed, err)
	}
	a.notifier.Notify(NoticeSuccess, msgPasswordChanged)
	return nil
}
