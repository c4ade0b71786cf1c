package cli

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/navigation"
)

func (a *App) isLoggedIn() bool {
	_, ok := a.store.Get()
	return ok
}

// Login opens the login page. A signed-in user is sent to the landing
// route by the guard instead.
func (a *App) Login(ctx context.Context) error {
	return a.open(ctx, navigation.RouteLogin)
}

// Register opens the registration page, guarded like Login.
func (a *App) Register(ctx context.Context) error {
	return a.open(ctx, navigation.RouteRegister)
}

func (a *App) Home(ctx context.Context) error {
	return a.open(ctx, a.config.LandingRoute)
}

// Logout drops the session and shows the landing page.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.println("Not signed in.")
		return nil
	}
	if err := a.authService.Logout(ctx); err != nil {
		a.logger.Error(ctx, "logout failed", "error", err)
		a.println("Logout failed, try again.")
		return err
	}
	a.println("Signed out.")
	return a.open(ctx, a.config.LandingRoute)
}

func (a *App) WhoAmI(ctx context.Context) error {
	sess, ok := a.store.Get()
	if !ok {
		a.println("Not signed in.")
		return nil
	}
	a.println("User:   ", sess.User)
	if sess.UserID != "" {
		a.println("ID:     ", sess.UserID)
	}
	if !sess.ExpiresAt.IsZero() {
		a.println("Expires:", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// open enters path, or shows it again when it is already current.
func (a *App) open(ctx context.Context, path string) error {
	if a.router.Current() == path {
		return a.router.Reload(ctx)
	}
	return a.router.Navigate(ctx, path)
}

func (a *App) getStatus() string {
	s := a.router.Current()
	if u := a.store.User(); u != "" {
		s += " " + u
	}
	if m := a.Mode(); m != "" {
		s += " " + string(m)
	}
	return s
}
