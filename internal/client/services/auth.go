// Package services contains application services for the gauth client.
// This file defines the authentication service: the login and registration
// submission flow, logout, and a liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/navigation"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrSubmissionFailed wraps every failure of a login or registration
	// attempt. Callers do not distinguish the causes.
	ErrSubmissionFailed = errors.New("submission failed")

	// ErrSubmissionInFlight is returned while an earlier submission of the
	// same service is still pending. No request is sent.
	ErrSubmissionInFlight = errors.New("submission already in flight")

	// ErrInvalidInput is returned when the form is incomplete. No request
	// is sent.
	ErrInvalidInput = errors.New("invalid input")
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login / Register: submit credentials once; on success the session is
//     set as a whole and the user is sent to the landing route exactly once.
//     On failure the session and the current route are left untouched.
//   - Logout: drop the session.
//   - Submitting: whether a submission is pending.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, creds models.LoginCredentials) error
	Register(ctx context.Context, reg models.Registration) error
	Logout(ctx context.Context) error
	Submitting() bool
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// SessionStore is the part of the session store the service writes to.
type SessionStore interface {
	Get() (models.Session, bool)
	Set(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

// PictureUploader stores a picture given as a data URL and returns the URL
// it can be fetched from.
type PictureUploader interface {
	Upload(ctx context.Context, dataURL string) (string, error)
}

type authService struct {
	client   client.Client
	store    SessionStore
	nav      navigation.Navigator
	landing  string
	uploader PictureUploader
	logger   logging.Logger
	validate *validator.Validate
	inFlight atomic.Bool
}

type Option func(*authService)

// WithUploader enables picture upload before registration.
func WithUploader(u PictureUploader) Option {
	return func(a *authService) { a.uploader = u }
}

func WithLogger(l logging.Logger) Option {
	return func(a *authService) { a.logger = l }
}

// WithLanding overrides the route entered after a successful submission.
func WithLanding(path string) Option {
	return func(a *authService) { a.landing = path }
}

// NewAuthService constructs an AuthService bound to the given API client,
// session store and navigator.
func NewAuthService(c client.Client, store SessionStore, nav navigation.Navigator, opts ...Option) AuthService {
	a := &authService{
		client:   c,
		store:    store,
		nav:      nav,
		landing:  navigation.RouteHome,
		logger:   logging.Nop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, o := range opts {
		o(a)
	}
	a.logger = a.logger.With("module", "auth")
	return a
}

// Login submits credentials to the login endpoint.
func (a *authService) Login(ctx context.Context, creds models.LoginCredentials) error {
	if err := a.validate.StructCtx(ctx, creds); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if !a.inFlight.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}
	defer a.inFlight.Store(false)

	resp, err := a.client.Login(ctx, creds)
	if err != nil {
		return a.fail(ctx, "login", err)
	}
	return a.establish(ctx, "login", resp)
}

// Register submits a new account. A picture given as a data URL is uploaded
// first when an uploader is configured; otherwise it is sent as is.
func (a *authService) Register(ctx context.Context, reg models.Registration) error {
	if err := a.validate.StructCtx(ctx, reg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if !a.inFlight.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}
	defer a.inFlight.Store(false)

	if a.uploader != nil && strings.HasPrefix(reg.PictureURL, "data:") {
		url, err := a.uploader.Upload(ctx, reg.PictureURL)
		if err != nil {
			return a.fail(ctx, "registration", fmt.Errorf("picture upload: %w", err))
		}
		reg.PictureURL = url
	}

	resp, err := a.client.Register(ctx, reg)
	if err != nil {
		return a.fail(ctx, "registration", err)
	}
	return a.establish(ctx, "registration", resp)
}

func (a *authService) establish(ctx context.Context, kind string, resp models.AuthResponse) error {
	if !resp.Complete() {
		return a.fail(ctx, kind, client.ErrMalformedResponse)
	}

	if err := a.store.Set(ctx, resp.Session()); err != nil {
		return a.fail(ctx, kind, err)
	}
	a.logger.Info(ctx, kind+" succeeded", "user", resp.Email)

	if err := a.nav.Navigate(ctx, a.landing); err != nil {
		a.logger.Error(ctx, "navigation after "+kind+" failed", "to", a.landing, "error", err)
		return fmt.Errorf("navigate to %s: %w", a.landing, err)
	}
	return nil
}

func (a *authService) fail(ctx context.Context, kind string, cause error) error {
	a.logger.Error(ctx, kind+" submission failed", "error", cause)
	return fmt.Errorf("%w: %w", ErrSubmissionFailed, cause)
}

// Logout drops the current session.
func (a *authService) Logout(ctx context.Context) error {
	sess, ok := a.store.Get()
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	if ok {
		a.logger.Info(ctx, "signed out", "user", sess.User)
	}
	return nil
}

func (a *authService) Submitting() bool {
	return a.inFlight.Load()
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
