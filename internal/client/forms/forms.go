// Package forms keeps the transient state of the login and registration
// pages. A form is reset after a successful submission and kept as typed
// after a failed one.
package forms

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
)

type LoginForm struct {
	Email    string
	Password string

	svc services.AuthService
}

func NewLoginForm(svc services.AuthService) *LoginForm {
	return &LoginForm{svc: svc}
}

func (f *LoginForm) Credentials() models.LoginCredentials {
	return models.LoginCredentials{Email: f.Email, Password: f.Password}
}

// Submit sends the form through the auth service.
func (f *LoginForm) Submit(ctx context.Context) error {
	if err := f.svc.Login(ctx, f.Credentials()); err != nil {
		return err
	}
	f.Reset()
	return nil
}

func (f *LoginForm) Submitting() bool { return f.svc.Submitting() }

func (f *LoginForm) Reset() {
	f.Email = ""
	f.Password = ""
}

type RegisterForm struct {
	FirstName string
	LastName  string
	Email     string
	Password  string

	image *models.SelectedImage
	svc   services.AuthService
}

func NewRegisterForm(svc services.AuthService) *RegisterForm {
	return &RegisterForm{svc: svc}
}

// SelectImage loads a local picture and builds its preview. It touches
// only the local file system.
func (f *RegisterForm) SelectImage(path string) error {
	img, err := LoadImage(path)
	if err != nil {
		return err
	}
	f.image = img
	return nil
}

// Image returns the selected picture, or nil.
func (f *RegisterForm) Image() *models.SelectedImage { return f.image }

// Preview returns the data URL of the selected picture, or "".
func (f *RegisterForm) Preview() string {
	if f.image == nil {
		return ""
	}
	return f.image.Preview
}

// Registration builds the payload; the picture is sent as its preview.
func (f *RegisterForm) Registration() models.Registration {
	return models.Registration{
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Password:   f.Password,
		PictureURL: f.Preview(),
	}
}

func (f *RegisterForm) Submit(ctx context.Context) error {
	if err := f.svc.Register(ctx, f.Registration()); err != nil {
		return err
	}
	f.Reset()
	return nil
}

func (f *RegisterForm) Submitting() bool { return f.svc.Submitting() }

func (f *RegisterForm) Reset() {
	*f = RegisterForm{svc: f.svc}
}
