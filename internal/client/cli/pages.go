package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) homePage(ctx context.Context) error {
	if sess, ok := a.store.Get(); ok {
		a.println("Signed in as", sess.User)
		return nil
	}
	a.println("Not signed in. Type 'login' or 'register'.")
	return nil
}

func (a *App) loginPage(ctx context.Context) error {
	f := a.loginForm

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	f.Email = email
	f.Password = string(password)

	return a.reportSubmit(ctx, f.Submit(ctx))
}

func (a *App) registerPage(ctx context.Context) error {
	f := a.regForm
	var err error

	if f.FirstName, err = getSimpleText(a.reader, "Enter first name", a.out); err != nil {
		return err
	}
	if f.LastName, err = getSimpleText(a.reader, "Enter last name", a.out); err != nil {
		return err
	}
	if f.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	f.Password = string(password)

	path, err := getSimpleText(a.reader, "Picture file (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if path != "" {
		if err := f.SelectImage(path); err != nil {
			a.println("Picture not used:", err)
		} else {
			img := f.Image()
			a.println(fmt.Sprintf("Picture preview ready (%s, %d bytes)", img.MIME, len(img.Data)))
		}
	}

	return a.reportSubmit(ctx, f.Submit(ctx))
}

// reportSubmit turns a submission outcome into a one-line notice. The
// cause of a failure is already in the log.
func (a *App) reportSubmit(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrInvalidInput):
		a.println("Email and password are required.")
	case errors.Is(err, services.ErrSubmissionInFlight):
		a.println("A submission is already in progress.")
	case errors.Is(err, services.ErrSubmissionFailed):
		a.println("Submission failed, try again.")
	default:
		a.logger.Error(ctx, "page error", "error", err)
		a.println("Something went wrong, try again.")
	}
	return err
}
