package navigation

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// SessionReader is the read side of the session store.
type SessionReader interface {
	Get() (models.Session, bool)
}

// RedirectIfAuthenticated keeps signed-in users off the login and
// registration pages by sending them to landing. Without a session it
// allows entry and does nothing else.
func RedirectIfAuthenticated(s SessionReader, landing string) Guard {
	return func(context.Context) string {
		if _, ok := s.Get(); ok {
			return landing
		}
		return ""
	}
}
