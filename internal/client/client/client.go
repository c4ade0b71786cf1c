package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// Client is the transport to the authentication backend.
type Client interface {
	Close() error
	Login(ctx context.Context, creds models.LoginCredentials) (models.AuthResponse, error)
	Register(ctx context.Context, reg models.Registration) (models.AuthResponse, error)
	Ping(ctx context.Context) error
}
