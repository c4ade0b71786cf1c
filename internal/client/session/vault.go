package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

const (
	keyPrefix    = "session."
	keyUser      = keyPrefix + "user"
	keyUserID    = keyPrefix + "user_id"
	keyPicture   = keyPrefix + "picture"
	keyToken     = keyPrefix + "token"
	keyExpiresAt = keyPrefix + "expires_at"
)

// Vault persists the session in the local SQLite metadata table. The token
// is sealed with the device secret; the other fields are stored as is.
type Vault struct {
	db     *sql.DB
	secret []byte
}

func NewVault(db *sql.DB, secret []byte) *Vault {
	return &Vault{db: db, secret: secret}
}

// Save writes every session field in a single transaction.
func (v *Vault) Save(ctx context.Context, s models.Session) error {
	sealed, err := cryptox.Seal([]byte(s.Token), v.secret)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}

	var expires []byte
	if !s.ExpiresAt.IsZero() {
		expires = []byte(s.ExpiresAt.UTC().Format(time.RFC3339Nano))
	}

	return dbx.WithTx(ctx, v.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		values := []struct {
			key   string
			value []byte
		}{
			{keyUser, []byte(s.User)},
			{keyUserID, []byte(s.UserID)},
			{keyPicture, []byte(s.Picture)},
			{keyToken, sealed},
			{keyExpiresAt, expires},
		}
		for _, kv := range values {
			if err := repo.Set(ctx, kv.key, kv.value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the stored session. A vault without a session yields the zero
// Session.
func (v *Vault) Load(ctx context.Context) (models.Session, error) {
	repo := metadata.NewSQLiteRepository(v.db)

	all, err := repo.List(ctx)
	if err != nil {
		return models.Session{}, err
	}

	var s models.Session
	s.User = string(all[keyUser])
	s.UserID = string(all[keyUserID])
	s.Picture = string(all[keyPicture])

	if sealed := all[keyToken]; len(sealed) > 0 {
		token, err := cryptox.Open(sealed, v.secret)
		if err != nil {
			return models.Session{}, fmt.Errorf("open token: %w", err)
		}
		s.Token = string(token)
	}

	if raw := all[keyExpiresAt]; len(raw) > 0 {
		t, err := time.Parse(time.RFC3339Nano, string(raw))
		if err != nil {
			return models.Session{}, fmt.Errorf("parse expiry: %w", err)
		}
		s.ExpiresAt = t
	}

	return s, nil
}

// Clear removes every session key.
func (v *Vault) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(v.db).DeletePrefix(ctx, keyPrefix)
}
