// Package cryptox seals secrets kept in the local vault. The bearer token is
// never written to disk in clear: it is encrypted with AES-GCM under a key
// derived (Argon2id) from a per-device secret file and a per-value salt.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"golang.org/x/crypto/argon2"
)

const (
	keySize    = 32
	saltSize   = 16
	secretSize = 32
)

// ErrSealedTooShort is returned by Open for input that cannot hold salt and nonce.
var ErrSealedTooShort = errors.New("sealed value too short")

// DeriveKey stretches secret with salt into a 32-byte AES-256 key.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keySize)
}

// Seal encrypts plaintext under a key derived from secret.
// Output layout: salt(16) | nonce(12) | ciphertext+tag.
func Seal(plaintext, secret []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(saltSize)

	aead, err := newAEAD(DeriveKey(secret, salt))
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(sealed, secret []byte) ([]byte, error) {
	if len(sealed) < saltSize {
		return nil, ErrSealedTooShort
	}
	salt, rest := sealed[:saltSize], sealed[saltSize:]

	aead, err := newAEAD(DeriveKey(secret, salt))
	if err != nil {
		return nil, err
	}
	if len(rest) < aead.NonceSize() {
		return nil, ErrSealedTooShort
	}
	nonce, ciphertext := rest[:aead.NonceSize()], rest[aead.NonceSize():]

	return aead.Open(nil, nonce, ciphertext, nil)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// LoadOrCreateSecret returns the device secret stored at path, creating the
// file (0600) with fresh random bytes on first use.
func LoadOrCreateSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != secretSize {
			return nil, fmt.Errorf("device secret %s: unexpected size %d", path, len(data))
		}
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read device secret: %w", err)
	}

	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	secret := common.GenerateRandByteArray(secretSize)
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write device secret: %w", err)
	}
	return secret, nil
}
