// Package secrets wraps fernet encryption for values stored at rest,
// currently the market-data provider API tokens.
package secrets

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrDecryptFailed indicates the stored token could not be verified,
// usually because the configured key changed.
var ErrDecryptFailed = errors.New("failed to decrypt stored secret")

// Box encrypts and decrypts short string secrets with a single fernet key.
type Box struct {
	key *fernet.Key
}

// NewBox creates a Box from a base64-encoded fernet key.
func NewBox(encodedKey string) (*Box, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid fernet key: %w", err)
	}
	return &Box{key: key}, nil
}

// Encrypt returns the fernet token for the plaintext.
func (b *Box) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), b.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and decrypts a fernet token. Tokens do not expire;
// rotation happens by re-encrypting on save.
func (b *Box) Decrypt(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{b.key})
	if plaintext == nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
