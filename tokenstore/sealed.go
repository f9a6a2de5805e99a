package tokenstore

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for deriving the sealing key from a passphrase.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	sealSaltSize = 16
)

// Sealed decorates a Store so values are encrypted at rest. Unlike a browser
// origin sandbox, the local store is a plain directory on disk, so bearer
// credentials are sealed with a key derived from a caller-supplied secret.
type Sealed struct {
	inner Store
	aead  cipher.AEAD
}

var _ Store = (*Sealed)(nil)

// NewSealed wraps inner with a XChaCha20-Poly1305 seal. The key is derived
// from secret and salt via scrypt; salt must be stable across runs or
// previously written values become unreadable.
func NewSealed(inner Store, secret, salt []byte) (*Sealed, error) {
	if len(salt) < sealSaltSize {
		return nil, errors.New("[NewSealed] salt too short")
	}
	key, err := scrypt.Key(secret, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSealed] scrypt.Key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSealed] chacha20poly1305.NewX")
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

func (s *Sealed) Get(key string) (string, error) {
	sealed, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Wrap(err, "[Sealed.Get] base64 decode")
	}
	if len(raw) < s.aead.NonceSize() {
		return "", errors.New("[Sealed.Get] ciphertext too short")
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", errors.Wrap(err, "[Sealed.Get] aead.Open")
	}
	return string(plain), nil
}

func (s *Sealed) Set(key, value string) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "[Sealed.Set] rand.Read")
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Set(key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *Sealed) Remove(key string) error {
	return s.inner.Remove(key)
}
