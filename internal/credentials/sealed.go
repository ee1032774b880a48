package credentials

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const sealedFormatVersion = 1

// kdfSalt is fixed: the secret is a server-side value, not a user passphrase.
var kdfSalt = []byte("cv-improver/credentials/v1")

// ErrCorruptCredential is returned when a sealed value cannot be opened.
var ErrCorruptCredential = errors.New("wrong secret or corrupted credential")

type sealedBlob struct {
	V      int    `json:"v"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// Sealed encrypts values with XChaCha20-Poly1305 before they reach the inner
// store. The hashed owner is bound as additional data, so a value copied to
// another owner does not open.
type Sealed struct {
	inner Store
	aead  cipher.AEAD
}

// NewSealed derives the encryption key from secret with scrypt.
func NewSealed(inner Store, secret string) (*Sealed, error) {
	N, r, p := scryptParamsDefault()
	return newSealed(inner, secret, N, r, p)
}

func newSealed(inner Store, secret string, N, r, p int) (*Sealed, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("CREDENTIAL_SECRET is empty")
	}
	key, err := scrypt.Key([]byte(secret), kdfSalt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

func (s *Sealed) Get(ctx context.Context, owner string) (string, error) {
	raw, err := s.inner.Get(ctx, owner)
	if err != nil {
		return "", err
	}
	var blob sealedBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return "", ErrCorruptCredential
	}
	if blob.V > sealedFormatVersion {
		return "", fmt.Errorf("unsupported credential format version %d", blob.V)
	}
	if len(blob.Nonce) != s.aead.NonceSize() {
		return "", ErrCorruptCredential
	}
	pt, err := s.aead.Open(nil, blob.Nonce, blob.Cipher, []byte(ownerKey(owner)))
	if err != nil {
		return "", ErrCorruptCredential
	}
	return string(pt), nil
}

func (s *Sealed) Set(ctx context.Context, owner string, value string) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	ct := s.aead.Seal(nil, nonce, []byte(value), []byte(ownerKey(owner)))
	raw, err := json.Marshal(sealedBlob{V: sealedFormatVersion, Nonce: nonce, Cipher: ct})
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, owner, string(raw))
}

func (s *Sealed) Remove(ctx context.Context, owner string) error {
	return s.inner.Remove(ctx, owner)
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

var _ Store = (*Sealed)(nil)
