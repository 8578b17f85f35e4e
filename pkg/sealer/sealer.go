package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidToken = errors.New("invalid sealed token")

// Sealer encrypts browser session ids into opaque cookie values with AES-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// New builds a Sealer from a base64 key. An empty key generates a random one,
// which means cookies do not survive a restart.
func New(encodedKey string) (*Sealer, error) {
	var key []byte
	if encodedKey == "" {
		key = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, err
		}
	} else {
		var err error
		key, err = base64.StdEncoding.DecodeString(encodedKey)
		if err != nil {
			return nil, fmt.Errorf("decode seal key: %w", err)
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aesgcm}, nil
}

// Seal binds value to purpose; Open with a different purpose fails.
func (s *Sealer) Seal(value, purpose string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := s.aead.Seal(nonce, nonce, []byte(value), []byte(purpose))
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

func (s *Sealer) Open(token, purpose string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	nonceSize := s.aead.NonceSize()
	if len(data) <= nonceSize {
		return "", ErrInvalidToken
	}
	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	pt, err := s.aead.Open(nil, nonce, ciphertext, []byte(purpose))
	if err != nil {
		return "", ErrInvalidToken
	}

	return string(pt), nil
}
