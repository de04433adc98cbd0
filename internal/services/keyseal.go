package services

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealedPrefix = "enc:v1:"

var ErrCorruptSealedKey = errors.New("sealed api key is corrupt")

// KeySealer encrypts provider API keys at rest with XChaCha20-Poly1305.
// Values stored before sealing was introduced have no prefix and are
// returned unchanged by Open.
type KeySealer struct {
	aead cipher.AEAD
}

func NewKeySealer(secret string) (*KeySealer, error) {
	if secret == "" {
		return nil, errors.New("key sealer secret is empty")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("asa-portal api key")), key); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &KeySealer{aead: aead}, nil
}

func (k *KeySealer) Seal(plain string) (string, error) {
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := k.aead.Seal(nonce, nonce, []byte(plain), []byte(sealedPrefix))
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

func (k *KeySealer) Open(stored string) (string, error) {
	if !IsSealed(stored) {
		return stored, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil || len(raw) < k.aead.NonceSize() {
		return "", ErrCorruptSealedKey
	}
	nonce, body := raw[:k.aead.NonceSize()], raw[k.aead.NonceSize():]
	plain, err := k.aead.Open(nil, nonce, body, []byte(sealedPrefix))
	if err != nil {
		return "", ErrCorruptSealedKey
	}
	return string(plain), nil
}

// IsSealed reports whether stored carries the sealed-value prefix.
func IsSealed(stored string) bool {
	return strings.HasPrefix(stored, sealedPrefix)
}
