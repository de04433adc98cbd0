package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const DefaultMagicLinkTTL = 15 * time.Minute

// MagicTokens issues and verifies self-contained login tokens of the form
// base64url(email ":" expiryMillis) "." hex(HMAC-SHA256(secret, payload)).
// Tokens are not persisted and cannot be revoked before expiry.
//
// The email is everything before the last colon of the payload, so an email
// that itself ends in ":digits" is parsed back without that suffix.
type MagicTokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (t MagicTokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t MagicTokens) ttl() time.Duration {
	if t.TTL > 0 {
		return t.TTL
	}
	return DefaultMagicLinkTTL
}

func (t MagicTokens) Issue(email string) string {
	expiry := t.now().Add(t.ttl()).UnixMilli()
	payload := base64.RawURLEncoding.EncodeToString([]byte(email + ":" + strconv.FormatInt(expiry, 10)))
	return payload + "." + t.sign(payload)
}

// Verify returns the embedded email when the signature matches and the token
// has not expired. Every failure, malformed or expired, yields ("", false).
func (t MagicTokens) Verify(token string) (string, bool) {
	dot := strings.LastIndex(token, ".")
	if dot <= 0 || dot == len(token)-1 {
		return "", false
	}
	payload, signature := token[:dot], token[dot+1:]

	given, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	expected := t.mac(payload)
	if len(given) != len(expected) || !hmac.Equal(given, expected) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return "", false
	}
	text := string(decoded)
	colon := strings.LastIndex(text, ":")
	if colon < 0 {
		return "", false
	}
	expiry, err := strconv.ParseInt(text[colon+1:], 10, 64)
	if err != nil {
		return "", false
	}
	if t.now().UnixMilli() > expiry {
		return "", false
	}
	return text[:colon], true
}

func (t MagicTokens) mac(payload string) []byte {
	h := hmac.New(sha256.New, t.Secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}

func (t MagicTokens) sign(payload string) string {
	return hex.EncodeToString(t.mac(payload))
}
