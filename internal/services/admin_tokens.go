package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "ADMIN"

var (
	ErrNotAdmin      = errors.New("token does not carry the admin role")
	ErrAdminDisabled = errors.New("admin tokens are disabled: ADMIN_JWT_SECRET is not set")
)

type AdminClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c AdminClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AdminTokens mints and checks the HS256 bearer tokens that guard the admin
// API. There is no refresh flow; operators mint a new token with portalctl.
// Without a secret every Mint and Parse fails with ErrAdminDisabled.
type AdminTokens struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func (t AdminTokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Enabled reports whether a signing secret is configured.
func (t AdminTokens) Enabled() bool {
	return len(t.Secret) > 0
}

func (t AdminTokens) Mint(subject string, roles []string) (string, time.Time, error) {
	if !t.Enabled() {
		return "", time.Time{}, ErrAdminDisabled
	}
	now := t.now().UTC()
	ttl := t.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	exp := now.Add(ttl)
	claims := AdminClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	return signed, exp, err
}

// Parse validates signature, issuer and expiry and requires the admin role.
func (t AdminTokens) Parse(tokenStr string) (AdminClaims, error) {
	if !t.Enabled() {
		return AdminClaims{}, ErrAdminDisabled
	}
	claims := AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithIssuer(t.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return AdminClaims{}, err
	}
	if !claims.HasRole(RoleAdmin) {
		return AdminClaims{}, ErrNotAdmin
	}
	return claims, nil
}
