package credential

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenEnv overrides the stored token when set.
const TokenEnv = "NOTIFEED_TOKEN"

// ErrExpired is returned for a JWT whose exp claim has passed. An expired
// token is treated the same as a missing one.
var ErrExpired = errors.New("credential expired")

// Provider supplies the bearer token for API requests.
type Provider interface {
	Token() (string, error)
}

// StaticToken is a Provider that always returns the same token.
type StaticToken string

// Token returns the token, or ErrNotFound when it is empty.
func (t StaticToken) Token() (string, error) {
	if t == "" {
		return "", ErrNotFound
	}
	return string(t), nil
}

// ChainProvider resolves the token from the environment first, then from
// a Store. The token is looked up on every call so a login or logout takes
// effect without restarting.
type ChainProvider struct {
	store  Store
	lookup func(string) (string, bool)
	now    func() time.Time
}

// NewProvider returns a ChainProvider reading TokenEnv and then store.
func NewProvider(store Store) *ChainProvider {
	return &ChainProvider{
		store:  store,
		lookup: os.LookupEnv,
		now:    time.Now,
	}
}

// Token returns the current bearer token.
func (p *ChainProvider) Token() (string, error) {
	token := ""
	if v, ok := p.lookup(TokenEnv); ok {
		token = strings.TrimSpace(v)
	}

	if token == "" && p.store != nil {
		v, err := p.store.Get(TokenKey)
		if err != nil {
			return "", err
		}
		token = strings.TrimSpace(v)
	}

	if token == "" {
		return "", ErrNotFound
	}
	if err := checkExpiry(token, p.now()); err != nil {
		return "", err
	}
	return token, nil
}

// checkExpiry rejects JWTs whose exp claim is in the past. The signature is
// not verified; the server does that. Opaque tokens are accepted as is.
func checkExpiry(token string, now time.Time) error {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if !now.Before(exp.Time) {
		return ErrExpired
	}
	return nil
}

// Validate reports whether token is usable right now: non-empty and, for a
// JWT, not yet expired.
func Validate(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNotFound
	}
	return checkExpiry(token, time.Now())
}
