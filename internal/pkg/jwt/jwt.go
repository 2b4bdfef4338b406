package jwt

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningMethod = errors.New("jwt: invalid signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 signing key must be at least 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token has expired")
	ErrInvalidToken         = errors.New("jwt: invalid token")
)

// JWT signs and verifies access tokens.
type JWT interface {
	Generate(userID int64) (string, error)
	Verify(token string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	UUID      generator
}

// Claims is the token payload. Subject holds the decimal user id, which is
// also the casbin subject used for authorization.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id,string"`
}

type authKey struct{}

// GetAuth returns the claims stored by SetAuth, or nil for anonymous requests.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(authKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

// SetAuth stores verified claims on ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authKey{}, clm)
}

// HS512 is a JWT implementation using a shared HMAC secret.
type HS512 struct {
	cfg Config
}

// NewHS512 validates the secret length and returns an HS512 signer/verifier.
func NewHS512(cfg Config) (*HS512, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}
	return &HS512{cfg: cfg}, nil
}

// Generate signs a token for userID valid for the configured TTL.
func (h *HS512) Generate(userID int64) (string, error) {
	now := h.cfg.Clock.Now()

	clm := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        h.cfg.UUID.Generate(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    h.cfg.Issuer,
			Audience:  h.cfg.Audiences,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.TTL)),
		},
		UserID: userID,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS512, clm).SignedString(h.cfg.Secret)
}

// Verify parses token and checks signature, issuer, audience and expiry.
func (h *HS512) Verify(token string) (Claims, error) {
	var clm Claims

	opts := []jwt.ParserOption{
		jwt.WithIssuer(h.cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if len(h.cfg.Audiences) > 0 {
		opts = append(opts, jwt.WithAudience(h.cfg.Audiences...))
	}
	if h.cfg.Clock != nil {
		opts = append(opts, jwt.WithTimeFunc(h.cfg.Clock.Now))
	}

	tkn, err := jwt.ParseWithClaims(token, &clm, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS512 {
			return nil, ErrInvalidSigningMethod
		}
		return h.cfg.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, err
	}
	if !tkn.Valid {
		return Claims{}, ErrInvalidToken
	}

	return clm, nil
}
