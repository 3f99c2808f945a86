// Package auth verifies and issues the signed identity tokens carried by API requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredential is returned when no token was presented.
	ErrNoCredential = errors.New("no credential presented")
	// ErrInvalidCredential is returned for any token that fails verification.
	ErrInvalidCredential = errors.New("invalid credential")
)

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// Identity is the authenticated caller.
type Identity struct {
	UserID string
}

// ClaimUser is the nested user object written by the login service.
type ClaimUser struct {
	ID string `json:"id"`
}

// Claims is the token payload. The user id is read from user.id and falls
// back to the registered sub claim.
type Claims struct {
	User *ClaimUser `json:"user,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the identity carried by the claims, or "" when there is none.
func (c *Claims) UserID() string {
	if c.User != nil && c.User.ID != "" {
		return c.User.ID
	}
	return c.Subject
}

type verifierOptions struct {
	requireExpiry bool
	leeway        time.Duration
}

// Option configures a Verifier.
type Option func(*verifierOptions)

// WithRequiredExpiry rejects tokens that carry no exp claim.
func WithRequiredExpiry() Option {
	return func(o *verifierOptions) { o.requireExpiry = true }
}

// WithLeeway tolerates clock skew when checking exp, nbf and iat.
func WithLeeway(d time.Duration) Option {
	return func(o *verifierOptions) { o.leeway = d }
}

// Verifier checks token signatures against a shared secret.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier builds a Verifier for the given HMAC secret.
func NewVerifier(secret string, opts ...Option) *Verifier {
	var o verifierOptions
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods(hmacMethods)}
	if o.leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(o.leeway))
	}
	if o.requireExpiry {
		parserOpts = append(parserOpts, jwt.WithExpirationRequired())
	}

	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(parserOpts...)}
}

// Verify validates token and returns the identity it carries.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrNoCredential
	}

	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidCredential
	}

	id := claims.UserID()
	if id == "" {
		return Identity{}, fmt.Errorf("%w: token carries no user id", ErrInvalidCredential)
	}
	return Identity{UserID: id}, nil
}

// Issuer mints tokens in the format Verify accepts. Login lives in the users
// service; this is used by the seed tool and tests.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer builds an Issuer for the given HMAC secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for userID. A non-positive ttl produces a token without exp.
func (i *Issuer) Issue(userID string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		User: &ClaimUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
