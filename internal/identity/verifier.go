// Package identity verifies provider tokens and maps provider subjects to internal users.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// Verifier turns a bearer token into the identity it vouches for.
type Verifier interface {
	Verify(ctx context.Context, token string) (model.Identity, error)
}

// Claims is the token payload understood by JWTVerifier.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// JWTVerifier verifies HS256 tokens signed with a shared key.
type JWTVerifier struct {
	key    []byte
	leeway time.Duration
}

// NewJWTVerifier constructs a verifier for the shared signing key.
func NewJWTVerifier(key []byte) *JWTVerifier {
	return &JWTVerifier{key: key, leeway: 30 * time.Second}
}

// Verify checks signature, algorithm and time claims and returns the identity in the token.
func (v *JWTVerifier) Verify(_ context.Context, token string) (model.Identity, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", errs.ErrUnauthenticated, err)
	}
	if c.Subject == "" {
		return model.Identity{}, fmt.Errorf("%w: empty subject", errs.ErrUnauthenticated)
	}
	return model.Identity{
		ExternalID: c.Subject,
		Email:      c.Email,
		Username:   c.Username,
		Name:       c.Name,
		AvatarURL:  c.Picture,
	}, nil
}

// Issue signs a token for id valid for ttl. Used by the CLI and development setups.
func (v *JWTVerifier) Issue(id model.Identity, ttl time.Duration) (string, time.Time, error) {
	if id.ExternalID == "" {
		return "", time.Time{}, errors.New("empty subject")
	}
	now := time.Now()
	exp := now.Add(ttl)
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ExternalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email:    id.Email,
		Username: id.Username,
		Name:     id.Name,
		Picture:  id.AvatarURL,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.key)
	return signed, exp, err
}

// OIDCVerifier verifies ID tokens issued by an OpenID Connect provider.
type OIDCVerifier struct {
	v *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at issuer. An empty clientID skips the audience check.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider %s: %w", issuer, err)
	}
	return &OIDCVerifier{v: provider.Verifier(&oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: clientID == "",
	})}, nil
}

// Verify validates the token and extracts profile claims.
func (o *OIDCVerifier) Verify(ctx context.Context, raw string) (model.Identity, error) {
	tok, err := o.v.Verify(ctx, raw)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", errs.ErrUnauthenticated, err)
	}
	var c struct {
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
		Name              string `json:"name"`
		Picture           string `json:"picture"`
	}
	if err := tok.Claims(&c); err != nil {
		return model.Identity{}, fmt.Errorf("%w: claims: %v", errs.ErrUnauthenticated, err)
	}
	return model.Identity{
		ExternalID: tok.Subject,
		Email:      c.Email,
		Username:   c.PreferredUsername,
		Name:       c.Name,
		AvatarURL:  c.Picture,
	}, nil
}
