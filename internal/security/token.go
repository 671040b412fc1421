package security

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrUnsupportedAlg      = errors.New("unsupported signing algorithm")
	ErrMissingSigningKey   = errors.New("signing key is required")
	ErrMissingTokenSubject = errors.New("token subject is required")
)

const tokenIssuer = "flowtrack"

// Claims defines the JWT payload.
type Claims struct {
	jwtlib.RegisteredClaims
}

// TokenIssuer signs and decodes bearer tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	method jwtlib.SigningMethod
	now    func() time.Time
}

// NewTokenIssuer creates an issuer for the given secret and algorithm name.
func NewTokenIssuer(secret, algorithm string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSigningKey
	}
	if algorithm == "" {
		algorithm = jwtlib.SigningMethodHS256.Alg()
	}
	if algorithm != jwtlib.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlg, algorithm)
	}
	return &TokenIssuer{
		secret: []byte(secret),
		method: jwtlib.SigningMethodHS256,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for subject that expires after ttl.
func (i *TokenIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrMissingTokenSubject
	}
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwtlib.NewWithClaims(i.method, claims)
	return token.SignedString(i.secret)
}

// Decode validates the signature and expiry and returns the claims.
func (i *TokenIssuer) Decode(token string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwtlib.WithValidMethods([]string{i.method.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
