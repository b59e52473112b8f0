package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const defaultLeeway = 30 * time.Second

// Common verification errors.
var (
	ErrMissingSubject = errors.New("token missing sub")
	ErrInvalidToken   = errors.New("invalid token")
)

// Verifier validates Clerk session JWTs against the instance JWKS.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// NewVerifier builds a verifier that fetches signing keys from jwksURL.
// An empty issuer disables the issuer check.
func NewVerifier(issuer, jwksURL string) (*Verifier, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url must be set")
	}

	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}

	return NewVerifierWithKeyfunc(issuer, keyProvider.Keyfunc), nil
}

// NewVerifierWithKeyfunc builds a verifier over an explicit key lookup.
func NewVerifierWithKeyfunc(issuer string, kf jwt.Keyfunc) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithLeeway(defaultLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}),
	}
	if issuer = strings.TrimRight(strings.TrimSpace(issuer), "/"); issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &Verifier{
		keyfunc: kf,
		parser:  jwt.NewParser(opts...),
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID       string `json:"sid"`
	AuthorizedParty string `json:"azp"`
}

// Verify parses and validates a session token, returning its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	var sc sessionClaims
	token, err := v.parser.ParseWithClaims(tokenString, &sc, v.keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if sc.Subject == "" {
		return nil, ErrMissingSubject
	}

	claims := &Claims{
		Subject:         sc.Subject,
		SessionID:       sc.SessionID,
		Issuer:          sc.Issuer,
		AuthorizedParty: sc.AuthorizedParty,
	}
	if sc.ExpiresAt != nil {
		claims.ExpiresAt = sc.ExpiresAt.Time
	}

	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
