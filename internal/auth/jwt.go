// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/stackrec/internal/config"
	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/middleware"
)

// Verifier checks ES256 access tokens issued by the identity provider.
// This service never issues tokens.
type Verifier struct {
	publicKey jwk.Key
	issuer    string
	audience  string
}

func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	publicKeyPEM, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}

	publicKey, err := jwk.ParseKey(publicKeyPEM, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return NewVerifierFromKey(publicKey, cfg.Issuer, cfg.Audience)
}

func NewVerifierFromKey(publicKey jwk.Key, issuer, audience string) (*Verifier, error) {
	if setErr := publicKey.Set(jwk.AlgorithmKey, jwa.ES256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &Verifier{
		publicKey: publicKey,
		issuer:    issuer,
		audience:  audience,
	}, nil
}

func (v *Verifier) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.ES256(), v.publicKey),
		jwt.WithValidate(true),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var role string
	if err := token.Get("role", &role); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	return &middleware.AccessTokenClaims{
		Subject: subject,
		Role:    role,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

var _ middleware.TokenVerifier = (*Verifier)(nil)
