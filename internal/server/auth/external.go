package auth

import (
	"strings"

	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// ExternalProfile is what an identity broker vouches for.
type ExternalProfile struct {
	Email   string
	Name    string
	Picture string
}

type externalClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// ExternalVerifier checks assertions signed by a trusted identity broker
// (HS256 with a secret shared with the broker).
type ExternalVerifier struct {
	secret []byte
}

func NewExternalVerifier(secret string) *ExternalVerifier {
	return &ExternalVerifier{secret: []byte(secret)}
}

// Enabled reports whether a broker secret is configured.
func (v *ExternalVerifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify returns the profile carried by assertion. Disabled verifiers reject
// everything with common.ErrorUnauthorized.
func (v *ExternalVerifier) Verify(assertion string) (*ExternalProfile, error) {
	if !v.Enabled() {
		return nil, common.ErrorUnauthorized
	}

	claims := &externalClaims{}
	_, err := jwt.ParseWithClaims(assertion, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return nil, common.ErrInvalidToken
	}

	return &ExternalProfile{Email: email, Name: claims.Name, Picture: claims.Picture}, nil
}

// SignExternalAssertion produces an assertion the way a broker would. Used by
// tests and local tooling.
func SignExternalAssertion(secret string, p ExternalProfile, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, externalClaims{
		RegisteredClaims: claims,
		Email:            p.Email,
		Name:             p.Name,
		Picture:          p.Picture,
	})
	return token.SignedString([]byte(secret))
}
