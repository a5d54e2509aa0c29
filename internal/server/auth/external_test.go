package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/blockkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}
}

func TestExternalVerifier_Success(t *testing.T) {
	v := NewExternalVerifier("broker-secret")

	a, err := SignExternalAssertion("broker-secret", ExternalProfile{Email: "bob@example.com", Name: "Bob", Picture: "pic"}, validClaims())
	require.NoError(t, err)

	p, err := v.Verify(a)
	require.NoError(t, err)
	assert.Equal(t, &ExternalProfile{Email: "bob@example.com", Name: "Bob", Picture: "pic"}, p)
}

func TestExternalVerifier_Disabled(t *testing.T) {
	v := NewExternalVerifier("")
	assert.False(t, v.Enabled())

	_, err := v.Verify("anything")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	var nilVerifier *ExternalVerifier
	assert.False(t, nilVerifier.Enabled())
}

func TestExternalVerifier_Rejects(t *testing.T) {
	v := NewExternalVerifier("broker-secret")

	wrongKey, err := SignExternalAssertion("other", ExternalProfile{Email: "bob@example.com"}, validClaims())
	require.NoError(t, err)

	noEmail, err := SignExternalAssertion("broker-secret", ExternalProfile{Name: "Bob"}, validClaims())
	require.NoError(t, err)

	expired, err := SignExternalAssertion("broker-secret", ExternalProfile{Email: "bob@example.com"},
		jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))})
	require.NoError(t, err)

	noExp, err := SignExternalAssertion("broker-secret", ExternalProfile{Email: "bob@example.com"}, jwt.RegisteredClaims{})
	require.NoError(t, err)

	for name, a := range map[string]string{
		"wrong key": wrongKey, "no email": noEmail, "expired": expired, "no exp": noExp, "garbage": "x.y.z",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(a)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}
