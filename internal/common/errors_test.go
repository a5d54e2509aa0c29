package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrTokenExpired_IsInvalidToken(t *testing.T) {
	assert.True(t, errors.Is(ErrTokenExpired, ErrInvalidToken))
	assert.False(t, errors.Is(ErrInvalidToken, ErrTokenExpired))
}

func TestAccountErrors_AreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrUserNotFound, ErrInvalidCredential))
	assert.False(t, errors.Is(ErrUserExists, ErrUserNotFound))
	assert.False(t, errors.Is(ErrorNotFound, ErrUserNotFound))
}
