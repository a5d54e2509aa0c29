package dbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", Placeholders(1, 0))
	assert.Equal(t, "$1", Placeholders(1, 1))
	assert.Equal(t, "$2, $3, $4", Placeholders(2, 3))
}

func TestStringArgs(t *testing.T) {
	assert.Equal(t, []any{"u1", "b1", "b2"}, StringArgs([]any{"u1"}, []string{"b1", "b2"}))
	assert.Equal(t, []any{}, StringArgs(nil, nil))
}
