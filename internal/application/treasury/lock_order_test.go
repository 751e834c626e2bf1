package treasury

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLockOrder(t *testing.T) {
	a := uuid.MustParse("0a000000-0000-0000-0000-000000000000")
	b := uuid.MustParse("5b000000-0000-0000-0000-000000000000")
	c := uuid.MustParse("fc000000-0000-0000-0000-000000000000")

	assert.Equal(t, []uuid.UUID{a, b, c}, lockOrder(c, a, b))
	assert.Equal(t, []uuid.UUID{a, b, c}, lockOrder(b, c, a))
	assert.Equal(t, []uuid.UUID{a, c}, lockOrder(c, a, c, a))
	assert.Equal(t, lockOrder(b, a), lockOrder(a, b))
	assert.Empty(t, lockOrder())
}
