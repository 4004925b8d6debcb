package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	defaultCost := PasswordHashCost
	PasswordHashCost = bcrypt.MinCost
	defer func() {
		PasswordHashCost = defaultCost
	}()

	passwordHash, err := HashPassword("deadlift")
	require.NoError(t, err)
	assert.NotEmpty(t, passwordHash)
	assert.True(t, CheckPasswordHash("deadlift", passwordHash))
	assert.False(t, CheckPasswordHash("squat", passwordHash))

	// generated with cost 14
	assert.True(t, CheckPasswordHash("testpass", "$2a$14$6Gmhg85si2etd3K9oB8nYu1cxfbrdmhkg6wI6OXsa88IF4L2r/L9i"))
	assert.False(t, CheckPasswordHash("testpass", "not-a-hash"))
}
