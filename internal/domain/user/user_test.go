package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserDefaults(t *testing.T) {
	u, err := NewUser(CreateParams{ID: " u-1 ", Email: " Guest@Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, ID("u-1"), u.ID)
	assert.Equal(t, "guest@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "u-1", u.DisplayName())

	_, err = NewUser(CreateParams{ID: "u", Role: "root"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateContact(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u-1", Name: "Asha", Role: RoleAdmin})
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, u.UpdateContact("", "Asha", now))
	assert.True(t, u.UpdateContact("asha@example.com", "", now))
	assert.Equal(t, now, u.UpdatedAt)
}
