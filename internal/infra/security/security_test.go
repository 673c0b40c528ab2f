package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/middleware"
	domainuser "hotelbooking/internal/domain/user"
)

type guardedMsg struct {
	resource, action string
}

func (g guardedMsg) Permission() (string, string) { return g.resource, g.action }

type openMsg struct{}

func TestAuthorizerRoles(t *testing.T) {
	a, err := NewAuthorizer()
	require.NoError(t, err)

	guest := auth.WithActor(context.Background(), auth.Actor{UserID: "u1", Role: domainuser.RoleUser})
	admin := auth.WithActor(context.Background(), auth.Actor{UserID: "a1", Role: domainuser.RoleAdmin})

	assert.NoError(t, a.Authorize(guest, guardedMsg{"booking", "create"}))
	assert.ErrorIs(t, a.Authorize(guest, guardedMsg{"booking", "admin_update"}), auth.ErrForbidden)
	assert.ErrorIs(t, a.Authorize(guest, guardedMsg{"room", "create"}), auth.ErrForbidden)

	assert.NoError(t, a.Authorize(admin, guardedMsg{"booking", "admin_update"}))
	assert.NoError(t, a.Authorize(admin, guardedMsg{"booking", "cancel"}), "admin inherits guest permissions")
	assert.NoError(t, a.Authorize(admin, guardedMsg{"ledger", "read"}))
}

func TestAuthorizerAnonymous(t *testing.T) {
	a, err := NewAuthorizer()
	require.NoError(t, err)

	assert.ErrorIs(t, a.Authorize(context.Background(), guardedMsg{"booking", "create"}), auth.ErrUnauthenticated)
	assert.NoError(t, a.Authorize(context.Background(), openMsg{}))
}

type sample struct {
	RoomID    string `validate:"required"`
	Guests    int    `validate:"gte=1"`
	NoOfRooms int    `validate:"gte=1"`
	Status    string `validate:"omitempty,oneof=Pending Confirmed"`
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(context.Background(), sample{RoomID: "r1", Guests: 1, NoOfRooms: 1}))

	err := v.Validate(context.Background(), sample{Guests: 0, NoOfRooms: 1, Status: "Nope"})
	require.ErrorIs(t, err, middleware.ErrInvalidInput)
	var verr *middleware.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "roomID is required", verr.Fields["roomID"])
	assert.Equal(t, "guests must be at least 1", verr.Fields["guests"])
	assert.Equal(t, "status must be one of Pending, Confirmed", verr.Fields["status"])
}

func TestValidatorIgnoresNonStructs(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(context.Background(), "text"))
	assert.NoError(t, v.Validate(context.Background(), nil))
}
