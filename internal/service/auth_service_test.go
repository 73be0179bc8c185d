package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register.CallUnary(ctx, connect.NewRequest(&RegisterRequest{
		Email:       "  Asha@Example.com ",
		DisplayName: "Asha",
		Password:    "password123",
	}))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", resp.Msg.User.Email)
	assert.NotEmpty(t, resp.Msg.User.ID)
	assert.NotZero(t, resp.Msg.ExpiresAt)

	claims, err := env.jwt.Validate(resp.Msg.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Msg.User.ID, claims.UserID)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register.CallUnary(ctx, connect.NewRequest(&RegisterRequest{
			Email: "asha@example.com", DisplayName: "Other", Password: "password123",
		}))
		requireCode(t, connect.CodeAlreadyExists, err)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := env.auth.Register.CallUnary(ctx, connect.NewRequest(&RegisterRequest{
			Email: "bilal@example.com", DisplayName: "Bilal", Password: "short",
		}))
		requireCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("login", func(t *testing.T) {
		login, err := env.auth.Login.CallUnary(ctx, connect.NewRequest(&LoginRequest{
			Email: "ASHA@example.com", Password: "password123",
		}))
		require.NoError(t, err)
		assert.Equal(t, resp.Msg.User.ID, login.Msg.User.ID)
		assert.NotEmpty(t, login.Msg.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login.CallUnary(ctx, connect.NewRequest(&LoginRequest{
			Email: "asha@example.com", Password: "password124",
		}))
		requireCode(t, connect.CodeUnauthenticated, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.auth.Login.CallUnary(ctx, connect.NewRequest(&LoginRequest{
			Email: "nobody@example.com", Password: "password123",
		}))
		requireCode(t, connect.CodeUnauthenticated, err)
	})
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	asha := env.register(t, "asha")

	t.Run("current user", func(t *testing.T) {
		resp, err := env.auth.GetCurrentUser.CallUnary(ctx, as(asha.ID, &GetCurrentUserRequest{}))
		require.NoError(t, err)
		assert.Equal(t, asha, resp.Msg.User)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := env.auth.GetCurrentUser.CallUnary(ctx, connect.NewRequest(&GetCurrentUserRequest{}))
		requireCode(t, connect.CodeUnauthenticated, err)
	})

	t.Run("update", func(t *testing.T) {
		fullName, upiID := "Asha Rao", "asha.rao@okbank"
		resp, err := env.auth.UpdateProfile.CallUnary(ctx, as(asha.ID, &UpdateProfileRequest{
			FullName: &fullName,
			UPIID:    &upiID,
		}))
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", resp.Msg.User.FullName)
		assert.Equal(t, "asha.rao@okbank", resp.Msg.User.UPIID)
		assert.Equal(t, "asha", resp.Msg.User.DisplayName, "fields not sent are kept")

		stored, err := env.store.GetUserByID(ctx, asha.ID)
		require.NoError(t, err)
		assert.Equal(t, "asha.rao@okbank", stored.UPIID)
	})

	t.Run("invalid UPI id", func(t *testing.T) {
		for _, bad := range []string{"asha", "asha@", "@okbank", "a sha@okbank", "asha@ok.bank"} {
			upiID := bad
			_, err := env.auth.UpdateProfile.CallUnary(ctx, as(asha.ID, &UpdateProfileRequest{UPIID: &upiID}))
			requireCode(t, connect.CodeInvalidArgument, err)
		}
	})

	t.Run("clear UPI id", func(t *testing.T) {
		empty := ""
		resp, err := env.auth.UpdateProfile.CallUnary(ctx, as(asha.ID, &UpdateProfileRequest{UPIID: &empty}))
		require.NoError(t, err)
		assert.Empty(t, resp.Msg.User.UPIID)
	})

	t.Run("empty display name", func(t *testing.T) {
		blank := "  "
		_, err := env.auth.UpdateProfile.CallUnary(ctx, as(asha.ID, &UpdateProfileRequest{DisplayName: &blank}))
		requireCode(t, connect.CodeInvalidArgument, err)
	})
}
