package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

type authEnv struct {
	auth   *api.AuthServiceClient
	groups *api.GroupServiceClient
}

// newAuthEnv serves the auth and group services behind the real JWT interceptor.
func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)

	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour, auth.WithIssuer("splitledger"))
	authenticator := auth.NewPasswordAuthenticator(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	interceptors := connect.WithInterceptors(middleware.RequireAuth(jwtManager, api.PublicProcedures...))
	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), interceptors))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, nil), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &authEnv{
		auth:   api.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups: api.NewGroupServiceClient(http.DefaultClient, server.URL),
	}
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthService(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	registered, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Password:    "correct horse",
	}))
	require.NoError(t, err)
	alice := registered.Msg.User
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.Equal(t, "USD", alice.Currency)
	assert.NotEmpty(t, registered.Msg.Token)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "alice@example.com",
			DisplayName: "Other Alice",
			Password:    "another secret",
		}))
		assertCode(t, connect.CodeAlreadyExists, err)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "bob@example.com",
			DisplayName: "Bob",
			Password:    "short",
		}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "not-an-email",
			DisplayName: "Bob",
			Password:    "long enough",
		}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("login", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "ALICE@example.com ",
			Password: "correct horse",
		}))
		require.NoError(t, err)
		assert.Equal(t, alice.ID, resp.Msg.User.ID)

		_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong horse",
		}))
		assertCode(t, connect.CodeUnauthenticated, err)

		_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "nobody@example.com",
			Password: "correct horse",
		}))
		assertCode(t, connect.CodeUnauthenticated, err)
	})

	t.Run("current user requires a token", func(t *testing.T) {
		_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		assertCode(t, connect.CodeUnauthenticated, err)

		_, err = env.auth.GetCurrentUser(ctx, withToken("garbage", &api.GetCurrentUserRequest{}))
		assertCode(t, connect.CodeUnauthenticated, err)

		resp, err := env.auth.GetCurrentUser(ctx, withToken(registered.Msg.Token, &api.GetCurrentUserRequest{}))
		require.NoError(t, err)
		assert.Equal(t, "Alice", resp.Msg.User.DisplayName)
	})

	t.Run("update profile", func(t *testing.T) {
		name := "Alice Liddell"
		currency := "EUR"
		resp, err := env.auth.UpdateProfile(ctx, withToken(registered.Msg.Token, &api.UpdateProfileRequest{
			DisplayName: &name,
			Currency:    &currency,
		}))
		require.NoError(t, err)
		assert.Equal(t, "Alice Liddell", resp.Msg.User.DisplayName)
		assert.Equal(t, "EUR", resp.Msg.User.Currency)

		bad := "euro"
		_, err = env.auth.UpdateProfile(ctx, withToken(registered.Msg.Token, &api.UpdateProfileRequest{Currency: &bad}))
		assertCode(t, connect.CodeInvalidArgument, err)

		current, err := env.auth.GetCurrentUser(ctx, withToken(registered.Msg.Token, &api.GetCurrentUserRequest{}))
		require.NoError(t, err)
		assert.Equal(t, "EUR", current.Msg.User.Currency)
	})

	t.Run("token identifies the group owner", func(t *testing.T) {
		resp, err := env.groups.CreateGroup(ctx, withToken(registered.Msg.Token, &api.CreateGroupRequest{Name: "Flat"}))
		require.NoError(t, err)
		assert.Equal(t, alice.ID, resp.Msg.Group.OwnerID)
		assert.Equal(t, []string{alice.ID}, resp.Msg.Group.Members)
	})
}
