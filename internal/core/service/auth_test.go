package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
)

func authEnvelope(t *testing.T, token string, user domain.User) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{"token": token, "user": user})
	require.NoError(t, err)
	return data
}

func TestAuthLogin(t *testing.T) {
	creds := service.Credentials{Email: "test@example.com", Password: "Test123456"}
	user := domain.User{ID: 1, Name: "Test User", Email: creds.Email, Role: "customer"}

	t.Run("Success", func(t *testing.T) {
		gw := new(MockGateway)
		kv := storage.NewMemory()
		auth := service.NewAuth(gw, kv)

		gw.On("Post", mock.Anything, "/api/auth/login", creds).
			Return(authEnvelope(t, "tok123", user), nil)

		sess, err := auth.Login(context.Background(), creds)
		require.NoError(t, err)
		assert.Equal(t, "tok123", sess.Token)
		assert.Equal(t, user, sess.User)

		assert.Equal(t, domain.Authenticated, auth.State())
		assert.True(t, auth.Authenticated())
		assert.Equal(t, "tok123", auth.Token())
		assert.Empty(t, auth.Err())

		token, err := kv.Load("auth_token")
		require.NoError(t, err)
		assert.Equal(t, []byte("tok123"), token)
		_, err = kv.Load("user_info")
		assert.NoError(t, err)
	})

	t.Run("BlockedAccount", func(t *testing.T) {
		gw := new(MockGateway)
		auth := service.NewAuth(gw, storage.NewMemory())

		gw.On("Post", mock.Anything, "/api/auth/login", creds).
			Return(nil, fmt.Errorf("%w: blocked", domain.ErrForbidden))

		_, err := auth.Login(context.Background(), creds)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		assert.Equal(t, domain.Anonymous, auth.State())
		assert.False(t, auth.Authenticated())
		assert.Contains(t, auth.Err(), "blocked")
	})

	t.Run("InvalidEmailNeverCallsAPI", func(t *testing.T) {
		gw := new(MockGateway)
		auth := service.NewAuth(gw, storage.NewMemory())

		_, err := auth.Login(context.Background(), service.Credentials{
			Email: "not-an-email", Password: "Test123456",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		gw.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthRegister(t *testing.T) {

	t.Run("WeakPasswordRejected", func(t *testing.T) {
		gw := new(MockGateway)
		auth := service.NewAuth(gw, storage.NewMemory())

		_, err := auth.Register(context.Background(), service.Registration{
			Name: "newuser", Email: "new@example.com", Password: "short",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("MismatchedConfirmRejected", func(t *testing.T) {
		gw := new(MockGateway)
		auth := service.NewAuth(gw, storage.NewMemory())

		_, err := auth.Register(context.Background(), service.Registration{
			Name: "newuser", Email: "new@example.com",
			Password: "Test123456", PasswordConfirm: "Other123456",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Success", func(t *testing.T) {
		gw := new(MockGateway)
		auth := service.NewAuth(gw, storage.NewMemory())
		user := domain.User{ID: 2, Name: "newuser", Email: "new@example.com"}

		gw.On("Post", mock.Anything, "/api/auth/register", mock.Anything).
			Return(authEnvelope(t, "tok456", user), nil)

		sess, err := auth.Register(context.Background(), service.Registration{
			Name: "newuser", Email: "new@example.com", Password: "Test123456",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, sess.User.ID)
		assert.True(t, auth.Authenticated())
	})
}

func TestAuthRestore(t *testing.T) {

	t.Run("RestoresPersistedSession", func(t *testing.T) {
		kv := storage.NewMemory()
		require.NoError(t, kv.Save("auth_token", []byte("tok123")))
		userData, _ := json.Marshal(domain.User{ID: 1, Name: "Test User"})
		require.NoError(t, kv.Save("user_info", userData))

		auth := service.NewAuth(new(MockGateway), kv)
		assert.True(t, auth.Restore())
		assert.True(t, auth.Authenticated())
		assert.Equal(t, 1, auth.UserID())
	})

	t.Run("NothingPersisted", func(t *testing.T) {
		auth := service.NewAuth(new(MockGateway), storage.NewMemory())
		assert.False(t, auth.Restore())
		assert.Equal(t, domain.Anonymous, auth.State())
	})

	t.Run("CorruptUserClears", func(t *testing.T) {
		kv := storage.NewMemory()
		require.NoError(t, kv.Save("auth_token", []byte("tok123")))
		require.NoError(t, kv.Save("user_info", []byte("{broken")))

		auth := service.NewAuth(new(MockGateway), kv)
		assert.False(t, auth.Restore())

		_, err := kv.Load("auth_token")
		assert.Error(t, err, "corrupt state must be cleared")
	})
}

func TestAuthTeardown(t *testing.T) {
	gw := new(MockGateway)
	kv := storage.NewMemory()
	auth := service.NewAuth(gw, kv)

	creds := service.Credentials{Email: "test@example.com", Password: "Test123456"}
	gw.On("Post", mock.Anything, "/api/auth/login", creds).
		Return(authEnvelope(t, "tok123", domain.User{ID: 1, Name: "Test User"}), nil)

	_, err := auth.Login(context.Background(), creds)
	require.NoError(t, err)

	auth.Teardown()

	assert.Equal(t, domain.Anonymous, auth.State())
	assert.Empty(t, auth.Token())
	_, err = kv.Load("auth_token")
	assert.Error(t, err)
	_, err = kv.Load("user_info")
	assert.Error(t, err)
}

func TestAuthRefresh(t *testing.T) {

	t.Run("FailureTearsDown", func(t *testing.T) {
		gw := new(MockGateway)
		kv := storage.NewMemory()
		auth := service.NewAuth(gw, kv)

		creds := service.Credentials{Email: "test@example.com", Password: "Test123456"}
		gw.On("Post", mock.Anything, "/api/auth/login", creds).
			Return(authEnvelope(t, "tok123", domain.User{ID: 1, Name: "Test User"}), nil)
		gw.On("Post", mock.Anything, "/api/auth/refresh", nil).
			Return(nil, domain.ErrUnauthorized)

		_, err := auth.Login(context.Background(), creds)
		require.NoError(t, err)

		assert.False(t, auth.Refresh(context.Background()))
		assert.False(t, auth.Authenticated())
	})

	t.Run("AnonymousIsNoop", func(t *testing.T) {
		gw := new(MockGateway)
		auth := service.NewAuth(gw, storage.NewMemory())

		assert.False(t, auth.Refresh(context.Background()))
		gw.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	})
}
