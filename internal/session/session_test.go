package session

import (
	"context"
	"strings"
	"testing"

	"github.com/2beens/fittrack/internal/kv"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	service := NewService(kv.NewMemoryStore())

	_, ok, err := service.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := service.Login(ctx, " jane.doe@example.com ", "")
	require.NoError(t, err)
	assert.Equal(t, &User{Email: "jane.doe@example.com", Name: "jane.doe"}, user)

	current, ok, err := service.Current(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user, current)

	email, ok, err := service.Email(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jane.doe@example.com", email)

	name := gofakeit.Name()
	user, err = service.Login(ctx, gofakeit.Email(), name)
	require.NoError(t, err)
	assert.Equal(t, name, user.Name)
}

func TestService_Login_Invalid(t *testing.T) {
	ctx := context.Background()
	service := NewService(kv.NewMemoryStore())

	for _, email := range []string{"", "no-at-sign", "@example.com", "   "} {
		_, err := service.Login(ctx, email, "x")
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
		assert.True(t, IsValidationError(err))
	}

	_, err := service.Login(ctx, "a@b.c", strings.Repeat("n", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, ok, err := service.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_LogoutAndRename(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	service := NewService(store)

	_, err := service.Rename(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = service.Login(ctx, "sam@example.com", "Sam")
	require.NoError(t, err)

	user, err := service.Rename(ctx, "  Samantha ")
	require.NoError(t, err)
	assert.Equal(t, &User{Email: "sam@example.com", Name: "Samantha"}, user)

	require.NoError(t, service.Logout(ctx))
	_, ok, err := service.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = store.Get(ctx, kv.KeyUser)
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	_, ok, err = service.Email(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_MalformedUser(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, kv.KeyUser, "not-json"))

	_, ok, err := NewService(store).Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_ProfileImage(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	service := NewService(store)

	_, ok, err := service.ProfileImage(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, service.SetProfileImage(ctx, "https://example.com/me.png"), ErrInvalidImage)

	image := "data:image/png;base64,iVBORw0KGgo="
	require.NoError(t, service.SetProfileImage(ctx, image))
	got, ok, err := service.ProfileImage(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, image, got)

	// stored raw, not JSON encoded
	raw, err := store.Get(ctx, kv.KeyProfileImage)
	require.NoError(t, err)
	assert.Equal(t, image, raw)
}

func TestService_Theme(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	service := NewService(store)

	theme, err := service.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, theme.ID)

	_, err = service.SetTheme(ctx, "neon")
	assert.ErrorIs(t, err, ErrUnknownTheme)

	theme, err = service.SetTheme(ctx, "ocean")
	require.NoError(t, err)
	assert.Equal(t, "Ocean Blue", theme.Name)

	theme, err = service.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ocean", theme.ID)

	require.NoError(t, store.Set(ctx, kv.KeyTheme, "removed-theme"))
	theme, err = service.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, theme.ID)

	assert.Len(t, Themes, 6)
}
