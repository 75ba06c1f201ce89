package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaultsToDisabled(t *testing.T) {
	actual, chosen, err := Load(context.Background(), NewMemory())
	require.NoError(t, err)

	assert.False(t, chosen)
	assert.Equal(t, Preferences{}, actual)
}

func TestPreferences_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, Preferences{VoiceEnabled: true}.Save(ctx, store))

	actual, chosen, err := Load(ctx, store)
	require.NoError(t, err)
	assert.True(t, chosen)
	assert.Equal(t, Preferences{VoiceEnabled: true}, actual)
}

func TestLoad_illegalValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, KeyVoiceEnabled, []byte("maybe")))

	_, _, err := Load(ctx, store)
	assert.ErrorContains(t, err, `illegal value for preference "voiceEnabled"`)
}

func TestBadger_inMemory(t *testing.T) {
	ctx := context.Background()
	store, err := NewBadger(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Preferences{VoiceEnabled: true, SignOverlayEnabled: true}.Save(ctx, store))
	actual, chosen, err := Load(ctx, store)
	require.NoError(t, err)
	assert.True(t, chosen)
	assert.Equal(t, Preferences{VoiceEnabled: true, SignOverlayEnabled: true}, actual)
}

func TestNewBadger_requiresDirectory(t *testing.T) {
	_, err := NewBadger(BadgerOptions{})
	assert.Error(t, err)
}
