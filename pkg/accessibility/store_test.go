package accessibility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-navigator/pkg/preferences"
	"github.com/blaubaer/voice-navigator/pkg/signal"
)

func TestStore_defaultsToOff(t *testing.T) {
	instance := NewStore(preferences.NewMemory())

	chosen, err := instance.Load(context.Background())
	require.NoError(t, err)

	assert.False(t, chosen)
	assert.Equal(t, signal.StateOff, instance.State())
	assert.False(t, instance.StartListening())
	assert.False(t, instance.SetSpeaking(true))
}

func TestStore_SetVoiceEnabled_persists(t *testing.T) {
	ctx := context.Background()
	persistence := preferences.NewMemory()
	instance := NewStore(persistence)

	require.NoError(t, instance.SetVoiceEnabled(ctx, true))

	reloaded := NewStore(persistence)
	chosen, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.True(t, chosen)
	assert.True(t, reloaded.VoiceEnabled())
	assert.False(t, reloaded.ConsentAsked())
}

func TestStore_SetVoiceEnabled_persistsFirstChoice(t *testing.T) {
	ctx := context.Background()
	persistence := preferences.NewMemory()
	instance := NewStore(persistence)
	chosen, err := instance.Load(ctx)
	require.NoError(t, err)
	require.False(t, chosen)
	require.False(t, instance.Chosen())

	require.NoError(t, instance.SetVoiceEnabled(ctx, false))
	assert.True(t, instance.Chosen())

	reloaded := NewStore(persistence)
	chosen, err = reloaded.Load(ctx)
	require.NoError(t, err)
	assert.True(t, chosen)
	assert.True(t, reloaded.Chosen())
	assert.False(t, reloaded.VoiceEnabled())
}

func TestStore_speakingStopsListening(t *testing.T) {
	instance := NewStore(nil)
	require.NoError(t, instance.SetVoiceEnabled(context.Background(), true))

	require.True(t, instance.StartListening())
	assert.Equal(t, signal.StateListening, instance.State())

	require.True(t, instance.SetSpeaking(true))
	assert.False(t, instance.Listening())
	assert.Equal(t, signal.StateSpeaking, instance.State())

	assert.False(t, instance.StartListening(), "must not listen while speaking")

	assert.False(t, instance.SetSpeaking(false))
	assert.True(t, instance.StartListening())
}

func TestStore_disableClearsEverything(t *testing.T) {
	ctx := context.Background()
	instance := NewStore(nil)
	require.NoError(t, instance.SetVoiceEnabled(ctx, true))
	instance.SetSpeaking(true)

	var observed []Snapshot
	instance.OnChange(func(_, current Snapshot) {
		observed = append(observed, current)
	})

	require.NoError(t, instance.SetVoiceEnabled(ctx, false))

	assert.Equal(t, []Snapshot{{}}, observed)
	assert.Equal(t, signal.StateOff, instance.State())
}

func TestStore_neverListeningAndSpeaking(t *testing.T) {
	ctx := context.Background()
	instance := NewStore(nil)
	instance.OnChange(func(_, current Snapshot) {
		assert.False(t, current.Listening && current.Speaking)
	})

	steps := []func(){
		func() { _ = instance.SetVoiceEnabled(ctx, true) },
		func() { instance.StartListening() },
		func() { instance.SetSpeaking(true) },
		func() { instance.StartListening() },
		func() { instance.SetSpeaking(false) },
		func() { instance.StartListening() },
		func() { instance.SetSpeaking(true) },
		func() { _ = instance.SetVoiceEnabled(ctx, false) },
		func() { instance.StartListening() },
		func() { instance.SetSpeaking(true) },
	}
	for _, step := range steps {
		step()
		s := instance.Snapshot()
		assert.False(t, s.Listening && s.Speaking)
	}
}

func TestStore_MarkConsentAsked(t *testing.T) {
	instance := NewStore(nil)

	assert.True(t, instance.MarkConsentAsked())
	assert.False(t, instance.MarkConsentAsked())
	assert.True(t, instance.ConsentAsked())
}

func TestStore_OnChange_unregister(t *testing.T) {
	instance := NewStore(nil)
	calls := 0
	unregister := instance.OnChange(func(_, _ Snapshot) { calls++ })

	require.NoError(t, instance.SetSignOverlayEnabled(context.Background(), true))
	unregister()
	require.NoError(t, instance.SetSignOverlayEnabled(context.Background(), false))

	assert.Equal(t, 1, calls)
	assert.Empty(t, instance.listeners)
	assert.Empty(t, instance.listenerOrder)
}

func TestStore_OnChange_unregisterKeepsOthers(t *testing.T) {
	instance := NewStore(nil)
	var calls []string
	for i := 0; i < 100; i++ {
		instance.OnChange(func(_, _ Snapshot) { calls = append(calls, "temporary") })()
	}
	unregisterFirst := instance.OnChange(func(_, _ Snapshot) { calls = append(calls, "first") })
	instance.OnChange(func(_, _ Snapshot) { calls = append(calls, "second") })
	unregisterFirst()

	require.NoError(t, instance.SetSignOverlayEnabled(context.Background(), true))

	assert.Equal(t, []string{"second"}, calls)
	assert.Len(t, instance.listenerOrder, 1)
}
