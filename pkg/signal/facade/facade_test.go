package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-navigator/pkg/signal"
	"github.com/blaubaer/voice-navigator/pkg/signal/systray"
)

func TestFacade_none(t *testing.T) {
	conf := NewConfiguration()
	var instance Facade

	require.NoError(t, instance.Initialize(&conf, nil))

	assert.Equal(t, signal.TypeNone, instance.GetType())
	assert.NoError(t, instance.Ensure(signal.NewContext(signal.StateIdle, "Home")))
	assert.NoError(t, instance.Update())
	assert.NoError(t, instance.Dispose())
}

func TestFacade_systray(t *testing.T) {
	conf := NewConfiguration()
	conf.Type = signal.TypeSystray
	var tooltips []string
	instance := Facade{Systray: &systray.Systray{
		IconOff: []byte("off"),
		IconOn:  []byte("on"),
		Apply: func(_ []byte, tooltip string) {
			tooltips = append(tooltips, tooltip)
		},
	}}

	require.NoError(t, instance.Initialize(&conf, nil))
	assert.Equal(t, signal.TypeSystray, instance.GetType())
	require.NoError(t, instance.Ensure(signal.NewContext(signal.StateOff, "")))
	require.NoError(t, instance.Dispose())

	assert.Equal(t, []string{"Voice assistant off"}, tooltips)
	assert.Equal(t, signal.TypeNone, instance.GetType())
}

func TestFacade_systrayUnavailable(t *testing.T) {
	conf := NewConfiguration()
	conf.Type = signal.TypeSystray
	var instance Facade

	assert.EqualError(t, instance.Initialize(&conf, nil), "signal systray is not available in this mode")
}
