package systray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-navigator/pkg/signal"
)

type applied struct {
	icon    string
	tooltip string
}

func TestSystray_Ensure(t *testing.T) {
	var actual []applied
	instance := Systray{
		IconOff:       []byte("off"),
		IconOn:        []byte("on"),
		IconListening: []byte("listening"),
		Apply: func(icon []byte, tooltip string) {
			actual = append(actual, applied{string(icon), tooltip})
		},
	}
	require.NoError(t, instance.Initialize())

	require.NoError(t, instance.Ensure(signal.NewContext(signal.StateOff, "Home")))
	require.NoError(t, instance.Ensure(signal.NewContext(signal.StateListening, "Home")))
	require.NoError(t, instance.Ensure(signal.NewContext(signal.StateListening, "Home")))
	require.NoError(t, instance.Ensure(signal.NewContext(signal.StateSpeaking, "Home")))

	assert.Equal(t, []applied{
		{"off", "Voice assistant off"},
		{"listening", "Listening...\nPage: Home"},
		{"on", "Speaking...\nPage: Home"},
	}, actual)
}

func TestSystray_Initialize_requiresIcons(t *testing.T) {
	assert.EqualError(t, (&Systray{IconOn: []byte("on")}).Initialize(), "IconOff is empty")
	assert.EqualError(t, (&Systray{IconOff: []byte("off")}).Initialize(), "IconOn is empty")
}
