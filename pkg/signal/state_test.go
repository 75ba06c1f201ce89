package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Set(t *testing.T) {
	cases := map[string]State{
		"off":       StateOff,
		" OFF ":     StateOff,
		"on":        StateIdle,
		"idle":      StateIdle,
		"listening": StateListening,
		"Speaking":  StateSpeaking,
	}
	for plain, expected := range cases {
		t.Run(plain, func(t *testing.T) {
			var actual State
			require.NoError(t, actual.Set(plain))
			assert.Equal(t, expected, actual)
		})
	}

	var actual State
	assert.EqualError(t, actual.Set("loud"), "illegal-signal-state: loud")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "off,idle,listening,speaking", AllStates.String())
	assert.Equal(t, "illegal-signal-state-66", State(66).String())
}

func TestType_Set(t *testing.T) {
	cases := map[string]Type{
		"none":          TypeNone,
		"hue":           TypeHue,
		"homeAssistant": TypeHomeAssistant,
		"ha":            TypeHomeAssistant,
		" Systray":      TypeSystray,
	}
	for plain, expected := range cases {
		t.Run(plain, func(t *testing.T) {
			var actual Type
			require.NoError(t, actual.Set(plain))
			assert.Equal(t, expected, actual)
		})
	}

	var actual Type
	assert.EqualError(t, actual.Set("lamp"), "illegal-signal-type: lamp")
	assert.Equal(t, "none,hue,homeAssistant,systray", AllTypes.String())
}

func TestNewContext(t *testing.T) {
	actual := NewContext(StateListening, "Housing")

	assert.Equal(t, StateListening, actual.State())
	assert.Equal(t, "Housing", actual.Page())
}
