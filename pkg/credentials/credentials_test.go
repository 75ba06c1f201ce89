package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_IsZero(t *testing.T) {
	assert.True(t, (&Credentials{}).IsZero())
	assert.True(t, (&Credentials{HueBridge: "bridge"}).IsHueZero())
	assert.False(t, (&Credentials{HueBridge: "bridge", HueUser: "user"}).IsHueZero())
	assert.True(t, (&Credentials{HomeAssistantToken: "token"}).IsHomeAssistantZero())
	assert.False(t, (&Credentials{HomeAssistantServer: "http://ha", HomeAssistantToken: "token"}).IsZero())
}

func TestCredentials_Merge(t *testing.T) {
	instance := Credentials{HueBridge: "stored"}

	instance.Merge(Credentials{HueBridge: "configured", HueUser: "user", HomeAssistantToken: "token"})

	assert.Equal(t, Credentials{HueBridge: "stored", HueUser: "user", HomeAssistantToken: "token"}, instance)
}

func TestCredentials_binary(t *testing.T) {
	b, err := Credentials{HueBridge: "192.168.1.2", HueUser: "abc"}.MarshalBinary()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hueBridge":"192.168.1.2","hueUser":"abc"}`, string(b))

	var actual Credentials
	require.NoError(t, actual.UnmarshalBinary(b))
	assert.Equal(t, "abc", actual.HueUser)
}
