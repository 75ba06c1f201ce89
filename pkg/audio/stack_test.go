package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

func TestDevices_Find(t *testing.T) {
	instance := Devices{
		{Id: "a", Name: "Speakers (Realtek)", Index: 0},
		{Id: "b", Name: "Microphone (USB Headset)", Index: 1},
	}

	actual, ok := instance.Find(common.MustNewRegexp(`(?i)headset`))
	assert.True(t, ok)
	assert.Equal(t, "b", actual.Id)

	_, ok = instance.Find(common.MustNewRegexp(`webcam`))
	assert.False(t, ok)

	_, ok = instance.Find(common.Regexp{})
	assert.False(t, ok)
}

func TestMixDown(t *testing.T) {
	assert.Equal(t, []float32{0.5, -0.25}, mixDown([]float32{1, 0, -0.5, 0}, 2, nil))
	assert.Equal(t, []float32{1, 0}, mixDown([]float32{1, 0}, 1, nil))
}
