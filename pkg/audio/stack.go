// Package audio gives access to the microphone: capture devices and a raw
// sample stream.
package audio

import (
	"errors"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

var ErrUnsupported = errors.New("audio capture is not supported on this platform")

type Configuration struct {
	Device common.Regexp `yaml:"device,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("audio.device", "Regex for the name of the capture device to use. If empty the default capture device is used.").
		Envar("VN_AUDIO_DEVICE").
		SetValue(&this.Device)
}

// Stream is an open capture of a device.
type Stream interface {
	SampleRate() int
	// Done is closed once capturing ended, either because of Close or
	// because the device failed.
	Done() <-chan struct{}
	Close() error
}

// SamplesHandler receives mono samples in the range [-1, 1]. It is called
// from the capturing goroutine.
type SamplesHandler func(samples []float32)

func mixDown(interleaved []float32, channels int, into []float32) []float32 {
	if channels <= 1 {
		return append(into[:0], interleaved...)
	}
	frames := len(interleaved) / channels
	into = into[:0]
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[f*channels+c]
		}
		into = append(into, sum/float32(channels))
	}
	return into
}
