package level

import (
	"time"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		Bands:         5,
		FrameInterval: time.Second / 30,
		Window:        2048,
	}
}

type Configuration struct {
	Bands         uint          `yaml:"bands,omitempty"`
	FrameInterval time.Duration `yaml:"frameInterval,omitempty"`
	Window        uint          `yaml:"window,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("monitor.bands", "Number of frequency bands the microphone level is reported in.").
		PlaceHolder("5").
		Envar("VN_MONITOR_BANDS").
		UintVar(&this.Bands)
	using.Flag("monitor.frameInterval", "Interval in which levels are published.").
		PlaceHolder(this.FrameInterval.String()).
		Envar("VN_MONITOR_FRAME_INTERVAL").
		DurationVar(&this.FrameInterval)
	using.Flag("monitor.window", "Number of samples the levels are computed of.").
		PlaceHolder("2048").
		Envar("VN_MONITOR_WINDOW").
		UintVar(&this.Window)
}
