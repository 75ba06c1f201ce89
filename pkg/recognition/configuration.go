package recognition

import (
	"time"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		RestartDelay: time.Millisecond * 300,
	}
}

type Configuration struct {
	RestartDelay time.Duration `yaml:"restartDelay,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("recognition.restartDelay", "Delay before the next capture is started after the previous one ended.").
		PlaceHolder(this.RestartDelay.String()).
		Envar("VN_RECOGNITION_RESTART_DELAY").
		DurationVar(&this.RestartDelay)
}
