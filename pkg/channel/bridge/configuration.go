package bridge

import (
	"time"

	"github.com/blaubaer/voice-navigator/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		Listen:       "127.0.0.1:8181",
		WriteTimeout: time.Second * 5,
	}
}

type Configuration struct {
	Listen       string        `yaml:"listen,omitempty"`
	WriteTimeout time.Duration `yaml:"writeTimeout,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("bridge.listen", "Address the bridge page is served on.").
		PlaceHolder(this.Listen).
		Envar("VN_BRIDGE_LISTEN").
		StringVar(&this.Listen)
	using.Flag("bridge.writeTimeout", "Maximum duration to send a message to the bridge page.").
		PlaceHolder(this.WriteTimeout.String()).
		Envar("VN_BRIDGE_WRITE_TIMEOUT").
		DurationVar(&this.WriteTimeout)
}
