package facade

import (
	"github.com/blaubaer/voice-navigator/pkg/common"
	"github.com/blaubaer/voice-navigator/pkg/signal"
	"github.com/blaubaer/voice-navigator/pkg/signal/homeassistant"
	"github.com/blaubaer/voice-navigator/pkg/signal/hue"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type:          signal.TypeDefault,
		Hue:           hue.NewConfiguration(),
		HomeAssistant: homeassistant.NewConfiguration(),
	}
}

type Configuration struct {
	Type          signal.Type                 `yaml:"type"`
	Hue           hue.Configuration           `yaml:"hue,omitempty"`
	HomeAssistant homeassistant.Configuration `yaml:"homeAssistant,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal", "Signal which reflects the state of the voice assistant. All possible values: "+signal.AllTypes.String()).
		Envar("VN_SIGNAL").
		SetValue(&this.Type)

	this.Hue.SetupConfiguration(using)
	this.HomeAssistant.SetupConfiguration(using)
}
