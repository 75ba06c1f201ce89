package hue

import (
	"github.com/blaubaer/voice-navigator/pkg/common"
	"github.com/blaubaer/voice-navigator/pkg/signal"
)

func NewConfiguration() Configuration {
	return Configuration{
		Name: common.MustNewRegexp("^VoiceNavigator"),

		Brightness: 200,
		Saturation: 254,
		Colors: Colors{
			Idle:      46920,
			Listening: 25500,
			Speaking:  8000,
		},
	}
}

type Configuration struct {
	Pair   bool   `yaml:"pair,omitempty"`
	Bridge string `yaml:"bridge,omitempty"`
	User   string `yaml:"user,omitempty"`

	Name  common.Regexp `yaml:"target"`
	Kinds Kinds         `yaml:"kinds,omitempty"`

	Brightness uint8  `yaml:"brightness"`
	Saturation uint8  `yaml:"saturation"`
	Colors     Colors `yaml:"colors"`
}

// Colors holds the hue value of the lights per state. The hue value is a
// wrapping value between 0 and 65535: both 0 and 65535 are red, 25500 is
// green and 46920 is blue.
type Colors struct {
	Idle      uint16 `yaml:"idle"`
	Listening uint16 `yaml:"listening"`
	Speaking  uint16 `yaml:"speaking"`
}

func (this Colors) For(state signal.State) (uint16, bool) {
	switch state {
	case signal.StateIdle:
		return this.Idle, true
	case signal.StateListening:
		return this.Listening, true
	case signal.StateSpeaking:
		return this.Speaking, true
	default:
		return 0, false
	}
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("signal.hue.pair", "If true this application will pair again with an existing hue. This will be implicit enabled if this application is not already paired.").
		Envar("VN_SIGNAL_HUE_PAIR").
		BoolVar(&this.Pair)
	using.Flag("signal.hue.bridge", "Usually the bridge is automatically detected. You can specify an explicit one if they are more than one. This is only required while pairing and will afterwards be ignored.").
		Envar("VN_SIGNAL_HUE_BRIDGE").
		StringVar(&this.Bridge)
	using.Flag("signal.hue.user", "Usually this is set while pairing and will then be persisted. If this set this will be used and not be persisted.").
		Envar("VN_SIGNAL_HUE_USER").
		StringVar(&this.User)
	using.Flag("signal.hue.name", "Name as regex of the lights/groups which should reflect the voice assistant.").
		Envar("VN_SIGNAL_HUE_NAME").
		SetValue(&this.Name)
	using.Flag("signal.hue.kind", "Kind(s) of what should be handled. Possible values: "+AllKinds.String()).
		Envar("VN_SIGNAL_HUE_KIND").
		SetValue(&this.Kinds)

	using.Flag("signal.hue.brightness", "Brightness of the lights while the voice assistant is on, from 1 (the minimum the light is capable of) to 254 (the maximum).").
		Envar("VN_SIGNAL_HUE_BRIGHTNESS").
		Uint8Var(&this.Brightness)
	using.Flag("signal.hue.saturation", "Saturation of the lights. 254 is the most saturated (colored) and 0 is the least saturated (white).").
		Envar("VN_SIGNAL_HUE_SATURATION").
		Uint8Var(&this.Saturation)
	using.Flag("signal.hue.color.idle", "Hue value of the lights while the voice assistant is on but neither listening nor speaking.").
		Envar("VN_SIGNAL_HUE_COLOR_IDLE").
		Uint16Var(&this.Colors.Idle)
	using.Flag("signal.hue.color.listening", "Hue value of the lights while the voice assistant is listening.").
		Envar("VN_SIGNAL_HUE_COLOR_LISTENING").
		Uint16Var(&this.Colors.Listening)
	using.Flag("signal.hue.color.speaking", "Hue value of the lights while the voice assistant is speaking.").
		Envar("VN_SIGNAL_HUE_COLOR_SPEAKING").
		Uint16Var(&this.Colors.Speaking)
}
