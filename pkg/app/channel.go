package app

import (
	"fmt"
	"strings"

	"github.com/blaubaer/voice-navigator/pkg/channel/bridge"
	"github.com/blaubaer/voice-navigator/pkg/channel/console"
	"github.com/blaubaer/voice-navigator/pkg/common"
)

// ChannelType selects what speaks and listens for the voice assistant.
type ChannelType uint8

const (
	ChannelTypeConsole = ChannelType(0)
	ChannelTypeBridge  = ChannelType(1)

	ChannelTypeDefault = ChannelTypeConsole
)

var (
	AllChannelTypes = ChannelTypes{
		ChannelTypeConsole,
		ChannelTypeBridge,
	}
)

func (this *ChannelType) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "console", "terminal":
		*this = ChannelTypeConsole
		return nil
	case "bridge", "browser":
		*this = ChannelTypeBridge
		return nil
	default:
		return fmt.Errorf("illegal-channel-type: %s", plain)
	}
}

func (this ChannelType) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-channel-type-%d", this)
	}
	return string(v)
}

func (this ChannelType) MarshalText() (text []byte, err error) {
	switch this {
	case ChannelTypeConsole:
		return []byte("console"), nil
	case ChannelTypeBridge:
		return []byte("bridge"), nil
	default:
		return nil, fmt.Errorf("illegal channel type: %d", this)
	}
}

func (this *ChannelType) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type ChannelTypes []ChannelType

func (this ChannelTypes) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this ChannelTypes) String() string {
	return strings.Join(this.Strings(), ",")
}

func NewChannelConfiguration() ChannelConfiguration {
	return ChannelConfiguration{
		Type:    ChannelTypeDefault,
		Console: console.NewConfiguration(),
		Bridge:  bridge.NewConfiguration(),
	}
}

type ChannelConfiguration struct {
	Type    ChannelType           `yaml:"type"`
	Console console.Configuration `yaml:"console,omitempty"`
	Bridge  bridge.Configuration  `yaml:"bridge,omitempty"`
}

func (this *ChannelConfiguration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("channel", "Channel which speaks and listens. All possible values: "+AllChannelTypes.String()).
		Envar("VN_CHANNEL").
		SetValue(&this.Type)

	this.Console.SetupConfiguration(using)
	this.Bridge.SetupConfiguration(using)
}
