package engine

import (
	"time"

	"golang.org/x/text/language"

	"github.com/blaubaer/voice-navigator/pkg/command"
	"github.com/blaubaer/voice-navigator/pkg/common"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
	"github.com/blaubaer/voice-navigator/pkg/scanner"
)

func NewConfiguration() Configuration {
	return Configuration{
		Locale:      common.Locale{Tag: language.AmericanEnglish},
		SettleDelay: time.Millisecond * 300,
		GraceDelay:  time.Millisecond * 500,
		Scanner:     scanner.NewConfiguration(),
		Recognition: recognition.NewConfiguration(),
	}
}

type Configuration struct {
	Locale      common.Locale `yaml:"locale,omitempty"`
	SettleDelay time.Duration `yaml:"settleDelay,omitempty"`
	GraceDelay  time.Duration `yaml:"graceDelay,omitempty"`

	Scanner     scanner.Configuration     `yaml:"scanner,omitempty"`
	Recognition recognition.Configuration `yaml:"recognition,omitempty"`
	Commands    command.Table             `yaml:"commands,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("locale", "Locale of the voice used for narration.").
		PlaceHolder(this.Locale.String()).
		Envar("VN_LOCALE").
		SetValue(&this.Locale)
	using.Flag("engine.settleDelay", "Delay to let a screen settle before it is scanned.").
		PlaceHolder(this.SettleDelay.String()).
		Envar("VN_ENGINE_SETTLE_DELAY").
		DurationVar(&this.SettleDelay)
	using.Flag("engine.graceDelay", "Delay after the goodbye line before the voice assistant is turned off.").
		PlaceHolder(this.GraceDelay.String()).
		Envar("VN_ENGINE_GRACE_DELAY").
		DurationVar(&this.GraceDelay)

	this.Scanner.SetupConfiguration(using)
	this.Recognition.SetupConfiguration(using)
}
