package scanner

import (
	"github.com/blaubaer/voice-navigator/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		MaxTextLength:   300,
		MinSize:         1,
		ExcludedClasses: common.MustNewRegexp(`^(sidebar|side-nav|navbar|nav|menu|skip-link)$`),
	}
}

type Configuration struct {
	MaxTextLength   uint          `yaml:"maxTextLength,omitempty"`
	MinSize         float64       `yaml:"minSize,omitempty"`
	ExcludedClasses common.Regexp `yaml:"excludedClasses,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("scanner.maxTextLength", "Texts longer than this amount of characters are not read aloud.").
		Envar("VN_SCANNER_MAX_TEXT_LENGTH").
		UintVar(&this.MaxTextLength)
	using.Flag("scanner.minSize", "Elements smaller than this (width or height) are not read aloud.").
		Envar("VN_SCANNER_MIN_SIZE").
		Float64Var(&this.MinSize)
	using.Flag("scanner.excludedClasses", "Elements carrying a class matching this regex are treated as navigation regions and skipped.").
		Envar("VN_SCANNER_EXCLUDED_CLASSES").
		SetValue(&this.ExcludedClasses)
}
