package console

import (
	"github.com/blaubaer/voice-navigator/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		WordsPerMinute: 180,
	}
}

type Configuration struct {
	// WordsPerMinute defines how long an utterance takes; 0 means instantly.
	WordsPerMinute uint `yaml:"wordsPerMinute"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("console.wordsPerMinute", "Speed in which narrations are printed to the console; 0 prints them instantly.").
		PlaceHolder("180").
		Envar("VN_CONSOLE_WORDS_PER_MINUTE").
		UintVar(&this.WordsPerMinute)
}
