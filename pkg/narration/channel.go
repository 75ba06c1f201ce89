package narration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

type Voice struct {
	Name   string       `json:"name"`
	Locale language.Tag `json:"locale"`
}

func (this Voice) IsZero() bool {
	return this.Name == ""
}

func (this Voice) String() string {
	if this.IsZero() {
		return "default"
	}
	return fmt.Sprintf("%s (%v)", this.Name, this.Locale)
}

type Utterance struct {
	Id     uuid.UUID    `json:"id"`
	Text   string       `json:"text"`
	Locale language.Tag `json:"locale"`
	// Voice is zero if the channel should use its default voice.
	Voice Voice `json:"voice"`
}

// Channel is the text-to-speech output.
type Channel interface {
	// Speak blocks until the utterance is completely spoken, failed or the
	// context is done. Cancelling the context must stop the audio output.
	Speak(ctx context.Context, u Utterance) error

	// Voices returns the voices currently offered by the channel.
	Voices() []Voice
}

// SelectVoice returns the voice best matching the given locale, or a zero
// voice if none is suitable.
func SelectVoice(voices []Voice, locale language.Tag) Voice {
	if len(voices) == 0 {
		return Voice{}
	}
	tags := make([]language.Tag, len(voices))
	for i, v := range voices {
		tags[i] = v.Locale
	}
	_, i, confidence := language.NewMatcher(tags).Match(locale)
	if confidence == language.No {
		return Voice{}
	}
	return voices[i]
}
