package bridge

import (
	"errors"
	"fmt"

	"github.com/blaubaer/voice-navigator/pkg/level"
	"github.com/blaubaer/voice-navigator/pkg/recognition"
)

type MessageType string

const (
	// Sent to the page.
	MessageSpeak  MessageType = "speak"
	MessageCancel MessageType = "cancel"
	MessageListen MessageType = "listen"
	MessageStop   MessageType = "stop"
	MessageLevels MessageType = "levels"

	// Received from the page.
	MessageHello      MessageType = "hello"
	MessageSpoken     MessageType = "spoken"
	MessageTranscript MessageType = "transcript"
	MessageNoSpeech   MessageType = "nospeech"
	MessageError      MessageType = "error"
)

type Voice struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

type Message struct {
	Type   MessageType  `json:"type"`
	Id     string       `json:"id,omitempty"`
	Text   string       `json:"text,omitempty"`
	Locale string       `json:"locale,omitempty"`
	Voice  string       `json:"voice,omitempty"`
	Voices []Voice      `json:"voices,omitempty"`
	Error  string       `json:"error,omitempty"`
	Mode   level.Mode   `json:"mode,omitempty"`
	Levels level.Levels `json:"levels,omitempty"`
}

func (this Message) String() string {
	if this.Id == "" {
		return string(this.Type)
	}
	return fmt.Sprintf("%s(%s)", this.Type, this.Id)
}

// failure translates an error reported by the page, named like the errors of
// the Web Speech API.
func (this Message) failure() error {
	switch this.Error {
	case "not-allowed", "service-not-allowed", "audio-capture":
		return fmt.Errorf("%w: %s", recognition.ErrPermissionDenied, this.Error)
	case "unsupported", "language-not-supported":
		return fmt.Errorf("%w: %s", recognition.ErrCapabilityUnavailable, this.Error)
	case "no-speech", "aborted":
		return recognition.ErrNoSpeech
	case "":
		return errors.New("the bridge page reported an unknown error")
	default:
		return fmt.Errorf("the bridge page reported: %s", this.Error)
	}
}
