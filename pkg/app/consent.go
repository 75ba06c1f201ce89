package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/accessibility"
	"github.com/blaubaer/voice-navigator/pkg/common"
)

// Consent decides how the voice assistant is switched on at start.
type Consent uint8

const (
	ConsentAsk     = Consent(0)
	ConsentEnable  = Consent(1)
	ConsentDisable = Consent(2)
)

var (
	AllConsents = Consents{
		ConsentAsk,
		ConsentEnable,
		ConsentDisable,
	}
)

func (this *Consent) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "ask", "":
		*this = ConsentAsk
		return nil
	case "enable", "enabled", "on", "yes":
		*this = ConsentEnable
		return nil
	case "disable", "disabled", "off", "no":
		*this = ConsentDisable
		return nil
	default:
		return fmt.Errorf("illegal-consent: %s", plain)
	}
}

func (this Consent) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-consent-%d", this)
	}
	return string(v)
}

func (this Consent) MarshalText() (text []byte, err error) {
	switch this {
	case ConsentAsk:
		return []byte("ask"), nil
	case ConsentEnable:
		return []byte("enable"), nil
	case ConsentDisable:
		return []byte("disable"), nil
	default:
		return nil, fmt.Errorf("illegal consent: %d", this)
	}
}

func (this *Consent) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Consents []Consent

func (this Consents) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Consents) String() string {
	return strings.Join(this.Strings(), ",")
}

// Asker asks the user if the voice assistant should be enabled.
type Asker func() (enable bool, err error)

func askOnTerminal() (bool, error) {
	v, err := common.RequestChoiceFromTerminal("Do you want to enable the voice navigation assistant?", "enable", "disable")
	if err != nil {
		return false, err
	}
	return v == "enable", nil
}

// ensure applies the configured consent to the store. In ask mode
// the user is asked once per run, and only if no choice was ever persisted.
func (this Consent) ensure(ctx context.Context, store *accessibility.Store, chosen bool, ask Asker) error {
	switch this {
	case ConsentEnable:
		return store.SetVoiceEnabled(ctx, true)
	case ConsentDisable:
		return store.SetVoiceEnabled(ctx, false)
	}

	if chosen {
		log.With("voiceEnabled", store.VoiceEnabled()).
			Debug("Voice assistant choice restored.")
		return nil
	}
	if !store.MarkConsentAsked() {
		return nil
	}

	enable, err := ask()
	if err != nil {
		return fmt.Errorf("cannot ask for consent: %w", err)
	}
	return store.SetVoiceEnabled(ctx, enable)
}
