package preferences

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

const (
	KeyVoiceEnabled       = "voiceEnabled"
	KeySignOverlayEnabled = "signOverlayEnabled"
)

// Preferences are the user choices surviving a restart. Both default to
// disabled until the user made an explicit choice.
type Preferences struct {
	VoiceEnabled       bool `yaml:"voiceEnabled" json:"voiceEnabled"`
	SignOverlayEnabled bool `yaml:"signOverlayEnabled" json:"signOverlayEnabled"`
}

// Load reads the preferences from the given store. The returned chosen flag
// reports if the voice preference was ever stored.
func Load(ctx context.Context, from Store) (result Preferences, chosen bool, err error) {
	if result.VoiceEnabled, chosen, err = loadBool(ctx, from, KeyVoiceEnabled); err != nil {
		return Preferences{}, false, err
	}
	if result.SignOverlayEnabled, _, err = loadBool(ctx, from, KeySignOverlayEnabled); err != nil {
		return Preferences{}, false, err
	}
	return result, chosen, nil
}

func (this Preferences) Save(ctx context.Context, to Store) error {
	if err := to.Set(ctx, KeyVoiceEnabled, []byte(strconv.FormatBool(this.VoiceEnabled))); err != nil {
		return err
	}
	if err := to.Set(ctx, KeySignOverlayEnabled, []byte(strconv.FormatBool(this.SignOverlayEnabled))); err != nil {
		return err
	}
	return nil
}

func loadBool(ctx context.Context, from Store, key string) (bool, bool, error) {
	raw, err := from.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	v, err := strconv.ParseBool(string(raw))
	if err != nil {
		return false, false, fmt.Errorf("illegal value for preference %q: %q", key, string(raw))
	}
	return v, true, nil
}
