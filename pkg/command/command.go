// Package command resolves a recognized transcript into one of a fixed set
// of commands.
package command

import (
	"fmt"
	"strings"
	"unicode"
)

type Command struct {
	Kind Kind
	// Raw is the transcript as it was recognized.
	Raw string
	// Normalized is the lowercase, trimmed transcript all matching is done on.
	Normalized string
	// Phrase is the phrase of the table that matched, if any.
	Phrase string
	// Destination is only set for KindNavigate.
	Destination string
}

func (this Command) String() string {
	switch this.Kind {
	case KindNavigate:
		return fmt.Sprintf("%v(%s)", this.Kind, this.Destination)
	case KindFreeText, KindUnknown:
		return fmt.Sprintf("%v(%q)", this.Kind, this.Raw)
	default:
		return this.Kind.String()
	}
}

// Resolve matches the transcript against the table in this order: turn-off,
// navigation, next, activate, authentication, back, restart, toggle and a
// bare stop. acceptsText tells if the item under the cursor accepts spoken
// text; only then an otherwise unmatched transcript becomes KindFreeText.
func (this Table) Resolve(raw string, acceptsText bool) Command {
	result := Command{
		Raw:        strings.TrimSpace(raw),
		Normalized: Normalize(raw),
	}
	n := result.Normalized
	if n == "" {
		return result
	}

	match := func(kind Kind, phrases []string) bool {
		if p, ok := findPhrase(n, phrases); ok {
			result.Kind = kind
			result.Phrase = p
			return true
		}
		return false
	}

	if match(KindTurnOff, this.TurnOff) {
		return result
	}
	if e, ok := this.Navigation.Find(n); ok {
		result.Kind = KindNavigate
		result.Phrase = e.Phrase
		result.Destination = e.Destination
		return result
	}
	if match(KindNext, this.Next) ||
		match(KindActivate, this.Activate) ||
		match(KindAuthenticate, this.Authentication) ||
		match(KindBack, this.Back) ||
		match(KindRestart, this.Restart) ||
		match(KindToggle, this.Toggle) {
		return result
	}
	if p, ok := findPhrase(n, this.Stop); ok && !strings.Contains(n, "voice") {
		result.Kind = KindStop
		result.Phrase = p
		return result
	}
	if acceptsText {
		result.Kind = KindFreeText
	}
	return result
}

// Normalize lowercases the given transcript, collapses whitespace and
// removes the trailing punctuation recognizers like to add.
func Normalize(in string) string {
	fields := strings.Fields(strings.ToLower(in))
	return strings.TrimRightFunc(strings.Join(fields, " "), func(r rune) bool {
		return unicode.IsPunct(r)
	})
}
