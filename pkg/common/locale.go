package common

import (
	"fmt"

	"golang.org/x/text/language"
)

type Locale struct {
	language.Tag
}

func (this *Locale) Set(plain string) error {
	if plain == "" {
		*this = Locale{}
		return nil
	}
	buf, err := language.Parse(plain)
	if err != nil {
		return fmt.Errorf("illegal-locale: %s", plain)
	}
	*this = Locale{buf}
	return nil
}

func (this Locale) String() string {
	if this.IsZero() {
		return ""
	}
	return this.Tag.String()
}

func (this Locale) IsZero() bool {
	return this.Tag == language.Und
}

func (this Locale) MarshalText() (text []byte, err error) {
	return []byte(this.String()), nil
}

func (this *Locale) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}
