package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blaubaer/voice-navigator/pkg/navigation"
)

// Entry maps a spoken phrase to a navigation destination.
type Entry struct {
	Phrase      string `yaml:"phrase"`
	Destination string `yaml:"destination"`
}

func (this Entry) String() string {
	return fmt.Sprintf("%q -> %s", this.Phrase, this.Destination)
}

type Entries []Entry

// Table holds the phrases commands are recognized by. All matches are
// substring matches against the normalized transcript; inside each list the
// first matching phrase wins.
type Table struct {
	Navigation     Entries  `yaml:"navigation,omitempty"`
	TurnOff        []string `yaml:"turnOff,omitempty"`
	Next           []string `yaml:"next,omitempty"`
	Activate       []string `yaml:"activate,omitempty"`
	Authentication []string `yaml:"authentication,omitempty"`
	Back           []string `yaml:"back,omitempty"`
	Restart        []string `yaml:"restart,omitempty"`
	Toggle         []string `yaml:"toggle,omitempty"`
	Stop           []string `yaml:"stop,omitempty"`
}

func DefaultTable() Table {
	return Table{
		TurnOff:        []string{"stop voice assistant", "turn off voice", "disable voice", "voice off"},
		Next:           []string{"next", "skip", "continue"},
		Activate:       []string{"click", "press", "enter", "submit"},
		Authentication: []string{"sign in", "sign up", "log in", "register"},
		Back:           []string{"back", "previous"},
		Restart:        []string{"read page", "start over", "read"},
		Toggle:         []string{"check", "toggle"},
		Stop:           []string{"stop"},
	}
}

// NavigationFor creates entries for every route with a title: "go to
// <title>", "open <title>", "show <title>" and the bare title. Entries are
// ordered longest phrase first, so a more specific phrase always wins over
// one it contains.
func NavigationFor(routes navigation.Routes) Entries {
	var result Entries
	for _, r := range routes {
		title := Normalize(r.Title)
		if title == "" {
			continue
		}
		id := navigation.NormalizeId(r.Id)
		for _, prefix := range []string{"go to ", "open ", "show ", ""} {
			result = append(result, Entry{Phrase: prefix + title, Destination: id})
		}
	}
	result.Sort()
	return result
}

// Sort orders the entries longest phrase first. Entries of equal length keep
// their relative order.
func (this Entries) Sort() {
	sort.SliceStable(this, func(i, j int) bool {
		return len(this[i].Phrase) > len(this[j].Phrase)
	})
}

func (this Entries) Find(normalized string) (Entry, bool) {
	for _, e := range this {
		if strings.Contains(normalized, e.Phrase) {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate ensures every entry points to a known route and that no
// navigation phrase shadows a command checked later in the pipeline.
func (this Table) Validate(routes navigation.Routes) error {
	for _, e := range this.Navigation {
		if e.Phrase == "" {
			return fmt.Errorf("navigation entry for %q has no phrase", e.Destination)
		}
		if e.Phrase != Normalize(e.Phrase) {
			return fmt.Errorf("navigation phrase %q is not normalized", e.Phrase)
		}
		if _, ok := routes.Find(e.Destination); !ok {
			return fmt.Errorf("navigation entry %v: %w", e, navigation.ErrUnknownDestination)
		}
		if _, ok := findPhrase(e.Phrase, this.Authentication); ok {
			return fmt.Errorf("navigation phrase %q would shadow an authentication command", e.Phrase)
		}
	}
	return nil
}

// Merge returns a copy of this table where every empty list was filled from
// the given defaults.
func (this Table) Merge(defaults Table) Table {
	result := this
	if len(result.Navigation) == 0 {
		result.Navigation = defaults.Navigation
	}
	fill := func(target *[]string, def []string) {
		if len(*target) == 0 {
			*target = def
		}
	}
	fill(&result.TurnOff, defaults.TurnOff)
	fill(&result.Next, defaults.Next)
	fill(&result.Activate, defaults.Activate)
	fill(&result.Authentication, defaults.Authentication)
	fill(&result.Back, defaults.Back)
	fill(&result.Restart, defaults.Restart)
	fill(&result.Toggle, defaults.Toggle)
	fill(&result.Stop, defaults.Stop)
	return result
}

func findPhrase(normalized string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if p != "" && strings.Contains(normalized, p) {
			return p, true
		}
	}
	return "", false
}
