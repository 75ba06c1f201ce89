package navigation

import (
	"fmt"
	"strings"
)

type Route struct {
	Id    string `yaml:"id"`
	Title string `yaml:"title,omitempty"`
	File  string `yaml:"file"`
}

func (this Route) String() string {
	if this.Title != "" {
		return this.Title
	}
	return this.Id
}

type Routes []Route

func (this Routes) Find(id string) (Route, bool) {
	id = NormalizeId(id)
	for _, r := range this {
		if NormalizeId(r.Id) == id {
			return r, true
		}
	}
	return Route{}, false
}

func (this Routes) Validate() error {
	seen := make(map[string]struct{}, len(this))
	for i, r := range this {
		id := NormalizeId(r.Id)
		if id == "/" && strings.TrimSpace(r.Id) == "" {
			return fmt.Errorf("route #%d has no id", i)
		}
		if r.File == "" {
			return fmt.Errorf("route %q has no file", r.Id)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate route %q", r.Id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// NormalizeId makes "housing", "/housing" and "/housing/" the same
// destination.
func NormalizeId(id string) string {
	id = strings.TrimSpace(strings.ToLower(id))
	id = strings.Trim(id, "/")
	return "/" + id
}
