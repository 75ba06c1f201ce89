// Package navigation implements the navigation service: a table of routes
// to screens, a history to go back in and a notification whenever the
// current destination changes.
package navigation

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/voice-navigator/pkg/screen"
)

var (
	ErrNoHistory          = errors.New("there is no previous destination")
	ErrUnknownDestination = errors.New("unknown destination")
)

// Destination is a loaded screen for a route.
type Destination struct {
	Route    Route
	Document *screen.Document
}

func (this Destination) IsZero() bool {
	return this.Document == nil
}

type Listener func(Destination)

func NewNavigator(screens fs.FS, routes Routes) (*Navigator, error) {
	if err := routes.Validate(); err != nil {
		return nil, err
	}
	return &Navigator{
		screens:   screens,
		routes:    routes,
		listeners: make(map[uint64]Listener),
	}, nil
}

type Navigator struct {
	screens fs.FS
	routes  Routes

	current Destination
	history []Route

	listeners      map[uint64]Listener
	listenerOrder  []uint64
	nextListenerId uint64

	mutex sync.Mutex
}

func (this *Navigator) Routes() Routes {
	return this.routes
}

func (this *Navigator) Current() Destination {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.current
}

// Title returns the title of the given destination id, or the id itself if
// it is unknown.
func (this *Navigator) Title(id string) string {
	if r, ok := this.routes.Find(id); ok {
		return r.String()
	}
	return id
}

func (this *Navigator) Navigate(id string) error {
	route, ok := this.routes.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDestination, id)
	}
	return this.open(route, true)
}

func (this *Navigator) Back() error {
	this.mutex.Lock()
	if len(this.history) == 0 {
		this.mutex.Unlock()
		return ErrNoHistory
	}
	route := this.history[len(this.history)-1]
	this.history = this.history[:len(this.history)-1]
	this.mutex.Unlock()

	return this.open(route, false)
}

func (this *Navigator) CanGoBack() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return len(this.history) > 0
}

// Reload parses the current screen again and republishes it.
func (this *Navigator) Reload() error {
	current := this.Current()
	if current.IsZero() {
		return ErrUnknownDestination
	}
	return this.open(current.Route, false)
}

func (this *Navigator) OnChange(l Listener) (unregister func()) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	id := this.nextListenerId
	this.nextListenerId++
	this.listeners[id] = l
	this.listenerOrder = append(this.listenerOrder, id)

	return func() {
		this.mutex.Lock()
		defer this.mutex.Unlock()
		delete(this.listeners, id)
	}
}

func (this *Navigator) open(route Route, remember bool) error {
	doc, err := this.load(route)
	if err != nil {
		return err
	}
	if doc.Title == "" {
		doc.Title = route.String()
	}

	target := Destination{route, doc}

	this.mutex.Lock()
	if remember && !this.current.IsZero() {
		this.history = append(this.history, this.current.Route)
	}
	this.current = target
	listeners := make([]Listener, 0, len(this.listeners))
	for _, id := range this.listenerOrder {
		if l, ok := this.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	this.mutex.Unlock()

	log.With("destination", route.Id).
		With("title", doc.Title).
		Debug("Destination changed.")

	for _, l := range listeners {
		l(target)
	}
	return nil
}

func (this *Navigator) load(route Route) (*screen.Document, error) {
	f, err := this.screens.Open(route.File)
	if err != nil {
		return nil, fmt.Errorf("cannot open screen %q of route %q: %w", route.File, route.Id, err)
	}
	defer func() {
		_ = f.Close()
	}()

	doc, err := screen.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("cannot load screen %q of route %q: %w", route.File, route.Id, err)
	}
	return doc, nil
}
