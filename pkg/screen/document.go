// Package screen models a rendered screen as a tree of elements parsed from
// HTML. Reads are free for everybody; mutations go through Document so that
// every observer is notified the same way the host would do it.
package screen

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

var (
	ErrNotEditable  = errors.New("element is not editable")
	ErrNotCheckable = errors.New("element is not a checkbox")
	ErrForeign      = errors.New("element does not belong to this document")
)

// HighlightAttribute is set on the element currently focused by the voice
// assistant.
const HighlightAttribute = "data-voice-focus"

type Document struct {
	Title string
	Root  *Element

	byId      map[string]*Element
	labelsFor map[string]*Element

	listeners      map[uint64]Listener
	listenerOrder  []uint64
	nextListenerId uint64

	mutex sync.RWMutex
}

func ParseString(in string) (*Document, error) {
	return Parse(strings.NewReader(in))
}

func Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse screen: %w", err)
	}

	result := &Document{
		byId:      make(map[string]*Element),
		labelsFor: make(map[string]*Element),
		listeners: make(map[uint64]Listener),
	}
	result.Root = &Element{
		Tag:      "#document",
		attrs:    map[string]string{},
		document: result,
	}
	result.adopt(result.Root, node)

	return result, nil
}

func (this *Document) adopt(parent *Element, node *html.Node) {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				parent.parts = append(parent.parts, part{text: c.Data})
			}
		case html.ElementNode:
			e := this.newElement(parent, c)
			parent.parts = append(parent.parts, part{child: e})
			parent.children = append(parent.children, e)
			this.adopt(e, c)
			this.initialize(e)
		}
	}
}

func (this *Document) newElement(parent *Element, node *html.Node) *Element {
	e := &Element{
		Tag:      strings.ToLower(node.Data),
		attrs:    make(map[string]string, len(node.Attr)),
		parent:   parent,
		document: this,
	}
	for _, a := range node.Attr {
		e.attrs[strings.ToLower(a.Key)] = a.Val
	}
	if id := e.ID(); id != "" {
		if _, exists := this.byId[id]; !exists {
			this.byId[id] = e
		}
	}
	return e
}

func (this *Document) initialize(e *Element) {
	switch e.Tag {
	case "title":
		if this.Title == "" {
			this.Title = e.TextContent()
		}
	case "label":
		if target := strings.TrimSpace(e.attrs["for"]); target != "" {
			if _, exists := this.labelsFor[target]; !exists {
				this.labelsFor[target] = e
			}
		}
	case "input":
		e.value = e.attrs["value"]
		_, e.checked = e.attrs["checked"]
	case "textarea":
		e.value = e.TextContent()
	case "select":
		for _, o := range e.children {
			if o.Tag != "option" {
				continue
			}
			if _, selected := o.attrs["selected"]; selected || e.value == "" {
				e.value = o.AttrOr("value", o.TextContent())
			}
		}
	}
}

// Body returns the body element or the root if there is none.
func (this *Document) Body() *Element {
	var result *Element
	this.Root.Walk(func(e *Element) bool {
		if result != nil {
			return false
		}
		if e.Tag == "body" {
			result = e
			return false
		}
		return true
	})
	if result == nil {
		return this.Root
	}
	return result
}

func (this *Document) ElementById(id string) *Element {
	return this.byId[id]
}

// Find returns all elements matching the given predicate in document order.
func (this *Document) Find(predicate func(*Element) bool) (result []*Element) {
	this.Root.Walk(func(e *Element) bool {
		if predicate(e) {
			result = append(result, e)
		}
		return true
	})
	return result
}

// LabelFor returns the explicitly associated label of the given control,
// either through the for attribute or through a wrapping label element.
func (this *Document) LabelFor(e *Element) string {
	if id := e.ID(); id != "" {
		if l, ok := this.labelsFor[id]; ok {
			if v := l.TextContent(); v != "" {
				return v
			}
		}
	}
	if l := e.Closest("label"); l != nil && l != e {
		return l.DirectText()
	}
	return ""
}

// IsLabel reports if the given element is a label bound to a form control.
func (this *Document) IsLabel(e *Element) bool {
	if e.Tag != "label" {
		return false
	}
	if target := strings.TrimSpace(e.attrs["for"]); target != "" {
		return this.byId[target] != nil
	}
	found := false
	e.Walk(func(c *Element) bool {
		if c != e && c.IsFormControl() {
			found = true
		}
		return !found
	})
	return found
}

// SetValue enters the given value into a text-like control and fires
// exactly one input and one change event.
func (this *Document) SetValue(e *Element, v string) error {
	if err := this.owns(e); err != nil {
		return err
	}
	switch e.Tag {
	case "input":
		switch e.Type() {
		case "checkbox", "radio", "submit", "button", "reset", "image", "file", "hidden":
			return fmt.Errorf("%w: %v", ErrNotEditable, e)
		}
	case "textarea", "select":
	default:
		return fmt.Errorf("%w: %v", ErrNotEditable, e)
	}
	if _, disabled := e.attrs["disabled"]; disabled {
		return fmt.Errorf("%w: %v is disabled", ErrNotEditable, e)
	}

	this.mutex.Lock()
	e.value = v
	this.mutex.Unlock()

	this.fire(Event{EventInput, e})
	this.fire(Event{EventChange, e})
	return nil
}

// SetChecked changes the checked state of a checkbox or radio button and
// fires a change event if the state actually changed.
func (this *Document) SetChecked(e *Element, v bool) error {
	if err := this.owns(e); err != nil {
		return err
	}
	if e.Tag != "input" || (e.Type() != "checkbox" && e.Type() != "radio") {
		return fmt.Errorf("%w: %v", ErrNotCheckable, e)
	}

	this.mutex.Lock()
	changed := e.checked != v
	e.checked = v
	this.mutex.Unlock()

	if changed {
		this.fire(Event{EventChange, e})
	}
	return nil
}

// Click activates the given element like a pointer click would do: it fires
// a click event, toggles checkboxes and submits the owning form of submit
// controls.
func (this *Document) Click(e *Element) error {
	if err := this.owns(e); err != nil {
		return err
	}

	this.fire(Event{EventClick, e})

	switch {
	case e.Tag == "input" && (e.Type() == "checkbox" || e.Type() == "radio"):
		return this.SetChecked(e, e.Type() == "radio" || !e.Checked())
	case (e.Tag == "input" || e.Tag == "button") && e.Type() == "submit":
		if form := e.Closest("form"); form != nil {
			this.fire(Event{EventSubmit, form})
		}
	}
	return nil
}

func (this *Document) Highlight(e *Element) {
	if e == nil || e.document != this {
		return
	}
	this.mutex.Lock()
	defer this.mutex.Unlock()
	e.highlighted = true
	e.attrs[HighlightAttribute] = "true"
}

func (this *Document) ClearHighlight(e *Element) {
	if e == nil || e.document != this {
		return
	}
	this.mutex.Lock()
	defer this.mutex.Unlock()
	e.highlighted = false
	delete(e.attrs, HighlightAttribute)
}

// Subscribe registers the given listener for all events of this document.
func (this *Document) Subscribe(l Listener) (unsubscribe func()) {
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

func (this *Document) fire(event Event) {
	this.mutex.RLock()
	listeners := make([]Listener, 0, len(this.listeners))
	for _, id := range this.listenerOrder {
		if l, ok := this.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	this.mutex.RUnlock()

	for _, l := range listeners {
		l(event)
	}
}

func (this *Document) owns(e *Element) error {
	if e == nil || e.document != this {
		return ErrForeign
	}
	return nil
}
