package screen

import (
	"strconv"
	"strings"
)

// DefaultWidth and DefaultHeight are the rendered size assumed for elements
// which do not carry explicit geometry.
const (
	DefaultWidth  = 100
	DefaultHeight = 20
)

type Element struct {
	Tag string

	attrs    map[string]string
	parts    []part
	children []*Element
	parent   *Element
	document *Document

	value       string
	checked     bool
	highlighted bool
}

func (this *Element) Document() *Document {
	return this.document
}

func (this *Element) Parent() *Element {
	return this.parent
}

func (this *Element) Children() []*Element {
	return this.children
}

func (this *Element) Attr(name string) (string, bool) {
	v, ok := this.attrs[name]
	return v, ok
}

func (this *Element) AttrOr(name, def string) string {
	if v, ok := this.attrs[name]; ok {
		return v
	}
	return def
}

func (this *Element) ID() string {
	return this.attrs["id"]
}

func (this *Element) Classes() []string {
	return strings.Fields(this.attrs["class"])
}

func (this *Element) Role() string {
	return strings.ToLower(strings.TrimSpace(this.attrs["role"]))
}

// Type is the lower-cased type attribute of input and button elements.
// Inputs without type are text inputs, buttons without type submit their
// form.
func (this *Element) Type() string {
	t := strings.ToLower(strings.TrimSpace(this.attrs["type"]))
	switch this.Tag {
	case "input":
		if t == "" {
			return "text"
		}
	case "button":
		if t == "" {
			return "submit"
		}
	case "textarea":
		return "textarea"
	}
	return t
}

func (this *Element) IsFormControl() bool {
	switch this.Tag {
	case "input", "textarea", "select", "button":
		return true
	}
	return false
}

// DirectText is the whitespace collapsed text of the text nodes which are
// direct children of this element.
func (this *Element) DirectText() string {
	var sb strings.Builder
	for _, p := range this.parts {
		if p.child == nil {
			sb.WriteString(p.text)
			sb.WriteByte(' ')
		}
	}
	return collapse(sb.String())
}

// TextContent is the whitespace collapsed text of this element and all of
// its descendants in document order.
func (this *Element) TextContent() string {
	var sb strings.Builder
	this.appendText(&sb)
	return collapse(sb.String())
}

func (this *Element) appendText(sb *strings.Builder) {
	for _, p := range this.parts {
		if c := p.child; c != nil {
			c.appendText(sb)
		} else {
			sb.WriteString(p.text)
		}
		sb.WriteByte(' ')
	}
}

func (this *Element) Value() string {
	if this.document != nil {
		this.document.mutex.RLock()
		defer this.document.mutex.RUnlock()
	}
	return this.value
}

func (this *Element) Checked() bool {
	if this.document != nil {
		this.document.mutex.RLock()
		defer this.document.mutex.RUnlock()
	}
	return this.checked
}

func (this *Element) Highlighted() bool {
	if this.document != nil {
		this.document.mutex.RLock()
		defer this.document.mutex.RUnlock()
	}
	return this.highlighted
}

// Hidden reports if the element itself is marked hidden or decorative. It
// does not take ancestors into account.
func (this *Element) Hidden() bool {
	if _, ok := this.attrs["hidden"]; ok {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(this.attrs["aria-hidden"]), "true") {
		return true
	}
	if this.Tag == "input" && this.Type() == "hidden" {
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(this.attrs["style"]), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

// Decorative reports if the element is marked as pure decoration.
func (this *Element) Decorative() bool {
	switch this.Role() {
	case "presentation", "none":
		return true
	}
	_, ok := this.attrs["data-decorative"]
	return ok
}

// Size returns the rendered size of this element. Explicit geometry can be
// provided through the data-width and data-height attributes.
func (this *Element) Size() (width, height float64) {
	return this.dimension("data-width", DefaultWidth), this.dimension("data-height", DefaultHeight)
}

func (this *Element) dimension(attr string, def float64) float64 {
	plain, ok := this.attrs[attr]
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(plain), "px"), 64)
	if err != nil {
		return def
	}
	return v
}

// Closest returns the nearest ancestor (or this element) with the given tag.
func (this *Element) Closest(tag string) *Element {
	for c := this; c != nil; c = c.parent {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// PreviousSibling returns the element right before this one inside its
// parent.
func (this *Element) PreviousSibling() *Element {
	if this.parent == nil {
		return nil
	}
	var previous *Element
	for _, c := range this.parent.children {
		if c == this {
			return previous
		}
		previous = c
	}
	return nil
}

// Walk visits this element and its descendants in document order. If fn
// returns false the children of the current element are skipped.
func (this *Element) Walk(fn func(*Element) bool) {
	if !fn(this) {
		return
	}
	for _, c := range this.children {
		c.Walk(fn)
	}
}

func (this *Element) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(this.Tag)
	if id := this.ID(); id != "" {
		sb.WriteString(" id=")
		sb.WriteString(strconv.Quote(id))
	}
	sb.WriteByte('>')
	return sb.String()
}

// part is either a text node or a child element, kept in document order.
type part struct {
	text  string
	child *Element
}

func collapse(in string) string {
	return strings.Join(strings.Fields(in), " ")
}
