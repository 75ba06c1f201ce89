// Package scanner turns the currently rendered screen into an ordered list
// of narratable items.
package scanner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blaubaer/voice-navigator/pkg/screen"
)

const maxAmbientLabelLength = 80

func New(conf Configuration) *Scanner {
	return &Scanner{conf: conf}
}

type Scanner struct {
	conf Configuration
}

// Scan inspects the body of the given document and starts a new session.
// It only reads the document.
func (this *Scanner) Scan(doc *screen.Document) *Session {
	return NewSession(doc, this.Items(doc, doc.Body()))
}

// Items returns the narratable items of the given scope in document order.
// Items with equal descriptions are reported only once.
func (this *Scanner) Items(doc *screen.Document, scope *screen.Element) Items {
	c := collector{seen: make(map[string]struct{})}
	this.visit(doc, scope, &c, false)
	return c.items
}

type collector struct {
	items Items
	seen  map[string]struct{}
}

func (this *collector) add(item Item) {
	if item.Description == "" {
		return
	}
	if _, ok := this.seen[item.Description]; ok {
		return
	}
	this.seen[item.Description] = struct{}{}
	this.items = append(this.items, item)
}

func (this *Scanner) visit(doc *screen.Document, e *screen.Element, c *collector, insideText bool) {
	if this.isSkipped(e) {
		return
	}

	switch e.Tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if !insideText {
			this.addText(c, e, headingPrefix(e.Tag)+e.TextContent(), KindHeading)
		}
		return
	case "input", "textarea", "select", "button":
		c.add(this.describeControl(doc, e))
		return
	case "a":
		c.add(this.describeAction(doc, e, KindLink))
		return
	case "label":
		if doc.IsLabel(e) {
			// The text is part of the control description.
			this.visitChildren(doc, e, c, true)
			return
		}
	case "p", "blockquote", "figcaption", "caption":
		if !insideText {
			text := e.DirectText()
			if !hasInteractiveDescendant(e) {
				text = e.TextContent()
			}
			this.addText(c, e, text, KindText)
		}
		this.visitChildren(doc, e, c, true)
		return
	}

	switch e.Role() {
	case "button":
		c.add(this.describeAction(doc, e, KindButton))
		return
	case "link":
		c.add(this.describeAction(doc, e, KindLink))
		return
	case "heading":
		if !insideText {
			this.addText(c, e, headingPrefix("h"+e.AttrOr("aria-level", "2"))+e.TextContent(), KindHeading)
		}
		return
	}

	if !insideText && !labelsDirectControl(e) {
		this.addText(c, e, e.DirectText(), KindText)
	}
	this.visitChildren(doc, e, c, insideText)
}

func (this *Scanner) visitChildren(doc *screen.Document, e *screen.Element, c *collector, insideText bool) {
	for _, child := range e.Children() {
		this.visit(doc, child, c, insideText)
	}
}

func (this *Scanner) addText(c *collector, e *screen.Element, text string, kind Kind) {
	n := utf8.RuneCountInString(text)
	if n < 1 || (this.conf.MaxTextLength > 0 && uint(n) > this.conf.MaxTextLength) {
		return
	}
	c.add(Item{Ref: e, Description: text, Kind: kind})
}

func (this *Scanner) isSkipped(e *screen.Element) bool {
	switch e.Tag {
	case "script", "style", "noscript", "template", "head", "title", "meta", "link", "svg", "iframe", "canvas", "nav", "aside":
		return true
	}
	switch e.Role() {
	case "navigation", "complementary":
		return true
	}
	if e.Hidden() || e.Decorative() {
		return true
	}
	if this.conf.ExcludedClasses.MatchAny(e.Classes()...) {
		return true
	}
	if e.IsFormControl() {
		// Controls may legitimately be rendered without size.
		return false
	}
	if w, h := e.Size(); w <= 0 || h <= 0 || w < this.conf.MinSize || h < this.conf.MinSize {
		return true
	}
	return false
}

func (this *Scanner) describeControl(doc *screen.Document, e *screen.Element) Item {
	if e.Tag == "button" {
		if e.Type() == "submit" {
			return this.describeAction(doc, e, KindSubmit)
		}
		return this.describeAction(doc, e, KindButton)
	}
	if e.Tag == "select" {
		label := this.inferLabel(doc, e, "selection")
		return Item{
			Ref:         e,
			Kind:        KindSelect,
			Label:       label,
			Description: fmt.Sprintf("%s, selection, current value %s. Say click to open it.", label, valueOrEmpty(e.Value())),
		}
	}

	switch t := e.Type(); t {
	case "submit", "image", "reset", "button":
		kind := KindButton
		if t == "submit" || t == "image" {
			kind = KindSubmit
		}
		return this.describeAction(doc, e, kind)
	case "password":
		label := this.inferLabel(doc, e, "password")
		return Item{
			Ref:         e,
			Kind:        KindPassword,
			Label:       label,
			Description: fmt.Sprintf("%s, password field. For your security, please type your password using the keyboard.", label),
		}
	case "checkbox":
		label := this.inferLabel(doc, e, "checkbox")
		return Item{
			Ref:         e,
			Kind:        KindCheckbox,
			Label:       label,
			Description: fmt.Sprintf("%s, checkbox, %s. Say check to toggle it.", label, CheckedState(e.Checked())),
		}
	case "radio":
		label := this.inferLabel(doc, e, "option")
		state := "not selected"
		if e.Checked() {
			state = "selected"
		}
		return Item{
			Ref:         e,
			Kind:        KindButton,
			Label:       label,
			Description: fmt.Sprintf("%s, radio button, %s. Say click to select it.", label, state),
		}
	case "date", "datetime-local", "month", "week", "time":
		label := this.inferLabel(doc, e, "date")
		return Item{
			Ref:         e,
			Kind:        KindDate,
			Label:       label,
			Description: fmt.Sprintf("%s, date field, current value %s.", label, valueOrEmpty(e.Value())),
		}
	default:
		label := this.inferLabel(doc, e, "text")
		description := fmt.Sprintf("%s, text field. Say what you want to enter.", label)
		if v := e.Value(); v != "" {
			description = fmt.Sprintf("%s, text field, currently %s. Say what you want to enter.", label, v)
		}
		return Item{
			Ref:         e,
			Kind:        KindTextField,
			Label:       label,
			Description: description,
		}
	}
}

func (this *Scanner) describeAction(_ *screen.Document, e *screen.Element, kind Kind) Item {
	label := firstNonEmpty(
		e.AttrOr("aria-label", ""),
		e.TextContent(),
		e.AttrOr("title", ""),
		e.AttrOr("value", ""),
		e.AttrOr("alt", ""),
	)
	if label == "" {
		if kind == KindSubmit {
			label = "Submit"
		} else {
			label = "Unnamed " + kind.String()
		}
	}

	var description string
	switch kind {
	case KindLink:
		description = fmt.Sprintf("%s, link. Say click to open it.", label)
	default:
		description = fmt.Sprintf("%s, button. Say click to press it.", label)
	}
	return Item{Ref: e, Kind: kind, Label: label, Description: description}
}

// inferLabel resolves the name of a form control: an explicitly associated
// label, the text right before the control, the placeholder and finally the
// accessible name.
func (this *Scanner) inferLabel(doc *screen.Document, e *screen.Element, fallback string) string {
	if v := doc.LabelFor(e); v != "" {
		return v
	}
	if v := ambientLabel(e); v != "" {
		return v
	}
	return firstNonEmpty(
		e.AttrOr("placeholder", ""),
		e.AttrOr("aria-label", ""),
		e.AttrOr("title", ""),
		e.AttrOr("name", ""),
		"Unnamed "+fallback,
	)
}

func ambientLabel(e *screen.Element) string {
	if p := e.PreviousSibling(); p != nil && !p.IsFormControl() && !hasInteractiveDescendant(p) {
		if v := p.TextContent(); v != "" && utf8.RuneCountInString(v) <= maxAmbientLabelLength {
			return v
		}
	}
	if parent := e.Parent(); parent != nil {
		if v := parent.DirectText(); v != "" && utf8.RuneCountInString(v) <= maxAmbientLabelLength {
			return v
		}
	}
	return ""
}

// labelsDirectControl reports if the direct text of the given element is the
// ambient label of one of its child controls.
func labelsDirectControl(e *screen.Element) bool {
	if utf8.RuneCountInString(e.DirectText()) > maxAmbientLabelLength {
		return false
	}
	for _, c := range e.Children() {
		switch c.Tag {
		case "input", "textarea", "select":
			return true
		}
	}
	return false
}

func hasInteractiveDescendant(e *screen.Element) bool {
	found := false
	e.Walk(func(c *screen.Element) bool {
		if c != e && (c.IsFormControl() || c.Tag == "a" || c.Role() == "button" || c.Role() == "link") {
			found = true
		}
		return !found
	})
	return found
}

func headingPrefix(tag string) string {
	switch tag {
	case "h1":
		return "Page title: "
	case "h2":
		return "Section: "
	default:
		return "Subsection: "
	}
}

func CheckedState(checked bool) string {
	if checked {
		return "checked"
	}
	return "not checked"
}

func valueOrEmpty(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "empty"
	}
	return v
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.Join(strings.Fields(c), " "); c != "" {
			return c
		}
	}
	return ""
}
