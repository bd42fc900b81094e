// selection is a server-side host for the update protocol: a small retained
// element tree whose selections implement the gup capability surface. Every
// structural or attribute mutation is recorded as an element patch, in the
// same spirit as streaming ele-updates to a thin websocket client that
// applies them to the real DOM.
package selection

import (
	"fmt"
	"time"
)

// Action discriminates the structural effect of a patch.
type Action int

const (
	// Modify sets attributes or text content on an existing element.
	Modify Action = iota
	// Insert creates a new element under ParentId.
	Insert
	// Remove deletes the element.
	Remove
)

func (a Action) String() string {
	switch a {
	case Modify:
		return "modify"
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	}
	return "unknown"
}

// Op is a key and value: an attribute and its new value. "textContent" is a
// reserved key meaning the element's text.
type Op struct {
	Key   string
	Value string
}

// EleUpdate is an element identifier and the operations to apply to it.
// Duration and Delay are non-zero when the change was scheduled under a
// transition context: the element tree has already changed, and the client is
// expected to animate or defer the visual effect.
type EleUpdate struct {
	Action   Action
	EleId    string
	ParentId string // set for inserts
	Tag      string // set for inserts
	Ops      []Op
	Duration time.Duration
	Delay    time.Duration
}

// Element is one node of the retained tree. Elements remember the datum and
// join key they were last bound to, which is what makes successive keyed
// joins stable (object constancy).
type Element struct {
	id       string
	tag      string
	attrs    map[string]string
	text     string
	parent   *Element
	children []*Element
	datum    any
	key      string
}

func (e *Element) Id() string   { return e.id }
func (e *Element) Tag() string  { return e.tag }
func (e *Element) Text() string { return e.text }

// Attr returns the current value of an attribute.
func (e *Element) Attr(key string) string { return e.attrs[key] }

// Children returns the element's children in document order.
func (e *Element) Children() []*Element { return e.children }

// Datum returns the datum bound at the last join, if any.
func (e *Element) Datum() any { return e.datum }

// Document owns the element tree and accumulates patches. It is
// single-threaded by design: one view owns one document, and updates flow
// through it synchronously.
type Document struct {
	root    *Element
	seq     int
	patches []EleUpdate
}

// NewDocument returns a document with a single root element of the given tag.
func NewDocument(rootTag string) *Document {
	doc := &Document{}
	doc.root = &Element{id: rootTag, tag: rootTag}
	return doc
}

// Root returns the root element.
func (d *Document) Root() *Element { return d.root }

// Flush drains and returns the patches accumulated since the previous flush.
func (d *Document) Flush() []EleUpdate {
	out := d.patches
	d.patches = nil
	return out
}

func (d *Document) push(p EleUpdate) {
	d.patches = append(d.patches, p)
}

func (d *Document) createElement(tag string, parent *Element, datum any, key string) *Element {
	d.seq++
	ele := &Element{
		id:     fmt.Sprintf("%s-%s-%d", d.root.id, tag, d.seq),
		tag:    tag,
		parent: parent,
		datum:  datum,
		key:    key,
	}
	parent.children = append(parent.children, ele)
	d.push(EleUpdate{
		Action:   Insert,
		EleId:    ele.id,
		ParentId: parent.id,
		Tag:      tag,
	})
	return ele
}

func (d *Document) removeElement(ele *Element, duration, delay time.Duration) {
	if ele.parent != nil {
		siblings := ele.parent.children
		for i, child := range siblings {
			if child == ele {
				ele.parent.children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
		ele.parent = nil
	}
	d.push(EleUpdate{
		Action:   Remove,
		EleId:    ele.id,
		Duration: duration,
		Delay:    delay,
	})
}
