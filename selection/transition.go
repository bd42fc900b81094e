package selection

import (
	"time"

	gup "github.com/au-phiware/d3-gup"
)

// Tr is a transition context over a selection: the same operations as Sel,
// but every patch carries the context's timing so the client animates the
// change. The tree itself always changes immediately; only the visual effect
// is deferred, which keeps the whole protocol synchronous.
type Tr[T any] struct {
	sel      *Sel[T]
	duration time.Duration
	delay    time.Duration
}

// NewTransition returns a detached transition context carrying timing only.
// Pass it as the Tr of a gup.Container, or hand it to Sel.Transition to bind
// it to a selection.
func NewTransition[T any](duration, delay time.Duration) *Tr[T] {
	return &Tr[T]{duration: duration, delay: delay}
}

// Selection returns the underlying non-animated selection, or nil for a
// detached context.
func (t *Tr[T]) Selection() gup.Selection[T] {
	if t.sel == nil {
		return nil
	}
	return t.sel
}

func (t *Tr[T]) Duration() time.Duration { return t.duration }
func (t *Tr[T]) Delay() time.Duration    { return t.delay }

// Attr sets an attribute on every element, animated.
func (t *Tr[T]) Attr(key, value string) *Tr[T] {
	for _, node := range t.sel.nodes {
		t.sel.doc.setAttr(node, key, value, t.duration, t.delay)
	}
	return t
}

// AttrFn sets an attribute per element from its bound datum and index, animated.
func (t *Tr[T]) AttrFn(key string, fn func(d T, i int) string) *Tr[T] {
	for i, node := range t.sel.nodes {
		d, _ := node.datum.(T)
		t.sel.doc.setAttr(node, key, fn(d, i), t.duration, t.delay)
	}
	return t
}

// Text sets the text content of every element, animated.
func (t *Tr[T]) Text(value string) *Tr[T] {
	for _, node := range t.sel.nodes {
		t.sel.doc.setText(node, value, t.duration, t.delay)
	}
	return t
}

// TextFn sets the text content per element from its bound datum and index, animated.
func (t *Tr[T]) TextFn(fn func(d T, i int) string) *Tr[T] {
	for i, node := range t.sel.nodes {
		d, _ := node.datum.(T)
		t.sel.doc.setText(node, fn(d, i), t.duration, t.delay)
	}
	return t
}

// Remove deletes every element from the tree. The patch carries the
// context's timing: the client animates the element out before discarding it.
func (t *Tr[T]) Remove() *Tr[T] {
	for _, node := range t.sel.nodes {
		t.sel.doc.removeElement(node, t.duration, t.delay)
	}
	t.sel.nodes = nil
	return t
}

// Data joins through to the underlying selection; joins themselves are never
// animated.
func (t *Tr[T]) Data(data []T, key gup.KeyFunc[T]) gup.Joined[T] {
	return t.sel.Data(data, key)
}

// Merge unions the underlying selections and rewraps the result in this
// context.
func (t *Tr[T]) Merge(other gup.Selection[T]) gup.Selection[T] {
	merged := underlying[T](t.sel.Merge(other))
	return &Tr[T]{sel: merged, duration: t.duration, delay: t.delay}
}

// Call invokes fn with the transition prepended to args.
func (t *Tr[T]) Call(fn func(gup.Selection[T], ...any), args ...any) gup.Selection[T] {
	fn(t, args...)
	return t
}
