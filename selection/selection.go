package selection

import (
	"time"

	gup "github.com/au-phiware/d3-gup"
)

// Sel is a selection of elements in a document, generic over the datum type
// joined to them. It implements gup.Selection and gup.Transitioner, so it can
// serve as the container for an update spec directly.
//
// An enter selection holds pending data rather than elements: Append
// materializes each pending datum as a new element under the join parent.
type Sel[T any] struct {
	doc     *Document
	parent  *Element
	nodes   []*Element
	pending []pendingNode[T]
}

type pendingNode[T any] struct {
	datum T
	key   string
}

// Root returns a selection over the document's root element.
func Root[T any](doc *Document) *Sel[T] {
	return &Sel[T]{doc: doc, nodes: []*Element{doc.root}, parent: doc.root.parent}
}

// SelectAll returns the children of the selection's first element matching
// the tag. The element becomes the parent for subsequent joins: entering
// elements are appended under it.
func (s *Sel[T]) SelectAll(tag string) *Sel[T] {
	out := &Sel[T]{doc: s.doc}
	if len(s.nodes) == 0 {
		return out
	}
	out.parent = s.nodes[0]
	for _, child := range out.parent.children {
		if child.tag == tag {
			out.nodes = append(out.nodes, child)
		}
	}
	return out
}

// Len returns the number of elements, or pending data for an enter selection.
func (s *Sel[T]) Len() int {
	if len(s.pending) > 0 {
		return len(s.pending)
	}
	return len(s.nodes)
}

// Empty reports whether the selection holds neither elements nor pending data.
func (s *Sel[T]) Empty() bool { return s.Len() == 0 }

// Nodes returns the selected elements in document order.
func (s *Sel[T]) Nodes() []*Element { return s.nodes }

// Data joins the array against the selected elements. With a nil key the
// join is positional; with a key function, elements are matched by the key of
// their previously bound datum, so reordered data finds its old elements.
// The returned join is itself the persisting view.
func (s *Sel[T]) Data(data []T, key gup.KeyFunc[T]) gup.Joined[T] {
	update := &Sel[T]{doc: s.doc, parent: s.parent}
	enter := &Sel[T]{doc: s.doc, parent: s.parent}
	exit := &Sel[T]{doc: s.doc, parent: s.parent}

	if key == nil {
		n := min(len(s.nodes), len(data))
		for i := 0; i < n; i++ {
			node := s.nodes[i]
			node.datum = data[i]
			update.nodes = append(update.nodes, node)
		}
		for _, d := range data[n:] {
			enter.pending = append(enter.pending, pendingNode[T]{datum: d})
		}
		exit.nodes = append(exit.nodes, s.nodes[n:]...)
	} else {
		// Recompute each element's key from its bound datum so key
		// functions may change between joins. Duplicate keys queue up
		// per key and are consumed in document order, so each datum
		// claims at most one element and unmatched duplicates exit.
		byKey := make(map[string][]*Element, len(s.nodes))
		for i, node := range s.nodes {
			if d, ok := node.datum.(T); ok {
				node.key = key(d, i)
			}
			byKey[node.key] = append(byKey[node.key], node)
		}

		matched := make(map[*Element]bool, len(s.nodes))
		for i, d := range data {
			k := key(d, i)
			if nodes := byKey[k]; len(nodes) > 0 {
				node := nodes[0]
				byKey[k] = nodes[1:]
				matched[node] = true
				node.datum = d
				update.nodes = append(update.nodes, node)
			} else {
				enter.pending = append(enter.pending, pendingNode[T]{datum: d, key: k})
			}
		}
		for _, node := range s.nodes {
			if !matched[node] {
				exit.nodes = append(exit.nodes, node)
			}
		}
	}

	return &joined[T]{Sel: update, enter: enter, exit: exit}
}

// joined is a data join result; the embedded selection is the persisting view.
type joined[T any] struct {
	*Sel[T]
	enter *Sel[T]
	exit  *Sel[T]
}

func (j *joined[T]) Enter() gup.Selection[T] { return j.enter }
func (j *joined[T]) Exit() gup.Selection[T]  { return j.exit }

// underlying unwraps any of this package's selection shapes.
func underlying[T any](s gup.Selection[T]) *Sel[T] {
	switch v := s.(type) {
	case *Sel[T]:
		return v
	case *joined[T]:
		return v.Sel
	case *Tr[T]:
		return v.sel
	}
	return nil
}

// Append materializes one new element of the given tag per pending datum (for
// an enter selection) or per selected element otherwise, and returns the
// selection of new elements.
func (s *Sel[T]) Append(tag string) *Sel[T] {
	out := &Sel[T]{doc: s.doc, parent: s.parent}
	if len(s.pending) > 0 {
		for _, p := range s.pending {
			out.nodes = append(out.nodes, s.doc.createElement(tag, s.parent, p.datum, p.key))
		}
		return out
	}
	for _, node := range s.nodes {
		out.nodes = append(out.nodes, s.doc.createElement(tag, node, node.datum, node.key))
	}
	return out
}

// Attr sets an attribute on every selected element.
func (s *Sel[T]) Attr(key, value string) *Sel[T] {
	for _, node := range s.nodes {
		s.doc.setAttr(node, key, value, 0, 0)
	}
	return s
}

// AttrFn sets an attribute per element from its bound datum and index.
func (s *Sel[T]) AttrFn(key string, fn func(d T, i int) string) *Sel[T] {
	for i, node := range s.nodes {
		d, _ := node.datum.(T)
		s.doc.setAttr(node, key, fn(d, i), 0, 0)
	}
	return s
}

// Text sets the text content of every selected element.
func (s *Sel[T]) Text(value string) *Sel[T] {
	for _, node := range s.nodes {
		s.doc.setText(node, value, 0, 0)
	}
	return s
}

// TextFn sets the text content per element from its bound datum and index.
func (s *Sel[T]) TextFn(fn func(d T, i int) string) *Sel[T] {
	for i, node := range s.nodes {
		d, _ := node.datum.(T)
		s.doc.setText(node, fn(d, i), 0, 0)
	}
	return s
}

// Remove deletes every selected element from the tree.
func (s *Sel[T]) Remove() *Sel[T] {
	for _, node := range s.nodes {
		s.doc.removeElement(node, 0, 0)
	}
	s.nodes = nil
	return s
}

// Each invokes fn once per selected element with its datum and index.
func (s *Sel[T]) Each(fn func(d T, i int)) *Sel[T] {
	for i, node := range s.nodes {
		d, _ := node.datum.(T)
		fn(d, i)
	}
	return s
}

// Merge unions the receiver with another selection of this package,
// receiver's elements first.
func (s *Sel[T]) Merge(other gup.Selection[T]) gup.Selection[T] {
	out := &Sel[T]{doc: s.doc, parent: s.parent}
	out.nodes = append(out.nodes, s.nodes...)
	if o := underlying[T](other); o != nil {
		out.nodes = append(out.nodes, o.nodes...)
		if out.parent == nil {
			out.parent = o.parent
		}
	}
	return out
}

// Call invokes fn with the selection prepended to args and returns the
// selection for chaining.
func (s *Sel[T]) Call(fn func(gup.Selection[T], ...any), args ...any) gup.Selection[T] {
	fn(s, args...)
	return s
}

// Transition places the selection under a transition context, inheriting the
// context's timing.
func (s *Sel[T]) Transition(ctx gup.Transition[T]) gup.Transition[T] {
	duration, delay := time.Duration(0), time.Duration(0)
	if t, ok := ctx.(*Tr[T]); ok {
		duration, delay = t.duration, t.delay
	}
	return &Tr[T]{sel: s, duration: duration, delay: delay}
}

func (d *Document) setAttr(node *Element, key, value string, duration, delay time.Duration) {
	if node.attrs == nil {
		node.attrs = map[string]string{}
	}
	node.attrs[key] = value
	d.push(EleUpdate{
		Action:   Modify,
		EleId:    node.id,
		Ops:      []Op{{Key: key, Value: value}},
		Duration: duration,
		Delay:    delay,
	})
}

func (d *Document) setText(node *Element, value string, duration, delay time.Duration) {
	node.text = value
	d.push(EleUpdate{
		Action:   Modify,
		EleId:    node.id,
		Ops:      []Op{{Key: "textContent", Value: value}},
		Duration: duration,
		Delay:    delay,
	})
}
