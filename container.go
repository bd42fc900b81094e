package gup

// KeyFunc derives a stable identity from a datum, used to match data entries
// to elements across successive joins (object constancy) instead of relying
// on positional order.
type KeyFunc[T any] func(datum T, index int) string

// Selection is the minimal surface the protocol requires of a host selection.
// The join primitive itself lives behind Data; this package never manipulates
// elements directly.
type Selection[T any] interface {
	// Data binds the array to the selection's elements, producing the three
	// join sub-views. A nil key joins positionally.
	Data(data []T, key KeyFunc[T]) Joined[T]
	// Merge unions the receiver with another selection, receiver first.
	Merge(other Selection[T]) Selection[T]
	// Call invokes fn with the selection prepended to args and returns the
	// selection, allowing specs and other operators to be chained in.
	Call(fn func(Selection[T], ...any), args ...any) Selection[T]
}

// Joined is the result of a data join. The joined view itself is the
// persisting ("update") view; Enter and Exit expose the other two.
type Joined[T any] interface {
	Selection[T]
	Enter() Selection[T]
	Exit() Selection[T]
}

// Transition is an animated wrapper around a selection. The protocol only
// ever needs the underlying view back; scheduling is the host's business.
type Transition[T any] interface {
	Selection() Selection[T]
}

// Transitioner is implemented by selections that can enter an animated
// context. Views lacking it are passed to phases un-animated.
type Transitioner[T any] interface {
	Transition(ctx Transition[T]) Transition[T]
}

// Container is what a phase function receives and what Apply returns: a
// selection, possibly operating under an active transition context. Tr is nil
// for a plain view. Phase functions that produce a view (select, enter) may
// return a Container with Tr set to promote a new transition context.
type Container[T any] struct {
	Sel Selection[T]
	Tr  Transition[T]
}

// Plain wraps a selection with no active transition context.
func Plain[T any](sel Selection[T]) Container[T] {
	return Container[T]{Sel: sel}
}

// Animated wraps a transition, deriving the underlying selection so later
// phases can join and merge against it.
func Animated[T any](tr Transition[T]) Container[T] {
	return Container[T]{Sel: tr.Selection(), Tr: tr}
}

// Animated reports whether a transition context is active.
func (c Container[T]) Animated() bool {
	return c.Tr != nil
}

// wrap places sel under the active transition context, if any and if the
// selection supports it; otherwise the view is passed through plain.
func wrap[T any](sel Selection[T], tr Transition[T]) Container[T] {
	if tr != nil {
		if tn, ok := sel.(Transitioner[T]); ok {
			wt := tn.Transition(tr)
			return Container[T]{Sel: wt.Selection(), Tr: wt}
		}
	}
	return Container[T]{Sel: sel}
}
