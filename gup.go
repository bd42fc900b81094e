// gup structures the general update pattern for binding array data to the
// elements of a retained scene graph: select candidate elements, join them
// against the data, then run user phases over the persisting, exiting and
// entering views before merging. The join itself and all element manipulation
// belong to the host selection; this package only sequences callbacks
// around it.
package gup

// Phase names one of the five extension points of an update spec.
type Phase int

const (
	PhaseSelect Phase = iota
	PhasePre
	PhaseExit
	PhaseEnter
	PhasePost
)

func (p Phase) String() string {
	switch p {
	case PhaseSelect:
		return "select"
	case PhasePre:
		return "pre"
	case PhaseExit:
		return "exit"
	case PhaseEnter:
		return "enter"
	case PhasePost:
		return "post"
	}
	return "unknown"
}

// PhaseFunc is a side-effecting phase (pre, exit, post): it receives the
// possibly-animated view plus any pass-through args; its return is discarded.
type PhaseFunc[T any] func(view Container[T], args ...any)

// SelectFunc is a view-producing phase (select, enter): its result replaces
// the view for the remainder of the protocol, and may promote a new
// transition context by returning an animated container.
type SelectFunc[T any] func(view Container[T], args ...any) Container[T]

// Identity is the canonical default for the select and enter phases.
func Identity[T any](view Container[T], _ ...any) Container[T] {
	return view
}

// Nop is the canonical default for the pre, exit and post phases.
func Nop[T any](Container[T], ...any) {}

// optional is an explicit set/unset slot so configured-ness never depends on
// comparing function values.
type optional[F any] struct {
	fn F
	ok bool
}

// Spec is a configurable update specification: five optional phase functions
// plus a pending data binding. Zero value is usable; every setter returns the
// spec for chaining. A Spec carries ordinary single-owner mutable state and
// provides no locking: configure it before invoking it.
type Spec[T any] struct {
	selPhase   optional[SelectFunc[T]]
	prePhase   optional[PhaseFunc[T]]
	exitPhase  optional[PhaseFunc[T]]
	enterPhase optional[SelectFunc[T]]
	postPhase  optional[PhaseFunc[T]]

	data  []T
	key   KeyFunc[T]
	extra []any

	meta map[string]any
}

// New returns an empty spec: all phases default, no pending binding.
func New[T any]() *Spec[T] {
	return &Spec[T]{}
}

// Select sets the select phase; nil resets it to the identity default.
func (s *Spec[T]) Select(fn SelectFunc[T]) *Spec[T] {
	s.selPhase = optional[SelectFunc[T]]{fn: fn, ok: fn != nil}
	return s
}

// SelectFn returns the current select phase, defaulting to Identity.
func (s *Spec[T]) SelectFn() SelectFunc[T] {
	if s.selPhase.ok {
		return s.selPhase.fn
	}
	return Identity[T]
}

// Pre sets the pre phase; nil resets it to the no-op default.
func (s *Spec[T]) Pre(fn PhaseFunc[T]) *Spec[T] {
	s.prePhase = optional[PhaseFunc[T]]{fn: fn, ok: fn != nil}
	return s
}

// PreFn returns the current pre phase, defaulting to Nop.
func (s *Spec[T]) PreFn() PhaseFunc[T] {
	if s.prePhase.ok {
		return s.prePhase.fn
	}
	return Nop[T]
}

// Exit sets the exit phase; nil resets it to the no-op default.
func (s *Spec[T]) Exit(fn PhaseFunc[T]) *Spec[T] {
	s.exitPhase = optional[PhaseFunc[T]]{fn: fn, ok: fn != nil}
	return s
}

// ExitFn returns the current exit phase, defaulting to Nop.
func (s *Spec[T]) ExitFn() PhaseFunc[T] {
	if s.exitPhase.ok {
		return s.exitPhase.fn
	}
	return Nop[T]
}

// Enter sets the enter phase; nil resets it to the identity default.
func (s *Spec[T]) Enter(fn SelectFunc[T]) *Spec[T] {
	s.enterPhase = optional[SelectFunc[T]]{fn: fn, ok: fn != nil}
	return s
}

// EnterFn returns the current enter phase, defaulting to Identity.
func (s *Spec[T]) EnterFn() SelectFunc[T] {
	if s.enterPhase.ok {
		return s.enterPhase.fn
	}
	return Identity[T]
}

// Post sets the post phase; nil resets it to the no-op default.
func (s *Spec[T]) Post(fn PhaseFunc[T]) *Spec[T] {
	s.postPhase = optional[PhaseFunc[T]]{fn: fn, ok: fn != nil}
	return s
}

// PostFn returns the current post phase, defaulting to Nop.
func (s *Spec[T]) PostFn() PhaseFunc[T] {
	if s.postPhase.ok {
		return s.postPhase.fn
	}
	return Nop[T]
}

// Configured reports whether a phase holds a user-supplied function, as
// opposed to its default. The getters always return a callable, so this is
// the only way to distinguish "unset" from "set to something equivalent".
func (s *Spec[T]) Configured(p Phase) bool {
	switch p {
	case PhaseSelect:
		return s.selPhase.ok
	case PhasePre:
		return s.prePhase.ok
	case PhaseExit:
		return s.exitPhase.ok
	case PhaseEnter:
		return s.enterPhase.ok
	case PhasePost:
		return s.postPhase.ok
	}
	return false
}

// Update is a positional shorthand setting pre, exit, enter and post at once.
// A nil argument leaves that phase untouched rather than resetting it; use
// the per-phase setters to clear a phase.
func (s *Spec[T]) Update(pre, exit PhaseFunc[T], enter SelectFunc[T], post PhaseFunc[T]) *Spec[T] {
	if pre != nil {
		s.Pre(pre)
	}
	if exit != nil {
		s.Exit(exit)
	}
	if enter != nil {
		s.Enter(enter)
	}
	if post != nil {
		s.Post(post)
	}
	return s
}

// UpdateFns returns the four update phases in order (pre, exit, enter, post),
// each defaulted; select is deliberately excluded.
func (s *Spec[T]) UpdateFns() (pre PhaseFunc[T], exit PhaseFunc[T], enter SelectFunc[T], post PhaseFunc[T]) {
	return s.PreFn(), s.ExitFn(), s.EnterFn(), s.PostFn()
}

// Data sets the pending binding: the array to join, an optional key function
// (nil joins positionally) and any trailing args passed through to every
// phase ahead of the args given to Apply.
func (s *Spec[T]) Data(data []T, key KeyFunc[T], extra ...any) *Spec[T] {
	s.data = data
	s.key = key
	s.extra = extra
	return s
}

// Binding returns the pending data, key function and trailing args.
func (s *Spec[T]) Binding() ([]T, KeyFunc[T], []any) {
	return s.data, s.key, s.extra
}

// Set attaches auxiliary metadata to the spec, carried across Compose.
// Reserved names (the phase names, "update", "data") are ignored so metadata
// can never shadow the protocol surface.
func (s *Spec[T]) Set(key string, val any) *Spec[T] {
	if reservedMetaKeys[key] {
		return s
	}
	if s.meta == nil {
		s.meta = map[string]any{}
	}
	s.meta[key] = val
	return s
}

// Get returns metadata previously attached with Set.
func (s *Spec[T]) Get(key string) (any, bool) {
	val, ok := s.meta[key]
	return val, ok
}

// Meta returns a copy of the spec's metadata.
func (s *Spec[T]) Meta() map[string]any {
	out := make(map[string]any, len(s.meta))
	for k, v := range s.meta {
		out[k] = v
	}
	return out
}

var reservedMetaKeys = map[string]bool{
	"select": true,
	"pre":    true,
	"exit":   true,
	"enter":  true,
	"post":   true,
	"update": true,
	"data":   true,
}

// Apply runs the full protocol against a container: select, join, pre, exit,
// enter, merge, post, in that order, and returns the merged view. The select
// and enter phases may replace the view and promote a transition context;
// pre, exit and post run under the active context when their view supports
// it. The enter phase never runs animated: entering elements have no prior
// state to animate from. Failures inside phase functions are not caught.
func (s *Spec[T]) Apply(c Container[T], args ...any) Container[T] {
	if len(s.extra) > 0 {
		args = append(append(make([]any, 0, len(s.extra)+len(args)), s.extra...), args...)
	}

	if s.selPhase.ok {
		next := s.selPhase.fn(c, args...)
		if next.Tr != nil {
			c = Animated[T](next.Tr)
		} else {
			c.Sel = next.Sel
		}
	}

	joined := c.Sel.Data(s.data, s.key)

	if s.prePhase.ok {
		s.prePhase.fn(wrap[T](joined, c.Tr), args...)
	}

	if s.exitPhase.ok {
		// Removal may be visually deferred by the transition; the call
		// itself still returns synchronously.
		s.exitPhase.fn(wrap[T](joined.Exit(), c.Tr), args...)
	}

	entering := joined.Enter()
	if s.enterPhase.ok {
		next := s.enterPhase.fn(Container[T]{Sel: entering}, args...)
		if next.Tr != nil {
			c.Tr = next.Tr
			entering = next.Tr.Selection()
		} else {
			entering = next.Sel
		}
	}

	merged := entering.Merge(joined)
	final := wrap[T](merged, c.Tr)
	if s.postPhase.ok {
		s.postPhase.fn(final, args...)
	}
	return final
}
