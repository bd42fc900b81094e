package gup

// Compose merges several update specs into one. Metadata is extended left to
// right (later sources win on collision); phase functions are composed right
// to left, so the rightmost source runs first. The rightmost spec is the
// innermost layer: for enter in particular it must create elements before
// layers to its left decorate them, and select mirrors that rule. For pre,
// exit and post the sources all receive the same arguments; for select and
// enter each source's returned view feeds the next source, and the last
// returned view is the composed result.
//
// Sources are never mutated, and each source's phase is fetched at dispatch
// time, so configuring a source after composition still takes effect. A
// source phase that panics aborts the remaining sources for that phase.
func Compose[T any](specs ...*Spec[T]) *Spec[T] {
	out := New[T]()

	for _, s := range specs {
		for k, v := range s.meta {
			out.Set(k, v)
		}
	}

	rev := make([]*Spec[T], 0, len(specs))
	for i := len(specs) - 1; i >= 0; i-- {
		rev = append(rev, specs[i])
	}

	out.Select(composeViews(rev, PhaseSelect, (*Spec[T]).SelectFn))
	out.Enter(composeViews(rev, PhaseEnter, (*Spec[T]).EnterFn))
	out.Pre(composeEffects(rev, PhasePre, (*Spec[T]).PreFn))
	out.Exit(composeEffects(rev, PhaseExit, (*Spec[T]).ExitFn))
	out.Post(composeEffects(rev, PhasePost, (*Spec[T]).PostFn))

	return out
}

// composeViews builds the dispatcher for the view-producing phases, threading
// each configured source's result into the next.
func composeViews[T any](sources []*Spec[T], p Phase, get func(*Spec[T]) SelectFunc[T]) SelectFunc[T] {
	return func(view Container[T], args ...any) Container[T] {
		for _, s := range sources {
			if !s.Configured(p) {
				continue
			}
			view = get(s)(view, args...)
		}
		return view
	}
}

// composeEffects builds the dispatcher for the side-effecting phases; every
// configured source sees the original arguments.
func composeEffects[T any](sources []*Spec[T], p Phase, get func(*Spec[T]) PhaseFunc[T]) PhaseFunc[T] {
	return func(view Container[T], args ...any) {
		for _, s := range sources {
			if !s.Configured(p) {
				continue
			}
			get(s)(view, args...)
		}
	}
}
