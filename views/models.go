// views contains view components driven by update specs: each component owns
// a document, applies a spec per incoming view-model, and emits the resulting
// element patches on a channel for a client to apply.
package views

import (
	"html/template"

	"github.com/au-phiware/d3-gup/selection"
)

// Sample is one labeled value of a series: the shared view-model for the
// components in this package.
type Sample struct {
	Label string
	Value float64
}

// SampleKey keys joins by label, so a sample keeps its element as the series
// reorders.
func SampleKey(s Sample, _ int) string { return s.Label }

// ViewComponent is a server-side view: Parse adds its initial markup to the
// parent template, Updates yields the element patches that keep a client's
// copy current.
type ViewComponent interface {
	Updates() <-chan []selection.EleUpdate
	Parse(*template.Template) (string, error)
}
