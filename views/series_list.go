package views

import (
	"fmt"
	"html/template"

	gup "github.com/au-phiware/d3-gup"
	"github.com/au-phiware/d3-gup/selection"
	channerics "github.com/niceyeti/channerics/channels"
)

// SeriesList renders the same series as a plain text list, one item per
// sample. A single un-composed spec suffices here; it exists mostly as the
// second consumer of the broadcast view-model channel.
type SeriesList struct {
	name    string
	doc     *selection.Document
	spec    *gup.Spec[Sample]
	updates <-chan []selection.EleUpdate
}

// NewSeriesList returns a list view fed by the series channel.
func NewSeriesList(done <-chan struct{}, series <-chan []Sample) *SeriesList {
	sl := &SeriesList{
		name: "series-list",
		doc:  selection.NewDocument("series-list-ul"),
	}
	sl.spec = gup.New[Sample]().
		Select(func(v gup.Container[Sample], _ ...any) gup.Container[Sample] {
			return gup.Plain[Sample](v.Sel.(*selection.Sel[Sample]).SelectAll("li"))
		}).
		Enter(func(v gup.Container[Sample], _ ...any) gup.Container[Sample] {
			return gup.Plain[Sample](v.Sel.(*selection.Sel[Sample]).Append("li"))
		}).
		Exit(func(v gup.Container[Sample], _ ...any) {
			v.Sel.(*selection.Sel[Sample]).Remove()
		}).
		Post(func(v gup.Container[Sample], _ ...any) {
			v.Sel.(*selection.Sel[Sample]).TextFn(func(s Sample, _ int) string {
				return fmt.Sprintf("%s: %.2f", s.Label, s.Value)
			})
		})
	sl.updates = channerics.Convert(done, series, sl.onUpdate)
	return sl
}

// Updates returns the element patch channel for this view.
func (sl *SeriesList) Updates() <-chan []selection.EleUpdate {
	return sl.updates
}

// Parse adds the list's initial markup to the parent template and returns
// the definition name.
func (sl *SeriesList) Parse(parent *template.Template) (string, error) {
	markup := fmt.Sprintf(
		`{{ define %q }}<ul id=%q></ul>{{ end }}`,
		sl.name, sl.doc.Root().Id())
	if _, err := parent.Parse(markup); err != nil {
		return "", err
	}
	return sl.name, nil
}

func (sl *SeriesList) onUpdate(series []Sample) []selection.EleUpdate {
	sl.spec.Data(series, SampleKey)
	sl.spec.Apply(gup.Plain[Sample](selection.Root[Sample](sl.doc)))
	return sl.doc.Flush()
}
