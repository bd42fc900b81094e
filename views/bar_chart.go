package views

import (
	"fmt"
	"html/template"
	"time"

	gup "github.com/au-phiware/d3-gup"
	"github.com/au-phiware/d3-gup/selection"
	channerics "github.com/niceyeti/channerics/channels"
)

const (
	barWidth    = 24
	barGap      = 4
	chartHeight = 100
	chartPad    = 4
	// How long bar geometry and removals animate on the client.
	barTransition = 250 * time.Millisecond
)

// BarChart renders a sample series as svg bars. The update spec is composed
// from two layers: mechanics (select the rects, create and remove them as
// the series changes) and styling (static presentation on entry, geometry on
// every pass). Mechanics sits rightmost so its enter phase creates the
// elements before the styling layer decorates them.
type BarChart struct {
	name    string
	doc     *selection.Document
	spec    *gup.Spec[Sample]
	updates <-chan []selection.EleUpdate
}

// NewBarChart returns a bar chart fed by the series channel; patches appear
// on Updates until the series channel or done closes.
func NewBarChart(done <-chan struct{}, series <-chan []Sample) *BarChart {
	bc := &BarChart{
		name: "bar-chart",
		doc:  selection.NewDocument("bar-chart-svg"),
		spec: gup.Compose(barStyling(), barMechanics()),
	}
	bc.updates = channerics.Convert(done, series, bc.onUpdate)
	return bc
}

// Updates returns the element patch channel for this view.
func (bc *BarChart) Updates() <-chan []selection.EleUpdate {
	return bc.updates
}

// Parse adds the chart's initial markup to the parent template and returns
// the definition name. The svg starts empty; bars arrive as patches.
func (bc *BarChart) Parse(parent *template.Template) (string, error) {
	markup := fmt.Sprintf(
		`{{ define %q }}<div id=%q><svg id=%q width="640" height="%d" style="shape-rendering: crispEdges;"></svg></div>{{ end }}`,
		bc.name, bc.name, bc.doc.Root().Id(), chartHeight+2*chartPad)
	if _, err := parent.Parse(markup); err != nil {
		return "", err
	}
	return bc.name, nil
}

// onUpdate applies the spec to the new series under a transition context and
// drains the resulting patches.
func (bc *BarChart) onUpdate(series []Sample) []selection.EleUpdate {
	max := 0.0
	for _, s := range series {
		if s.Value > max {
			max = s.Value
		}
	}
	if max <= 0 {
		max = 1
	}

	bc.spec.Data(series, SampleKey, max)
	bc.spec.Apply(gup.Container[Sample]{
		Sel: selection.Root[Sample](bc.doc),
		Tr:  selection.NewTransition[Sample](barTransition, 0),
	})
	return bc.doc.Flush()
}

// barMechanics selects the bars and keeps their population in sync with the
// series: entering samples get a rect, exiting rects collapse and go away.
func barMechanics() *gup.Spec[Sample] {
	return gup.New[Sample]().
		Select(func(v gup.Container[Sample], _ ...any) gup.Container[Sample] {
			return gup.Plain[Sample](v.Sel.(*selection.Sel[Sample]).SelectAll("rect"))
		}).
		Enter(func(v gup.Container[Sample], _ ...any) gup.Container[Sample] {
			return gup.Plain[Sample](v.Sel.(*selection.Sel[Sample]).Append("rect"))
		}).
		Exit(func(v gup.Container[Sample], _ ...any) {
			if tr, ok := v.Tr.(*selection.Tr[Sample]); ok {
				tr.Attr("height", "0").Remove()
				return
			}
			v.Sel.(*selection.Sel[Sample]).Remove()
		})
}

// barStyling decorates entering bars and lays out geometry for the merged
// view on every pass. The max value arrives as a pass-through argument.
func barStyling() *gup.Spec[Sample] {
	return gup.New[Sample]().
		Enter(func(v gup.Container[Sample], _ ...any) gup.Container[Sample] {
			v.Sel.(*selection.Sel[Sample]).
				Attr("fill", "steelblue").
				Attr("width", fmt.Sprint(barWidth))
			return v
		}).
		Post(func(v gup.Container[Sample], args ...any) {
			layoutBars(v, passedMax(args))
		})
}

func passedMax(args []any) float64 {
	if len(args) > 0 {
		if m, ok := args[0].(float64); ok && m > 0 {
			return m
		}
	}
	return 1
}

func layoutBars(v gup.Container[Sample], max float64) {
	x := func(_ Sample, i int) string {
		return fmt.Sprint(i * (barWidth + barGap))
	}
	y := func(s Sample, _ int) string {
		return fmt.Sprint(chartPad + int((1-s.Value/max)*chartHeight))
	}
	h := func(s Sample, _ int) string {
		return fmt.Sprint(int(s.Value / max * chartHeight))
	}

	if tr, ok := v.Tr.(*selection.Tr[Sample]); ok {
		tr.AttrFn("x", x).AttrFn("y", y).AttrFn("height", h)
		return
	}
	v.Sel.(*selection.Sel[Sample]).AttrFn("x", x).AttrFn("y", y).AttrFn("height", h)
}
