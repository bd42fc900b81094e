package views

import (
	"context"
	"testing"

	"github.com/au-phiware/d3-gup/selection"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuilder(t *testing.T) {
	Convey("Given a view builder", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		input := make(chan []float64)
		toSamples := func(values []float64) []Sample {
			samples := make([]Sample, len(values))
			for i, v := range values {
				samples[i] = Sample{Label: string(rune('a' + i)), Value: v}
			}
			return samples
		}

		Convey("Build without views fails", func() {
			_, err := NewBuilder[[]float64, []Sample]().
				Model(input, toSamples).
				Build()
			So(err, ShouldEqual, ErrNoViews)
		})

		Convey("Build without a model fails", func() {
			_, err := NewBuilder[[]float64, []Sample]().
				View(func(done <-chan struct{}, vm <-chan []Sample) ViewComponent {
					return NewSeriesList(done, vm)
				}).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("Build returns every view in order", func() {
			views, err := NewBuilder[[]float64, []Sample]().
				Context(ctx).
				Model(input, toSamples).
				View(func(done <-chan struct{}, vm <-chan []Sample) ViewComponent {
					return NewBarChart(done, vm)
				}).
				View(func(done <-chan struct{}, vm <-chan []Sample) ViewComponent {
					return NewSeriesList(done, vm)
				}).
				Build()
			So(err, ShouldBeNil)
			So(len(views), ShouldEqual, 2)
			_, isChart := views[0].(*BarChart)
			So(isChart, ShouldBeTrue)
			_, isList := views[1].(*SeriesList)
			So(isList, ShouldBeTrue)
		})
	})
}

func TestBarChart(t *testing.T) {
	Convey("Given a bar chart fed directly", t, func() {
		done := make(chan struct{})
		defer close(done)
		series := make(chan []Sample)
		chart := NewBarChart(done, series)

		series <- []Sample{{Label: "a", Value: 2}, {Label: "b", Value: 4}}
		patches := <-chart.Updates()

		Convey("The first series inserts one rect per sample", func() {
			var inserts, plain, animated int
			for _, p := range patches {
				switch {
				case p.Action == selection.Insert:
					inserts++
					So(p.Tag, ShouldEqual, "rect")
					So(p.ParentId, ShouldEqual, "bar-chart-svg")
				case p.Duration == 0:
					plain++
				default:
					animated++
					So(p.Duration, ShouldEqual, barTransition)
				}
			}
			So(inserts, ShouldEqual, 2)
			// fill and width per entering bar, un-animated.
			So(plain, ShouldEqual, 4)
			// x, y and height per bar under the transition context.
			So(animated, ShouldEqual, 6)
		})

		Convey("A shrunk series collapses and removes the surplus bar", func() {
			series <- []Sample{{Label: "a", Value: 2}}
			patches := <-chart.Updates()

			var removals, inserts int
			for _, p := range patches {
				switch p.Action {
				case selection.Remove:
					removals++
					So(p.Duration, ShouldEqual, barTransition)
				case selection.Insert:
					inserts++
				}
			}
			So(removals, ShouldEqual, 1)
			So(inserts, ShouldEqual, 0)
		})

		Convey("An unchanged series inserts and removes nothing", func() {
			series <- []Sample{{Label: "a", Value: 2}, {Label: "b", Value: 4}}
			<-chart.Updates()
			series <- []Sample{{Label: "a", Value: 2}, {Label: "b", Value: 4}}
			patches := <-chart.Updates()

			for _, p := range patches {
				So(p.Action, ShouldEqual, selection.Modify)
			}
		})
	})
}

func TestSeriesList(t *testing.T) {
	Convey("Given a series list fed directly", t, func() {
		done := make(chan struct{})
		defer close(done)
		series := make(chan []Sample)
		list := NewSeriesList(done, series)

		series <- []Sample{{Label: "a", Value: 1}, {Label: "b", Value: 2}}
		patches := <-list.Updates()

		Convey("Each sample gets a list item with its text", func() {
			var inserts int
			var texts []string
			for _, p := range patches {
				if p.Action == selection.Insert {
					inserts++
					So(p.Tag, ShouldEqual, "li")
					continue
				}
				for _, op := range p.Ops {
					if op.Key == "textContent" {
						texts = append(texts, op.Value)
					}
				}
			}
			So(inserts, ShouldEqual, 2)
			So(texts, ShouldResemble, []string{"a: 1.00", "b: 2.00"})
		})
	})
}
