package server

import (
	"context"
	"html/template"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/au-phiware/d3-gup/selection"
	"github.com/au-phiware/d3-gup/views"
)

func TestPageParse(t *testing.T) {
	Convey("Given a page over the stock views", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		series := make(chan []views.Sample)

		page := NewPage(ctx, []views.ViewComponent{
			views.NewBarChart(ctx.Done(), series),
			views.NewSeriesList(ctx.Done(), series),
		})

		Convey("Parse defines the page and every child", func() {
			root := template.New("index.html")
			name, err := page.Parse(root)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "index")
			So(root.Lookup("index"), ShouldNotBeNil)
			So(root.Lookup("bar-chart"), ShouldNotBeNil)
			So(root.Lookup("series-list"), ShouldNotBeNil)
		})

		Convey("renderPage writes the container elements", func() {
			var out strings.Builder
			So(renderPage(&out, page), ShouldBeNil)
			html := out.String()
			So(html, ShouldContainSubstring, `id="bar-chart-svg"`)
			So(html, ShouldContainSubstring, `id="series-list-ul"`)
			So(html, ShouldContainSubstring, "WebSocket")
		})
	})
}

func TestBatchify(t *testing.T) {
	Convey("Given a batchify over a patch source", t, func() {
		done := make(chan struct{})
		defer close(done)
		source := make(chan []selection.EleUpdate)
		out := batchify(done, source, 0)

		Convey("Repeated attribute writes coalesce; structure is preserved", func() {
			source <- []selection.EleUpdate{
				{Action: selection.Modify, EleId: "a", Ops: []selection.Op{{Key: "x", Value: "1"}}},
				{Action: selection.Modify, EleId: "a", Ops: []selection.Op{{Key: "x", Value: "2"}}},
				{Action: selection.Insert, EleId: "b", ParentId: "svg", Tag: "rect"},
			}

			batch := <-out
			So(len(batch), ShouldEqual, 2)
			So(batch[0].Ops, ShouldResemble, []selection.Op{{Key: "x", Value: "2"}})
			So(batch[1].Action, ShouldEqual, selection.Insert)
		})
	})
}
