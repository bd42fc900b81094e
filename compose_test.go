package gup

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestComposeEffects(t *testing.T) {
	Convey("Given two specs that both configure pre", t, func() {
		var got []string
		var args [][]any
		a := New[string]().Pre(func(_ Container[string], a ...any) {
			got = append(got, "A")
			args = append(args, a)
		})
		b := New[string]().Pre(func(_ Container[string], a ...any) {
			got = append(got, "B")
			args = append(args, a)
		})

		Convey("The composed pre runs right to left with the same arguments", func() {
			Compose(a, b).PreFn()(Container[string]{}, "x", 1)
			So(got, ShouldResemble, []string{"B", "A"})
			So(args, ShouldResemble, [][]any{{"x", 1}, {"x", 1}})
		})

		Convey("Sources left at their defaults are skipped", func() {
			c := New[string]()
			Compose(a, c, b).PostFn()(Container[string]{})
			So(got, ShouldBeEmpty)
			Compose(a, c, b).PreFn()(Container[string]{})
			So(got, ShouldResemble, []string{"B", "A"})
		})
	})
}

func TestComposeViews(t *testing.T) {
	Convey("Given specs composing the enter phase", t, func() {
		rec := &recorder{}
		mkSel := func(name string) Selection[string] {
			return &fakeSel{name: name, rec: rec}
		}
		appendRect := func(v Container[string], _ ...any) Container[string] {
			return Plain[string](mkSel(selName(v.Sel) + ">rect"))
		}
		decorate := func(v Container[string], _ ...any) Container[string] {
			return Plain[string](mkSel(selName(v.Sel) + "*"))
		}

		Convey("With only the rightmost configured, the result is its own", func() {
			a := New[string]()
			b := New[string]().Enter(appendRect)

			out := Compose(a, b).EnterFn()(Plain[string](mkSel("enter")))
			So(selName(out.Sel), ShouldEqual, "enter>rect")
		})

		Convey("With both configured, the rightmost result feeds the left", func() {
			a := New[string]().Enter(decorate)
			b := New[string]().Enter(appendRect)

			out := Compose(a, b).EnterFn()(Plain[string](mkSel("enter")))
			So(selName(out.Sel), ShouldEqual, "enter>rect*")
		})

		Convey("Select composes with the same forwarding rule", func() {
			a := New[string]().Select(decorate)
			b := New[string]().Select(appendRect)

			out := Compose(a, b).SelectFn()(Plain[string](mkSel("root")))
			So(selName(out.Sel), ShouldEqual, "root>rect*")
		})

		Convey("With nothing configured, the view passes through unchanged", func() {
			root := mkSel("root")
			out := Compose(New[string](), New[string]()).EnterFn()(Plain[string](root))
			So(out.Sel, ShouldEqual, root)
		})
	})
}

func TestComposeMetadata(t *testing.T) {
	Convey("Given sources carrying metadata", t, func() {
		a := New[string]().Set("foo", "A").Set("only-a", true)
		b := New[string]().Set("foo", "B")

		Convey("Extend copies left to right, rightmost wins", func() {
			c := Compose(a, b)
			foo, _ := c.Get("foo")
			So(foo, ShouldEqual, "B")
			onlyA, ok := c.Get("only-a")
			So(ok, ShouldBeTrue)
			So(onlyA, ShouldEqual, true)
		})

		Convey("Sources are not mutated", func() {
			Compose(a, b)
			foo, _ := a.Get("foo")
			So(foo, ShouldEqual, "A")
			So(a.Configured(PhasePre), ShouldBeFalse)
		})
	})
}

func TestComposeLateBinding(t *testing.T) {
	Convey("Given a composite built before its source is configured", t, func() {
		var got []string
		a := New[string]()
		c := Compose(a)

		Convey("Configuring the source afterwards still takes effect", func() {
			a.Pre(func(Container[string], ...any) { got = append(got, "late") })
			c.PreFn()(Container[string]{})
			So(got, ShouldResemble, []string{"late"})
		})
	})
}

func TestComposeApply(t *testing.T) {
	Convey("Given a composite bound to data and applied to a fake", t, func() {
		rec := &recorder{}
		root := &fakeSel{name: "root", rec: rec}

		mechanics := New[string]().Enter(func(v Container[string], _ ...any) Container[string] {
			rec.add("mechanics:" + selName(v.Sel))
			return v
		})
		styling := New[string]().
			Pre(func(v Container[string], _ ...any) { rec.add("style-pre:" + selName(v.Sel)) }).
			Post(func(v Container[string], _ ...any) { rec.add("style-post:" + selName(v.Sel)) })

		out := Compose(styling, mechanics).
			Data([]string{"a", "b", "c"}, nil).
			Apply(Plain[string](root))

		So(rec.events, ShouldResemble, []string{
			"data:root:3",
			"style-pre:root.update",
			"mechanics:root.enter",
			"merge:root.enter+root.update",
			"style-post:root.enter+root.update",
		})
		So(selName(out.Sel), ShouldEqual, "root.enter+root.update")
	})
}
