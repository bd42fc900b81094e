// server serves a page of view components and streams their element patches
// to browsers over a websocket. The browser side is a thin patch applier;
// all view logic stays on the server.
package server

import (
	"context"
	"html/template"
	"strings"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/au-phiware/d3-gup/selection"
	"github.com/au-phiware/d3-gup/views"
)

// How long patches accumulate before a batch is sent.
const batchRate = 20 * time.Millisecond

// Page aggregates view components: one template for the initial render and
// one fanned-in, batched patch channel for everything after it.
type Page struct {
	views   []views.ViewComponent
	updates <-chan []selection.EleUpdate
}

// NewPage returns a page over the given view components, with their patch
// channels merged and batched until ctx is done.
func NewPage(ctx context.Context, vcs []views.ViewComponent) *Page {
	inputs := make([]<-chan []selection.EleUpdate, len(vcs))
	for i, vc := range vcs {
		inputs[i] = vc.Updates()
	}
	return &Page{
		views:   vcs,
		updates: batchify(ctx.Done(), channerics.Merge(ctx.Done(), inputs...), batchRate),
	}
}

// Updates returns the page's aggregated patch channel.
func (p *Page) Updates() <-chan []selection.EleUpdate {
	return p.updates
}

// Parse adds the page and its child components to the parent template and
// returns the page's definition name. The page carries the websocket
// bootstrap that applies patches on the client.
func (p *Page) Parse(parent *template.Template) (name string, err error) {
	name = "index"

	var body strings.Builder
	for _, vc := range p.views {
		var child string
		if child, err = vc.Parse(parent); err != nil {
			return
		}
		body.WriteString(`{{ template "` + child + `" . }}`)
	}

	_, err = parent.Parse(`{{ define "index" }}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>d3-gup</title></head>
<body>
` + body.String() + `
<script>` + patchScript + `</script>
</body>
</html>{{ end }}`)
	return
}

// patchScript applies streamed patches to the live DOM. Durations arrive in
// nanoseconds; animated modifies become CSS transitions and animated removes
// are deferred until the element has had time to animate out.
const patchScript = `
const svgTags = new Set(["svg", "g", "rect", "text", "line", "circle", "path"]);
const ms = (ns) => ns / 1e6;
function apply(p) {
	if (p.Action === 1) {
		const parent = document.getElementById(p.ParentId);
		if (!parent) return;
		const ele = svgTags.has(p.Tag)
			? document.createElementNS("http://www.w3.org/2000/svg", p.Tag)
			: document.createElement(p.Tag);
		ele.id = p.EleId;
		parent.appendChild(ele);
		return;
	}
	const ele = document.getElementById(p.EleId);
	if (!ele) return;
	if (p.Action === 2) {
		if (p.Duration > 0) {
			setTimeout(() => ele.remove(), ms(p.Duration) + ms(p.Delay));
		} else {
			ele.remove();
		}
		return;
	}
	if (p.Duration > 0) {
		ele.style.transition = "all " + ms(p.Duration) + "ms";
		ele.style.transitionDelay = ms(p.Delay) + "ms";
	}
	for (const op of p.Ops || []) {
		if (op.Key === "textContent") {
			ele.textContent = op.Value;
		} else {
			ele.setAttribute(op.Key, op.Value);
		}
	}
}
const sock = new WebSocket("ws://" + location.host + "/ws");
sock.onmessage = (ev) => { for (const p of JSON.parse(ev.data)) apply(p); };
`

// batchify coalesces patches within the rate window before sending. Repeated
// modifies of the same attribute on the same element collapse to the latest
// value; structural patches are never coalesced, preserving their order.
func batchify(
	done <-chan struct{},
	source <-chan []selection.EleUpdate,
	rate time.Duration,
) <-chan []selection.EleUpdate {
	output := make(chan []selection.EleUpdate)

	go func() {
		defer close(output)

		var batch []selection.EleUpdate
		index := map[string]int{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				if update.Action == selection.Modify && len(update.Ops) == 1 {
					key := update.EleId + "\x00" + update.Ops[0].Key
					if at, ok := index[key]; ok {
						batch[at] = update
						continue
					}
					index[key] = len(batch)
				}
				batch = append(batch, update)
			}

			if time.Since(last) > rate && len(batch) > 0 {
				select {
				case output <- batch:
					batch = nil
					index = map[string]int{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}
