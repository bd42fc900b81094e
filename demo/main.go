// The demo serves a page of two live views over one random-walk series: an
// svg bar chart driven by a composed update spec, and a plain text list.
// Open the address in a browser and watch bars enter, move and exit as the
// series changes.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/au-phiware/d3-gup/server"
	"github.com/au-phiware/d3-gup/views"
)

var (
	host    *string
	port    *string
	cfgPath *string
)

func init() {
	host = flag.String("host", "", "The host ip")
	port = flag.String("port", "8080", "The host port")
	cfgPath = flag.String("config", "./config.yaml", "Path to the demo config")
	flag.Parse()
}

func main() {
	if err := runApp(); err != nil {
		log.Fatal(err)
	}
}

func runApp() (err error) {
	var cfg *DemoConfig
	if cfg, err = fromYaml(*cfgPath); err != nil {
		return
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	ctx, cancel, err := cfg.WithDeadline(appCtx)
	if err != nil {
		return
	}
	defer cancel()

	series := generate(ctx.Done(), cfg)

	labels := cfg.Labels
	vcs, err := views.NewBuilder[[]float64, []views.Sample]().
		Context(ctx).
		Model(series, func(values []float64) []views.Sample {
			samples := make([]views.Sample, len(values))
			for i, v := range values {
				samples[i] = views.Sample{Label: labels[i], Value: v}
			}
			return samples
		}).
		View(func(done <-chan struct{}, vm <-chan []views.Sample) views.ViewComponent {
			return views.NewBarChart(done, vm)
		}).
		View(func(done <-chan struct{}, vm <-chan []views.Sample) views.ViewComponent {
			return views.NewSeriesList(done, vm)
		}).
		Build()
	if err != nil {
		return
	}

	page := server.NewPage(ctx, vcs)
	addr := *host + ":" + *port
	log.Println("serving on", addr)
	return server.New(addr, page).Serve()
}

// generate walks each labeled value randomly within [0, MaxValue] and emits
// a snapshot per tick. Occasionally a value drops out of the series or comes
// back, so the views exercise their enter and exit phases, not just update.
func generate(done <-chan struct{}, cfg *DemoConfig) <-chan []float64 {
	out := make(chan []float64)

	go func() {
		defer close(out)

		tick, err := cfg.TickInterval()
		if err != nil {
			log.Println("bad tick:", err)
			return
		}

		values := make([]float64, len(cfg.Labels))
		for i := range values {
			values[i] = rand.Float64() * cfg.MaxValue
		}

		for range channerics.NewTicker(done, tick) {
			n := len(values)
			// Roughly one tick in eight shows a shorter series.
			if rand.Intn(8) == 0 && n > 1 {
				n--
			}
			snapshot := make([]float64, n)
			for i := 0; i < n; i++ {
				values[i] += (rand.Float64() - 0.5) * cfg.MaxValue / 5
				if values[i] < 0 {
					values[i] = 0
				}
				if values[i] > cfg.MaxValue {
					values[i] = cfg.MaxValue
				}
				snapshot[i] = values[i]
			}

			select {
			case out <- snapshot:
			case <-done:
				return
			}
		}
	}()

	return out
}
