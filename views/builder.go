package views

import (
	"context"
	"errors"

	channerics "github.com/niceyeti/channerics/channels"
)

// ErrNoViews is returned when Build is called before any view was added.
var ErrNoViews error = errors.New("no views to build: View must be called")

// ErrNoModel is returned when Build is called before Model was called.
var ErrNoModel error = errors.New("no model specified: Model must be called")

// BuildFunc builds a view component from a view-model channel and a done
// channel for cleanup.
type BuildFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) ViewComponent

// Builder assembles one or more view components over a common view-model:
// a source channel of data-models, one conversion, and a fan-out to every
// view. Building is deferred until Build so the view-model channel can be
// broadcast to however many views were added.
type Builder[DataModel any, ViewModel any] struct {
	source   <-chan DataModel
	convert  func(DataModel) ViewModel
	buildFns []BuildFunc[ViewModel]
	done     <-chan struct{}
}

// NewBuilder returns a builder for a given data-model and view-model.
func NewBuilder[DataModel any, ViewModel any]() *Builder[DataModel, ViewModel] {
	return &Builder[DataModel, ViewModel]{}
}

// Model sets the input channel and the data-model to view-model conversion.
func (b *Builder[DataModel, ViewModel]) Model(
	input <-chan DataModel,
	convert func(DataModel) ViewModel,
) *Builder[DataModel, ViewModel] {
	b.source = input
	b.convert = convert
	return b
}

// View adds a view to build. Build returns views in the order added.
func (b *Builder[DataModel, ViewModel]) View(
	buildFn BuildFunc[ViewModel],
) *Builder[DataModel, ViewModel] {
	b.buildFns = append(b.buildFns, buildFn)
	return b
}

// Context ties the lifetime of every downstream channel to ctx.
func (b *Builder[DataModel, ViewModel]) Context(
	ctx context.Context,
) *Builder[DataModel, ViewModel] {
	b.done = ctx.Done()
	return b
}

// Build converts the source to view-models, broadcasts them to one channel
// per view, and builds the views.
func (b *Builder[DataModel, ViewModel]) Build() (views []ViewComponent, err error) {
	if len(b.buildFns) == 0 {
		return nil, ErrNoViews
	}
	if b.convert == nil {
		return nil, ErrNoModel
	}

	vmChan := channerics.Convert(b.done, b.source, b.convert)
	vmChans := channerics.Broadcast(b.done, vmChan, len(b.buildFns))
	for i, build := range b.buildFns {
		views = append(views, build(b.done, vmChans[i]))
	}
	return
}
