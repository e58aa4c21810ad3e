package paint

import (
	"errors"
	"fmt"
	"image"
	"iter"
	"slices"
)

// LayerID identifies a layer. IDs are assigned in creation order and never
// reused.
type LayerID uint64

// Layer is one independently paintable bitmap in a LayerStack.
type Layer struct {
	id       LayerID
	ctx      *Context
	selected bool
}

// ID returns the layer's identifier.
func (l *Layer) ID() LayerID { return l.id }

// Selected reports whether the layer receives DrawInContext calls.
func (l *Layer) Selected() bool { return l.selected }

// Context returns the layer's drawing context. Painting through it
// directly bypasses change notifications; use LayerStack.DrawInContext.
func (l *Layer) Context() *Context { return l.ctx }

// Surface returns the layer's raster pixels. Layer implements Source.
func (l *Layer) Surface() *image.RGBA { return l.ctx.Surface() }

// Notification announces that a layer's surface changed.
type Notification struct {
	LayerID LayerID
}

// SubscriberID identifies a registered subscriber.
type SubscriberID uint64

type subscriber struct {
	id SubscriberID
	fn func(Notification)
}

// LayerStack is an ordered set of layers with at most one selected layer.
// Creation order is bottom-to-top paint order.
//
// A LayerStack is not safe for concurrent use. Subscribers are called
// synchronously and must not draw through the stack they observe.
type LayerStack struct {
	width, height int
	opts          []ContextOption

	layers   []*Layer
	nextID   LayerID
	selected *Layer

	subscribers []subscriber
	nextSub     SubscriberID

	closed bool
}

// NewLayerStack creates an empty stack whose layers are width×height.
func NewLayerStack(width, height int, opts ...StackOption) *LayerStack {
	var o stackOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &LayerStack{width: width, height: height, opts: o.context}
}

// Width returns the layer width in pixels.
func (s *LayerStack) Width() int { return s.width }

// Height returns the layer height in pixels.
func (s *LayerStack) Height() int { return s.height }

// Len returns the number of layers.
func (s *LayerStack) Len() int { return len(s.layers) }

// PushLayer creates a transparent layer on top of the stack.
func (s *LayerStack) PushLayer() (*Layer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	ctx, err := NewContext(s.width, s.height, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("paint: push layer: %w", err)
	}

	l := &Layer{id: s.nextID, ctx: ctx}
	s.nextID++
	s.layers = append(s.layers, l)
	slogger().Info("paint: layer pushed", "id", l.id, "layers", len(s.layers))
	return l, nil
}

// Layer returns the layer with the given id, or nil.
func (s *LayerStack) Layer(id LayerID) *Layer {
	// IDs are ascending in stack order.
	i, ok := slices.BinarySearchFunc(s.layers, id, func(l *Layer, id LayerID) int {
		switch {
		case l.id < id:
			return -1
		case l.id > id:
			return 1
		default:
			return 0
		}
	})
	if !ok {
		return nil
	}
	return s.layers[i]
}

// Select makes id the selected layer and deselects the previous one.
// An unknown id returns ErrLayerNotFound and leaves the selection as it
// was.
func (s *LayerStack) Select(id LayerID) error {
	l := s.Layer(id)
	if l == nil {
		slogger().Warn("paint: select rejected", "id", id)
		return fmt.Errorf("paint: select %d: %w", id, ErrLayerNotFound)
	}
	if s.selected != nil {
		s.selected.selected = false
	}
	l.selected = true
	s.selected = l
	return nil
}

// Deselect clears the selection.
func (s *LayerStack) Deselect() {
	if s.selected != nil {
		s.selected.selected = false
		s.selected = nil
	}
}

// Selected returns the selected layer, or nil.
func (s *LayerStack) Selected() *Layer {
	return s.selected
}

// Layers yields layers bottom-to-top, in paint order.
func (s *LayerStack) Layers() iter.Seq[*Layer] {
	return func(yield func(*Layer) bool) {
		for _, l := range s.layers {
			if !yield(l) {
				return
			}
		}
	}
}

// LayersReversed yields layers top-most first, in listing order.
func (s *LayerStack) LayersReversed() iter.Seq[*Layer] {
	return func(yield func(*Layer) bool) {
		for i := len(s.layers) - 1; i >= 0; i-- {
			if !yield(s.layers[i]) {
				return
			}
		}
	}
}

// DrawInContext calls f with the selected layer's Context and then
// notifies every subscriber, in subscription order, that the layer
// changed. Without a selection f is not called and nothing is notified.
func (s *LayerStack) DrawInContext(f func(*Context)) {
	l := s.selected
	if l == nil || s.closed {
		return
	}
	f(l.ctx)
	s.notify(Notification{LayerID: l.id})
}

// Subscribe registers fn for change notifications.
func (s *LayerStack) Subscribe(fn func(Notification)) SubscriberID {
	id := s.nextSub
	s.nextSub++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	slogger().Info("paint: subscriber added", "id", id)
	return id
}

// Unsubscribe removes a subscriber and reports whether it was registered.
func (s *LayerStack) Unsubscribe(id SubscriberID) bool {
	i := slices.IndexFunc(s.subscribers, func(sub subscriber) bool { return sub.id == id })
	if i < 0 {
		return false
	}
	s.subscribers = slices.Delete(s.subscribers, i, i+1)
	return true
}

func (s *LayerStack) notify(n Notification) {
	// Snapshot so an Unsubscribe from a callback does not skip anyone.
	for _, sub := range slices.Clone(s.subscribers) {
		sub.fn(n)
	}
}

// Composite draws every layer bottom-to-top over dst, scaled into bounds.
func (s *LayerStack) Composite(dst *Context, bounds Rect) {
	for l := range s.Layers() {
		dst.DrawImageBounded(l, bounds)
	}
}

// Resize changes every layer to width×height. Layer content is
// discarded. If any layer fails, the layers already resized are returned
// to the previous size and the error is reported.
func (s *LayerStack) Resize(width, height int) error {
	if s.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("paint: resize stack: %w: %dx%d", ErrInvalidSize, width, height)
	}
	for i, l := range s.layers {
		if err := l.ctx.Resize(width, height); err != nil {
			for _, done := range s.layers[:i] {
				if rerr := done.ctx.Resize(s.width, s.height); rerr != nil {
					err = errors.Join(err, rerr)
				}
			}
			return fmt.Errorf("paint: resize layer %d: %w", l.id, err)
		}
	}
	s.width, s.height = width, height
	return nil
}

// Close releases every layer's Context. Close is idempotent.
func (s *LayerStack) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, l := range s.layers {
		errs = append(errs, l.ctx.Close())
	}
	s.selected = nil
	return errors.Join(errs...)
}

// Shared is a single-threaded shared handle to one LayerStack, handed to
// every UI panel that reads or paints the stack. Copies of a Shared refer
// to the same stack. It holds no lock: all holders must run on the same
// goroutine.
type Shared struct {
	stack *LayerStack
}

// Share returns a shared handle to s.
func (s *LayerStack) Share() Shared {
	return Shared{stack: s}
}

// Stack returns the referenced stack.
func (h Shared) Stack() *LayerStack {
	return h.stack
}

// With calls f with the referenced stack.
func (h Shared) With(f func(*LayerStack)) {
	if h.stack != nil {
		f(h.stack)
	}
}
