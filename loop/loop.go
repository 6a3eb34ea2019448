// Package loop models the single UI event loop that owns all controller
// state. Blocking work runs elsewhere and hands a continuation back.
package loop

// Loop schedules work onto the event loop.
type Loop interface {
	// Post runs fn on the event loop. It must not be called from the loop
	// itself.
	Post(fn func())
	// Go runs work off the loop and then posts the continuation it returns.
	// A nil continuation is dropped.
	Go(work func() func())
}

// Inline runs everything on the calling goroutine. Tests and one-shot
// commands use it where there is no real loop.
type Inline struct{}

func (Inline) Post(fn func()) {
	if fn != nil {
		fn()
	}
}

func (Inline) Go(work func() func()) {
	if next := work(); next != nil {
		next()
	}
}
