package signalrx

import (
	"sync"

	"github.com/reactivex/rxgo/v2"
)

// CompositeDisposable collects rxgo.Disposable cancel functions and disposes
// them as a group. A screen or worker that holds several subscriptions adds
// them while it runs and tears all of them down with one Dispose call when it
// goes away.
//
// The zero value is ready to use. A disposed container disposes everything
// that is added later right away.
type CompositeDisposable struct {
	mx          sync.Mutex
	disposed    bool
	disposables []rxgo.Disposable
}

// NewCompositeDisposable creates a container holding the given disposables.
func NewCompositeDisposable(disposables ...rxgo.Disposable) *CompositeDisposable {
	return &CompositeDisposable{disposables: disposables}
}

// Add puts d into the container. On a disposed container d is disposed
// immediately instead.
func (c *CompositeDisposable) Add(d rxgo.Disposable) {
	if d == nil {
		return
	}
	c.mx.Lock()
	if c.disposed {
		c.mx.Unlock()
		d()
		return
	}
	c.disposables = append(c.disposables, d)
	c.mx.Unlock()
}

// Len returns the number of held disposables.
func (c *CompositeDisposable) Len() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return len(c.disposables)
}

// IsDisposed reports whether Dispose has been called.
func (c *CompositeDisposable) IsDisposed() bool {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.disposed
}

// Dispose disposes all held disposables in the order they were added and
// empties the container. Further calls are no-ops. The disposables run
// outside the container lock, so one of them may Add again while Dispose is
// still running.
func (c *CompositeDisposable) Dispose() {
	c.mx.Lock()
	if c.disposed {
		c.mx.Unlock()
		return
	}
	c.disposed = true
	disposables := c.disposables
	c.disposables = nil
	c.mx.Unlock()
	for _, d := range disposables {
		d()
	}
}
