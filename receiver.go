package signalrx

import (
	"context"
	"strings"
	"sync"

	"github.com/philippseith/signalr"
	"github.com/reactivex/rxgo/v2"
)

// defaultStreamBufferCapacity is the subscription buffer used when
// Receiver.StreamBufferCapacity is left at 0.
const defaultStreamBufferCapacity = 10

// Invocation is one call from the server to the client.
// Target is the method name the forwarding method announced, Arguments are
// the call arguments in declaration order.
type Invocation struct {
	Target    string
	Arguments []interface{}
}

// Receiver turns server to client calls into observables.
//
// Embed it in an own receiver type the same way signalr.Receiver is embedded
// and let every callback method forward itself with Notify:
//
//	type chatReceiver struct {
//		signalrx.Receiver
//	}
//
//	func (r *chatReceiver) OnMessage(sender string, text string) {
//		r.Notify("OnMessage", sender, text)
//	}
//
// The wrapped client dispatches server calls to OnMessage, Notify hands them
// to every On("OnMessage") subscription as Invocation items. The signalrxgen
// command generates such forwarding methods from an interface declaration.
//
// The zero value is ready to use.
type Receiver struct {
	signalr.Receiver

	// StreamBufferCapacity is the item buffer of each subscription. When the
	// buffer of a slow observer runs full, Notify blocks the dispatching
	// goroutine of the wrapped client, the same backpressure a slow receiver
	// method causes. 0 means defaultStreamBufferCapacity.
	StreamBufferCapacity uint

	mx     sync.Mutex
	subs   map[string][]*receiverSubscription
	done   chan struct{}
	closed bool
}

type receiverSubscription struct {
	items     chan rxgo.Item
	abandoned chan struct{}
}

// On observes calls of the named method as Invocation items. Matching is
// case insensitive like the method dispatch of the wrapped library. The
// observable completes when the receiver is closed. Subscribing on a closed
// receiver yields ErrReceiverClosed. Canceling the subscription removes the
// registration.
func (r *Receiver) On(target string) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		sub, done := r.register(target)
		if sub == nil {
			rxgo.Error(ErrReceiverClosed).SendContext(ctx, next)
			return
		}
		defer r.unregister(target, sub)
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case item := <-sub.items:
				if !item.SendContext(ctx, next) {
					return
				}
			}
		}
	})
}

// Notify hands one server call to all On subscriptions of target.
// Forwarding methods call it with their own name and arguments. On a closed
// receiver Notify is a no-op.
func (r *Receiver) Notify(target string, arguments ...interface{}) {
	r.mx.Lock()
	if r.closed {
		r.mx.Unlock()
		return
	}
	r.ensureInit()
	subs := append([]*receiverSubscription(nil), r.subs[strings.ToLower(target)]...)
	done := r.done
	r.mx.Unlock()

	item := rxgo.Of(Invocation{Target: target, Arguments: arguments})
	for _, sub := range subs {
		select {
		case sub.items <- item:
		case <-sub.abandoned:
		case <-done:
		}
	}
}

// Close completes all On observables and drops every later notification.
func (r *Receiver) Close() {
	r.mx.Lock()
	defer r.mx.Unlock()
	if r.closed {
		return
	}
	r.ensureInit()
	r.closed = true
	close(r.done)
}

func (r *Receiver) register(target string) (*receiverSubscription, <-chan struct{}) {
	r.mx.Lock()
	defer r.mx.Unlock()
	if r.closed {
		return nil, nil
	}
	r.ensureInit()
	capacity := r.StreamBufferCapacity
	if capacity == 0 {
		capacity = defaultStreamBufferCapacity
	}
	sub := &receiverSubscription{
		items:     make(chan rxgo.Item, capacity),
		abandoned: make(chan struct{}),
	}
	key := strings.ToLower(target)
	r.subs[key] = append(r.subs[key], sub)
	return sub, r.done
}

func (r *Receiver) unregister(target string, sub *receiverSubscription) {
	close(sub.abandoned)
	r.mx.Lock()
	defer r.mx.Unlock()
	key := strings.ToLower(target)
	subs := r.subs[key]
	for i, s := range subs {
		if s == sub {
			r.subs[key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(r.subs[key]) == 0 {
		delete(r.subs, key)
	}
}

// ensureInit must be called with mx held.
func (r *Receiver) ensureInit() {
	if r.subs == nil {
		r.subs = map[string][]*receiverSubscription{}
	}
	if r.done == nil {
		r.done = make(chan struct{})
	}
}
