package signalrx

import (
	"context"

	"github.com/philippseith/signalr"
	"github.com/reactivex/rxgo/v2"
)

// stateChangeBuffer decouples the client from a slow state observer.
const stateChangeBuffer = 16

// Start starts the wrapped client and observes the outcome.
// The observable emits signalr.ClientConnected once the connection is up and
// completes. A client that ends before reaching Connected, because connecting
// failed for good, yields that error. Subscribing while the client runs does
// not start it a second time, it just observes the current connect.
func Start(client signalr.Client) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		if client == nil {
			rxgo.Error(ErrNilClient).SendContext(ctx, next)
			return
		}
		if state := client.State(); state == signalr.ClientCreated || state == signalr.ClientClosed {
			client.Start()
		}
		waitForState(ctx, next, client, signalr.ClientConnected)
	})
}

// Stop stops the wrapped client and observes the outcome.
// The observable emits signalr.ClientClosed once the client ended and
// completes.
func Stop(client signalr.Client) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		if client == nil {
			rxgo.Error(ErrNilClient).SendContext(ctx, next)
			return
		}
		client.Stop()
		waitForState(ctx, next, client, signalr.ClientClosed)
	})
}

// WhenState observes the moment the client reaches waitFor.
// The observable emits waitFor as soon as the client is in that state and
// completes. A client that ends before reaching it yields an error.
func WhenState(client signalr.Client, waitFor signalr.ClientState) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		if client == nil {
			rxgo.Error(ErrNilClient).SendContext(ctx, next)
			return
		}
		waitForState(ctx, next, client, waitFor)
	})
}

// StateChanges observes the connection lifecycle of the client.
// On subscription the observable emits the current state and then every
// transition until the subscription is canceled. It does not complete and
// does not error on its own, a dead client just stays in
// signalr.ClientClosed.
func StateChanges(client signalr.Client) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		if client == nil {
			rxgo.Error(ErrNilClient).SendContext(ctx, next)
			return
		}
		states := make(chan signalr.ClientState, stateChangeBuffer)
		cancel := client.ObserveStateChanged(states)
		defer cancel()
		// registered before the read, so no transition in between is lost
		last := client.State()
		if !rxgo.Of(last).SendContext(ctx, next) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case state, ok := <-states:
				if !ok {
					return
				}
				if state == last {
					continue
				}
				if !rxgo.Of(state).SendContext(ctx, next) {
					return
				}
				last = state
			}
		}
	})
}

func waitForState(ctx context.Context, next chan<- rxgo.Item, client signalr.Client, waitFor signalr.ClientState) {
	select {
	case <-ctx.Done():
	case err := <-client.WaitForState(ctx, waitFor):
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			rxgo.Error(err).SendContext(ctx, next)
			return
		}
		rxgo.Of(waitFor).SendContext(ctx, next)
	}
}
