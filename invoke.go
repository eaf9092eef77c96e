package signalrx

import (
	"context"

	"github.com/philippseith/signalr"
	"github.com/reactivex/rxgo/v2"
)

// Invoke calls a server method and observes its completion.
// Each subscription invokes the method again. The observable emits the single
// result value and completes, or emits the error the invocation ended with.
// When the subscription or the client ends before a result arrived, the
// observable completes without emission.
func Invoke(client signalr.Client, method string, arguments ...interface{}) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		if client == nil {
			rxgo.Error(ErrNilClient).SendContext(ctx, next)
			return
		}
		forwardInvokeResults(ctx, next, client.Invoke(method, arguments...))
	})
}

// Send calls a server method without asking for a result.
// The observable completes once the invocation went out, or emits the error
// it failed with.
func Send(client signalr.Client, method string, arguments ...interface{}) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		if client == nil {
			rxgo.Error(ErrNilClient).SendContext(ctx, next)
			return
		}
		select {
		case <-ctx.Done():
		case err, ok := <-client.Send(method, arguments...):
			if ok && err != nil {
				rxgo.Error(err).SendContext(ctx, next)
			}
		}
	})
}
