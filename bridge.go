package signalrx

import (
	"context"

	"github.com/philippseith/signalr"
	"github.com/reactivex/rxgo/v2"
)

// observe wraps a producer into a cold observable. The producer runs once per
// subscription with the subscription context, so every Observe maps to a
// fresh wrapped operation.
func observe(producer rxgo.Producer) rxgo.Observable {
	return rxgo.Defer([]rxgo.Producer{producer})
}

// forwardInvokeResults pushes the results of one wrapped operation into next.
// Values become items. An error item ends the stream. The wrapped client
// follows every delivered value with a nil error on the combined channel, in
// no guaranteed order, so a zero result is a success marker and not an
// emission. When results closes without a value, the wrapped operation was
// canceled or returned nothing and the stream ends without emission.
func forwardInvokeResults(ctx context.Context, next chan<- rxgo.Item, results <-chan signalr.InvokeResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case result, ok := <-results:
			if !ok {
				return
			}
			if result.Error != nil {
				rxgo.Error(result.Error).SendContext(ctx, next)
				return
			}
			if result.Value == nil {
				// success marker
				continue
			}
			if !rxgo.Of(result.Value).SendContext(ctx, next) {
				return
			}
		}
	}
}
