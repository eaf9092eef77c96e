package signalrx

import (
	"context"

	"github.com/philippseith/signalr"
	"github.com/reactivex/rxgo/v2"
)

// PullStream invokes a streaming server method and observes the stream.
// Each subscription starts the stream again. Stream items are emitted in
// arrival order. Completion of the server stream completes the observable, a
// stream fault is emitted as error and ends it. Canceling the subscription
// abandons the wrapped stream.
func PullStream(client signalr.Client, method string, arguments ...interface{}) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		if client == nil {
			rxgo.Error(ErrNilClient).SendContext(ctx, next)
			return
		}
		forwardInvokeResults(ctx, next, client.PullStream(method, arguments...))
	})
}

// PushStreams invokes a server method that receives client side streams.
// Arguments of type rxgo.Observable are adapted into upload channels: their
// items feed the assigned stream and their completion completes it. All other
// arguments, channels included, are passed through unchanged. The returned
// observable behaves like Invoke for the final result. An error of an upload
// observable ends the invocation with that error.
func PushStreams(client signalr.Client, method string, arguments ...interface{}) rxgo.Observable {
	return observe(func(ctx context.Context, next chan<- rxgo.Item) {
		if client == nil {
			rxgo.Error(ErrNilClient).SendContext(ctx, next)
			return
		}
		uploadErrs := make(chan error, len(arguments)+1)
		args := make([]interface{}, len(arguments))
		for i, argument := range arguments {
			if source, ok := argument.(rxgo.Observable); ok {
				args[i] = pumpObservable(ctx, source, uploadErrs)
			} else {
				args[i] = argument
			}
		}
		results := client.PushStreams(method, args...)
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-uploadErrs:
				rxgo.Error(err).SendContext(ctx, next)
				return
			case result, ok := <-results:
				if !ok {
					// prefer a pending upload fault over silent completion
					select {
					case err := <-uploadErrs:
						rxgo.Error(err).SendContext(ctx, next)
					default:
					}
					return
				}
				if result.Error != nil {
					rxgo.Error(result.Error).SendContext(ctx, next)
					return
				}
				if !rxgo.Of(result.Value).SendContext(ctx, next) {
					return
				}
			}
		}
	})
}

// pumpObservable drains source into a fresh channel that the wrapped client
// accepts as streaming argument. The channel is closed when the source
// completes, which completes the upload stream. A source error is reported to
// errs and stops the pump.
func pumpObservable(ctx context.Context, source rxgo.Observable, errs chan<- error) chan interface{} {
	ch := make(chan interface{})
	go func() {
		defer close(ch)
		for item := range source.Observe(rxgo.WithContext(ctx)) {
			if item.E != nil {
				select {
				case errs <- item.E:
				default:
				}
				return
			}
			select {
			case ch <- item.V:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
