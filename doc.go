/*
Package signalrx provides Reactive Extensions for the signalr client.
It wraps the channel and callback based client API of github.com/philippseith/signalr
into cold rxgo observables, so client side code can compose server method calls,
streams and connection state with the operators of github.com/reactivex/rxgo/v2.

Operations

Every asynchronous client operation has an observable counterpart with the same name:
Invoke, Send, PullStream, PushStreams, Start, Stop and, for state observation,
StateChanges and WhenState. All of them are available as functions over a
signalr.Client and as methods of ObservableClient, which embeds the wrapped client.
The observables are cold. Nothing is invoked before a subscription and every
subscription invokes the wrapped operation again. A successful Invoke emits its
result exactly once, invocations of methods without a return value complete
without emission. Canceling the subscription context abandons the wrapped
operation, pending emissions are dropped and the observable just ends.

Callbacks

The wrapped library dispatches server to client calls to the compiled methods of a
receiver. Receiver in this package, embedded in an own receiver type, turns such
calls into observables: each callback method forwards itself with Notify and
interested code subscribes with On. The signalrxgen command generates the
forwarding methods, an argument struct and a typed Observe helper per method from
an annotated interface declaration.

Errors

Operation faults are emitted as rxgo error items, one fault per subscription at
most. Cancellation is not a fault, it ends the observable without emission.
*/
package signalrx
