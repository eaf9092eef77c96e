package signalrx

import (
	"context"
	"time"

	"github.com/philippseith/signalr"
	"github.com/reactivex/rxgo/v2"
)

// negotiateTimeout bounds one negotiate and dial attempt of the default
// connector. The connector is called again by the client backoff, so a hung
// attempt must not block reconnecting forever.
const negotiateTimeout = 5 * time.Second

// ObservableClient couples a signalr.Client with the observable operations
// of this package. The embedded Client stays usable for code that wants the
// channel based surface, it is reachable as the Client field.
//
// The operation methods shadow their channel based counterparts and return
// cold observables: nothing is invoked before a subscription, and every
// subscription performs the wrapped operation again.
type ObservableClient struct {
	signalr.Client
}

// WrapClient wraps an existing client.
// Wrapping nil is allowed, operations on such a wrapper emit ErrNilClient.
func WrapClient(client signalr.Client) *ObservableClient {
	return &ObservableClient{Client: client}
}

// NewObservableClient creates a client for the signalr server at address and
// wraps it. The connection is negotiated when Start is subscribed and
// renegotiated with the client backoff when it is lost. ctx limits the life
// of the client. options are passed on to signalr.NewClient after the
// connector option, so receivers, loggers, backoff and transfer format are
// configured the usual way. Code that needs control over the connection
// itself, transports or headers for example, composes
// signalr.WithConnector with signalr.NewHTTPConnection directly and uses
// WrapClient.
func NewObservableClient(ctx context.Context, address string, options ...func(signalr.Party) error) (*ObservableClient, error) {
	connector := signalr.WithConnector(func() (signalr.Connection, error) {
		dialCtx, cancel := context.WithTimeout(ctx, negotiateTimeout)
		defer cancel()
		return signalr.NewHTTPConnection(dialCtx, address)
	})
	client, err := signalr.NewClient(ctx, append([]func(signalr.Party) error{connector}, options...)...)
	if err != nil {
		return nil, err
	}
	return WrapClient(client), nil
}

// Start starts the wrapped client. See Start.
func (c *ObservableClient) Start() rxgo.Observable {
	return Start(c.Client)
}

// Stop stops the wrapped client. See Stop.
func (c *ObservableClient) Stop() rxgo.Observable {
	return Stop(c.Client)
}

// WhenState observes the client reaching waitFor. See WhenState.
func (c *ObservableClient) WhenState(waitFor signalr.ClientState) rxgo.Observable {
	return WhenState(c.Client, waitFor)
}

// StateChanges observes the connection lifecycle. See StateChanges.
func (c *ObservableClient) StateChanges() rxgo.Observable {
	return StateChanges(c.Client)
}

// Invoke calls a server method and observes its completion. See Invoke.
func (c *ObservableClient) Invoke(method string, arguments ...interface{}) rxgo.Observable {
	return Invoke(c.Client, method, arguments...)
}

// Send calls a server method without asking for a result. See Send.
func (c *ObservableClient) Send(method string, arguments ...interface{}) rxgo.Observable {
	return Send(c.Client, method, arguments...)
}

// PullStream invokes a streaming server method and observes the stream. See
// PullStream.
func (c *ObservableClient) PullStream(method string, arguments ...interface{}) rxgo.Observable {
	return PullStream(c.Client, method, arguments...)
}

// PushStreams invokes a server method that receives client side streams. See
// PushStreams.
func (c *ObservableClient) PushStreams(method string, arguments ...interface{}) rxgo.Observable {
	return PushStreams(c.Client, method, arguments...)
}
