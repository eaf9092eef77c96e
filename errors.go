package signalrx

import "errors"

var (
	// ErrNilClient is emitted by every operation observable when the wrapped
	// client is nil.
	ErrNilClient = errors.New("client is nil")
	// ErrReceiverClosed is emitted by Receiver.On when the receiver has been
	// closed.
	ErrReceiverClosed = errors.New("receiver closed")
)
