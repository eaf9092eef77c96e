package signalrx

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/philippseith/signalr"
	"github.com/reactivex/rxgo/v2"
)

// pipeConnection is an in process signalr.Connection over io.Pipe ends.
type pipeConnection struct {
	reader       io.Reader
	writer       io.Writer
	timeout      time.Duration
	fail         atomic.Value
	connectionID string
}

func (pc *pipeConnection) Context() context.Context {
	return context.TODO()
}

func (pc *pipeConnection) Read(p []byte) (n int, err error) {
	if err, ok := pc.fail.Load().(error); ok {
		return 0, err
	}
	return pc.reader.Read(p)
}

func (pc *pipeConnection) Write(p []byte) (n int, err error) {
	if err, ok := pc.fail.Load().(error); ok {
		return 0, err
	}
	return pc.writer.Write(p)
}

func (pc *pipeConnection) ConnectionID() string {
	return pc.connectionID
}

func (pc *pipeConnection) SetConnectionID(cID string) {
	pc.connectionID = cID
}

func (pc *pipeConnection) SetTimeout(timeout time.Duration) {
	pc.timeout = timeout
}

func (pc *pipeConnection) Timeout() time.Duration {
	return pc.timeout
}

func newClientServerConnections() (cliConn *pipeConnection, srvConn *pipeConnection) {
	cliReader, srvWriter := io.Pipe()
	srvReader, cliWriter := io.Pipe()
	cliConn = &pipeConnection{
		reader:       cliReader,
		writer:       cliWriter,
		connectionID: "X",
	}
	srvConn = &pipeConnection{
		reader:       srvReader,
		writer:       srvWriter,
		connectionID: "X",
	}
	return cliConn, srvConn
}

// chatterHub is the hub the suite runs against. The bed shares one instance
// over all invocations so the tests can count them.
type chatterHub struct {
	signalr.Hub
	invocations int32
	uploadArg   string
	uploadDone  chan struct{}
}

func (h *chatterHub) Shout(text string) string {
	atomic.AddInt32(&h.invocations, 1)
	return strings.ToUpper(text) + "!"
}

func (h *chatterHub) Whisper(text string) {
	h.Hub.Clients().Caller().Send("OnWhisper", strings.ToLower(text))
}

func (h *chatterHub) CountTo(n int) chan int {
	ch := make(chan int)
	go func() {
		for i := 1; i <= n; i++ {
			ch <- i
		}
		close(ch)
	}()
	return ch
}

func (h *chatterHub) Sum(label string, ch <-chan int) int {
	h.uploadArg = label
	total := 0
	for v := range ch {
		total += v
	}
	h.uploadDone <- struct{}{}
	return total
}

func (h *chatterHub) Dawdle(ms int) string {
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return "done"
}

// chatterReceiver embeds the observable Receiver, every callback method
// forwards itself the way generated receivers do.
type chatterReceiver struct {
	Receiver
}

func (r *chatterReceiver) OnWhisper(text string) {
	r.Notify("OnWhisper", text)
}

type testBed struct {
	server   signalr.Server
	client   signalr.Client
	hub      *chatterHub
	receiver *chatterReceiver
	cliConn  *pipeConnection
	cancel   context.CancelFunc
}

// getTestBed connects a started client to an in process server over piped
// connections. cancel tears down both ends.
func getTestBed() *testBed {
	hub := &chatterHub{uploadDone: make(chan struct{}, 1)}
	serverCtx, cancelServer := context.WithCancel(context.Background())
	server, _ := signalr.NewServer(serverCtx,
		signalr.HubFactory(func() signalr.HubInterface { return hub }),
		testLoggerOption(),
		signalr.ChanReceiveTimeout(200*time.Millisecond),
		signalr.StreamBufferCapacity(5))
	cliConn, srvConn := newClientServerConnections()
	go func() { _ = server.Serve(srvConn) }()
	receiver := &chatterReceiver{}
	clientCtx, cancelClient := context.WithCancel(context.Background())
	client, _ := signalr.NewClient(clientCtx,
		signalr.WithConnection(cliConn),
		signalr.WithReceiver(receiver),
		testLoggerOption(),
		signalr.TransferFormat("Text"))
	client.Start()
	return &testBed{
		server:   server,
		client:   client,
		hub:      hub,
		receiver: receiver,
		cliConn:  cliConn,
		cancel: func() {
			cancelClient()
			cancelServer()
		},
	}
}

// collectItems drains one subscription into values until the observable
// completes or emits an error.
func collectItems(obs rxgo.Observable) (values []interface{}, err error) {
	for item := range obs.Observe() {
		if item.E != nil {
			return values, item.E
		}
		values = append(values, item.V)
	}
	return values, nil
}

// subscriptions reads the registration count of a target, so tests can wait
// for a subscription to be in place before the server calls back.
func subscriptions(r *Receiver, target string) int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return len(r.subs[strings.ToLower(target)])
}
