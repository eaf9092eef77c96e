package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/log"
	"github.com/philippseith/signalr"
	"github.com/reactivex/rxgo/v2"
	"github.com/spf13/cobra"

	"github.com/philippseith/signalrx"
)

var (
	serverURL string
	userName  string
	transport string
	logFile   string
)

var rootCmd = &cobra.Command{
	Use:          "chatclient",
	Short:        "Terminal chat client driven by observables",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient()
	},
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8086/chat", "chat hub address")
	rootCmd.Flags().StringVar(&userName, "name", "gopher", "display name")
	rootCmd.Flags().StringVar(&transport, "transport", "ws", "transport: ws or sse")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write client logs to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runClient() error {
	transports := signalr.TransportWebSockets
	switch transport {
	case "ws":
	case "sse":
		transports = signalr.TransportServerSentEvents
	default:
		return fmt.Errorf("unknown transport %q, use ws or sse", transport)
	}

	logger, err := clientLogger()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	receiver := &ChatEventsReceiver{}
	client, err := signalr.NewClient(ctx,
		signalr.WithConnector(func() (signalr.Connection, error) {
			dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
			defer dialCancel()
			return signalr.NewHTTPConnection(dialCtx, serverURL, signalr.WithTransports(transports))
		}),
		signalr.WithReceiver(receiver),
		signalr.WithBackoff(func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 0
			return bo
		}),
		signalr.KeepAliveInterval(2*time.Second),
		signalr.Logger(logger, false))
	if err != nil {
		return err
	}
	oc := signalrx.WrapClient(client)

	events := make(chan tea.Msg, 64)
	bag := signalrx.NewCompositeDisposable()
	defer bag.Dispose()

	pump(bag, events, oc.Start(), func(interface{}) tea.Msg { return nil })
	pump(bag, events, oc.StateChanges(), func(v interface{}) tea.Msg {
		state, ok := v.(signalr.ClientState)
		if !ok {
			return nil
		}
		return stateMsg(state)
	})
	pump(bag, events, receiver.ObserveReceiveMessage(), func(v interface{}) tea.Msg {
		args := v.(ReceiveMessageArgs)
		return chatLineMsg(formatChatLine(args.Sender, args.Text))
	})
	pump(bag, events, receiver.ObserveParticipantJoined(), func(v interface{}) tea.Msg {
		args := v.(ParticipantJoinedArgs)
		return chatLineMsg(noticeStyle.Render(args.Name + " joined"))
	})
	pump(bag, events, receiver.ObserveParticipantLeft(), func(v interface{}) tea.Msg {
		args := v.(ParticipantLeftArgs)
		return chatLineMsg(noticeStyle.Render(args.Name + " left"))
	})
	pump(bag, events, oc.PullStream("Tick"), func(v interface{}) tea.Msg {
		tick, ok := v.(string)
		if !ok {
			return nil
		}
		return tickMsg(tick)
	})

	p := tea.NewProgram(initialModel(oc, events, userName), tea.WithAltScreen())
	_, runErr := p.Run()

	bag.Dispose()
	receiver.Close()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	for range oc.Stop().Observe(rxgo.WithContext(stopCtx)) {
	}
	return runErr
}

// pump subscribes to obs and forwards its items as program messages until the
// subscription is disposed. toMsg may return nil to drop an item, faults
// become chat lines.
func pump(bag *signalrx.CompositeDisposable, events chan<- tea.Msg, obs rxgo.Observable, toMsg func(interface{}) tea.Msg) {
	ctx, cancel := context.WithCancel(context.Background())
	bag.Add(rxgo.Disposable(cancel))
	go func() {
		for item := range obs.Observe(rxgo.WithContext(ctx)) {
			var msg tea.Msg
			if item.E != nil {
				msg = chatLineMsg(errorStyle.Render("error: " + item.E.Error()))
			} else if msg = toMsg(item.V); msg == nil {
				continue
			}
			select {
			case events <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func clientLogger() (log.Logger, error) {
	if logFile == "" {
		return log.NewNopLogger(), nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return log.NewLogfmtLogger(log.NewSyncWriter(f)), nil
}
