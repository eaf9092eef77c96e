package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philippseith/signalr"
	"github.com/rs/zerolog"
)

const (
	chatGroup    = "chatters"
	historyDepth = 20
)

// chatHub is the hub mapped at /chat. One shared instance serves all
// connections, display names are kept per connection ID.
type chatHub struct {
	signalr.Hub

	history HistoryStore
	logger  zerolog.Logger

	mx    sync.Mutex
	names map[string]string
}

func newChatHub(history HistoryStore, logger zerolog.Logger) *chatHub {
	return &chatHub{
		history: history,
		logger:  logger,
		names:   make(map[string]string),
	}
}

func (h *chatHub) OnConnected(connectionID string) {
	h.logger.Info().Str("connection", connectionID).Msg("connected")
	h.Groups().AddToGroup(chatGroup, connectionID)
}

func (h *chatHub) OnDisconnected(connectionID string) {
	h.Groups().RemoveFromGroup(chatGroup, connectionID)
	h.mx.Lock()
	name, known := h.names[connectionID]
	delete(h.names, connectionID)
	h.mx.Unlock()
	h.logger.Info().Str("connection", connectionID).Msg("disconnected")
	if known {
		h.Clients().Group(chatGroup).Send("ParticipantLeft", name)
	}
}

// SetName registers the display name of the caller and announces it to the
// group.
func (h *chatHub) SetName(name string) {
	connectionID := h.ConnectionID()
	h.mx.Lock()
	previous := h.names[connectionID]
	h.names[connectionID] = name
	h.mx.Unlock()
	if previous == name {
		return
	}
	h.Clients().Group(chatGroup).Send("ParticipantJoined", name)
}

// SendMessage appends the message to the history and fans it out to the
// group.
func (h *chatHub) SendMessage(text string) {
	msg := Message{
		ID:     uuid.NewString(),
		Sender: h.displayName(),
		Text:   text,
		SentAt: time.Now().UTC(),
	}
	if err := h.history.Append(h.Context(), msg); err != nil {
		h.logger.Error().Err(err).Msg("append history")
	}
	h.Clients().Group(chatGroup).Send("ReceiveMessage", msg.Sender, msg.Text)
}

// Echo answers the caller only.
func (h *chatHub) Echo(text string) {
	h.Clients().Caller().Send("ReceiveMessage", h.displayName(), text)
}

// History returns the most recent messages, oldest first.
func (h *chatHub) History() []Message {
	messages, err := h.history.Recent(h.Context(), historyDepth)
	if err != nil {
		h.logger.Error().Err(err).Msg("read history")
		return nil
	}
	return messages
}

// Tick streams a wall clock readout every second.
func (h *chatHub) Tick() <-chan string {
	r := make(chan string)
	go func() {
		defer close(r)
		for i := 0; i < 600; i++ {
			r <- time.Now().Format("15:04:05")
			time.Sleep(time.Second)
		}
	}()
	return r
}

func (h *chatHub) displayName() string {
	connectionID := h.ConnectionID()
	h.mx.Lock()
	defer h.mx.Unlock()
	if name, ok := h.names[connectionID]; ok {
		return name
	}
	if len(connectionID) > 8 {
		connectionID = connectionID[:8]
	}
	return "guest-" + connectionID
}
