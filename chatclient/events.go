package main

//go:generate go run github.com/philippseith/signalrx/signalrxgen

// ChatEvents are the server to client calls of the chat hub.
//
//signalrx:receiver
type ChatEvents interface {
	ReceiveMessage(sender string, text string)
	ParticipantJoined(name string)
	ParticipantLeft(name string)
}
