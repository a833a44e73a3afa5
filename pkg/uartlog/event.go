package uartlog

import "github.com/uartlog/uartlog-go/pkg/uartlog/event"

// Event is a single recognized UART log record.
type Event = event.Event

// Direction is the transfer direction of an Event.
type Direction = event.Direction

// Directions.
const (
	RX = event.RX
	TX = event.TX
)
