package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when the selected broker lacks a feature.
var ErrUnsupported = errors.New("messaging: unsupported operation")

var (
	ErrDestinationRequired = errors.New("messaging: destination is required")
	ErrHandlerRequired     = errors.New("messaging: handler is required")
)

// Messaging publishes and consumes messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination subject.
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source subject. Consume blocks until ctx
// is done or the client is closed.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to publish.
type OutgoingMessage struct {
	Body    []byte
	Headers []Header
	// Delay defers delivery where the broker supports it.
	Delay time.Duration
}

// Header is a message header. Duplicate keys are allowed.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the broker reports on publish.
type PublishResult struct {
	MessageID string
	Subject   string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Headers() []Header
	Subject() string
	Timestamp() time.Time

	// Ack acknowledges successful processing.
	Ack(ctx context.Context) error
}

// Nackable can request redelivery.
type Nackable interface {
	Nack(ctx context.Context) error
}

// HeaderValue returns the first header value for key, or "".
func HeaderValue(headers []Header, key string) string {
	for i := range headers {
		if headers[i].Key == key {
			return string(headers[i].Value)
		}
	}
	return ""
}
