package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email.
type Message struct {
	// From overrides the configured default sender.
	From string
	To   []string
	Cc   []string
	Bcc  []string

	Subject string
	// TextBody is sent as text/plain. When HTMLBody is also set, the HTML part is
	// added as an alternative.
	TextBody string
	HTMLBody string
}

// Mail sends messages.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
