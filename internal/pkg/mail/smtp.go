package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

var (
	// ErrSMTPHostRequired is returned when Host is empty.
	ErrSMTPHostRequired = errors.New("mail: smtp host is required")
	// ErrSMTPNoRecipients is returned when To, Cc and Bcc are all empty.
	ErrSMTPNoRecipients = errors.New("mail: no recipients provided")
	// ErrSMTPNoSender is returned when neither Message.From nor the default sender is set.
	ErrSMTPNoSender = errors.New("mail: no sender provided")
	// ErrSMTPNoBody is returned when both bodies are empty.
	ErrSMTPNoBody = errors.New("mail: no body provided")
)

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the default sender.
	From string
	// TLS is one of "mandatory", "opportunistic" or "none". Empty means opportunistic.
	TLS     string
	Timeout time.Duration
}

// SMTP sends mail through an SMTP relay. Each Send dials a fresh connection.
type SMTP struct {
	client      *gomail.Client
	defaultFrom string
}

// NewSMTP builds an SMTP sender. No connection is opened until Send.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, ErrSMTPHostRequired
	}

	opts := []gomail.Option{
		gomail.WithTLSPolicy(tlsPolicy(cfg.TLS)),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: smtp client: %w", err)
	}

	return &SMTP{client: client, defaultFrom: cfg.From}, nil
}

// Send delivers msg.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	return s.client.DialAndSendWithContext(ctx, m)
}

func (s *SMTP) build(msg Message) (*gomail.Msg, error) {
	if len(msg.To)+len(msg.Cc)+len(msg.Bcc) == 0 {
		return nil, ErrSMTPNoRecipients
	}
	if msg.TextBody == "" && msg.HTMLBody == "" {
		return nil, ErrSMTPNoBody
	}

	from := msg.From
	if from == "" {
		from = s.defaultFrom
	}
	if from == "" {
		return nil, ErrSMTPNoSender
	}

	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if len(msg.To) > 0 {
		if err := m.To(msg.To...); err != nil {
			return nil, fmt.Errorf("mail: to: %w", err)
		}
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return nil, fmt.Errorf("mail: cc: %w", err)
		}
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return nil, fmt.Errorf("mail: bcc: %w", err)
		}
	}
	m.Subject(msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	}

	return m, nil
}

// Close implements io.Closer. Connections are per-send, so nothing is held.
func (s *SMTP) Close() error {
	return nil
}

func tlsPolicy(v string) gomail.TLSPolicy {
	switch v {
	case "mandatory":
		return gomail.TLSMandatory
	case "none":
		return gomail.NoTLS
	default:
		return gomail.TLSOpportunistic
	}
}
