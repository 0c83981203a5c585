package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel sends the alert as a plain-text e-mail over SMTP.
type EmailChannel struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	sendMail SendMailFunc
}

// EmailOption configures an EmailChannel.
type EmailOption func(*EmailChannel)

// WithSMTPAuth enables PLAIN authentication.
func WithSMTPAuth(username, password string) EmailOption {
	return func(e *EmailChannel) {
		e.username = username
		e.password = password
	}
}

// WithSendMail replaces smtp.SendMail, for tests.
func WithSendMail(f SendMailFunc) EmailOption {
	return func(e *EmailChannel) {
		e.sendMail = f
	}
}

// NewEmailChannel creates a channel delivering to the given recipients.
func NewEmailChannel(host string, port int, from string, to []string, opts ...EmailOption) *EmailChannel {
	e := &EmailChannel{
		host:     host,
		port:     port,
		from:     from,
		to:       to,
		sendMail: smtp.SendMail,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Channel.
func (e *EmailChannel) Name() string { return "email" }

// Send implements Channel.
func (e *EmailChannel) Send(ctx context.Context, event domain.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	addr := net.JoinHostPort(e.host, strconv.Itoa(e.port))
	if err := e.sendMail(addr, auth, e.from, e.to, e.buildMessage(&event)); err != nil {
		return fmt.Errorf("sending email via %s: %w", addr, err)
	}
	return nil
}

func (e *EmailChannel) buildMessage(event *domain.AlertEvent) []byte {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.to, ", "))
	fmt.Fprintf(&msg, "Subject: Vaccine slots available for %s\r\n", event.Location)
	fmt.Fprintf(&msg, "Date: %s\r\n", event.Timestamp.Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "X-Alert-ID: %s\r\n", event.ID)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(event.Message, "\n", "\r\n"))
	msg.WriteString("\r\n")
	return []byte(msg.String())
}
