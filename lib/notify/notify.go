// Package notify mails a summary once a scrape job has finished.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("recordscrape/notify")

type EmailConfig struct {
	Server   string   `json:"server"`
	Port     int      `json:"port"`
	Address  string   `json:"address"`
	Password string   `json:"password"`
	To       []string `json:"to"`
}

func (c EmailConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

type Failure struct {
	Row        int
	Identifier string
	Reason     string
}

type Summary struct {
	Job         string
	RunID       string
	Source      string
	Destination string
	Extracted   int
	Failed      int
	Pending     int
	Duration    time.Duration
	Failures    []Failure
}

func (s Summary) Total() int {
	return s.Extracted + s.Failed + s.Pending
}

// maxListedFailures bounds the failure list in the body, the destination
// file has all of them.
const maxListedFailures = 25

func Compose(from string, to []string, s Summary) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("recordscrape <%s>", from)
	mail.To = to
	mail.Subject = fmt.Sprintf(
		"[recordscrape] %s: %d/%d extracted",
		s.Job, s.Extracted, s.Total(),
	)

	var body strings.Builder
	fmt.Fprintf(&body, "Run %s finished in %s.\n\n", s.RunID, s.Duration.Round(time.Second))
	fmt.Fprintf(&body, "Source:      %s\n", s.Source)
	fmt.Fprintf(&body, "Destination: %s\n\n", s.Destination)
	fmt.Fprintf(&body, "Extracted: %d\n", s.Extracted)
	fmt.Fprintf(&body, "Failed:    %d\n", s.Failed)
	fmt.Fprintf(&body, "Pending:   %d\n", s.Pending)

	if len(s.Failures) > 0 {
		body.WriteString("\nFailures:\n")
		for i, f := range s.Failures {
			if i == maxListedFailures {
				fmt.Fprintf(&body, "... and %d more\n", len(s.Failures)-maxListedFailures)
				break
			}
			fmt.Fprintf(&body, "- row %d (%s): %s\n", f.Row, f.Identifier, f.Reason)
		}
	}
	mail.Text = []byte(body.String())
	return mail
}

type sendFunc func(mail *email.Email, addr string, auth smtp.Auth) error

func defaultSend(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

type Notifier struct {
	config EmailConfig
	send   sendFunc
}

func NewNotifier(config EmailConfig) Notifier {
	return Notifier{config: config, send: defaultSend}
}

// Send mails the summary. Servers that do not support AUTH are retried
// without credentials.
func (n Notifier) Send(ctx context.Context, s Summary) error {
	_, span := tracer.Start(ctx, "notifier:Send")
	defer span.End()

	mail := Compose(n.config.Address, n.config.To, s)
	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)

	err := n.send(mail, addr, smtp.PlainAuth("", n.config.Address, n.config.Password, n.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = n.send(mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
