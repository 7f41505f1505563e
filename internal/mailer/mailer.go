// Package mailer delivers rendered email messages.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	gomail "gopkg.in/gomail.v2"

	"travelapp/internal/config"
)

// ErrDelivery wraps every transport failure. Callers treat it as transient.
var ErrDelivery = errors.New("email delivery failed")

type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return errors.New("message has no recipients")
	}
	if m.Subject == "" {
		return errors.New("message has no subject")
	}
	return nil
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// New picks the backend named in config.
func New(cfg config.MailConfig, log logrus.FieldLogger) Sender {
	if cfg.Backend == "smtp" {
		return NewSMTP(cfg)
	}
	return NewLogSender(cfg.From, log)
}

// SMTPSender sends through an SMTP relay. Repeated failures open a circuit
// breaker so workers fail fast and fall back on queue retries.
type SMTPSender struct {
	from    string
	dialer  *gomail.Dialer
	breaker *gobreaker.CircuitBreaker
}

func NewSMTP(cfg config.MailConfig) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureTLS,
		ServerName:         cfg.Host,
	}
	return &SMTPSender{
		from:    cfg.From,
		dialer:  dialer,
		breaker: newBreaker("smtp", cfg.BreakerFailures, cfg.BreakerOpenDelay),
	}
}

// newBreaker opens after failures consecutive errors and lets a single trial
// call through once openDelay has passed.
func newBreaker(name string, failures int, openDelay time.Duration) *gobreaker.CircuitBreaker {
	if failures <= 0 {
		failures = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openDelay,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(failures)
		},
	})
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Text)
	if m.HTML != "" {
		msg.AddAlternative("text/html", m.HTML)
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.dialer.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. It also keeps
// them in memory so tests can inspect what would have been sent.
type LogSender struct {
	from string
	log  logrus.FieldLogger

	mu   sync.Mutex
	sent []Message
}

func NewLogSender(from string, log logrus.FieldLogger) *LogSender {
	return &LogSender{from: from, log: log}
}

func (s *LogSender) Send(_ context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sent = append(s.sent, m)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"from":    s.from,
		"to":      strings.Join(m.To, ","),
		"subject": m.Subject,
	}).Info("email (log backend)")
	return nil
}

func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
