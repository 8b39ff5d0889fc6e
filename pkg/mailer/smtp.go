package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTP sends mail through a plain SMTP relay. Secure selects implicit TLS;
// otherwise STARTTLS is used when the server offers it.
type SMTP struct {
	Host       string
	Port       int
	Secure     bool
	Username   string
	Password   string
	From       string
	SenderName string
}

func NewSMTP(host string, port int, secure bool, username, password, from, senderName string) *SMTP {
	return &SMTP{
		Host:       host,
		Port:       port,
		Secure:     secure,
		Username:   username,
		Password:   password,
		From:       from,
		SenderName: senderName,
	}
}

func (m *SMTP) addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Send delivers a plain-text message. The context bounds connection setup;
// the SMTP dialogue itself is capped by a write deadline on the socket.
func (m *SMTP) Send(ctx context.Context, to, subject, body string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr())
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if m.Secure {
		conn = tls.Client(conn, &tls.Config{ServerName: m.Host})
	}
	_ = conn.SetDeadline(time.Now().Add(30 * time.Second))

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if !m.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}
	if m.Username != "" {
		auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(m.message(to, subject, body))); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}

func (m *SMTP) message(to, subject, body string) string {
	from := m.From
	if m.SenderName != "" {
		from = fmt.Sprintf("%q <%s>", m.SenderName, m.From)
	}
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}
