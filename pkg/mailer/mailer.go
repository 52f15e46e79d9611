// Package mailer sends HTML notification mail over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Message is a single outbound mail.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// Config holds SMTP configuration.
type Config struct {
	Host     string   // SMTP server host
	Port     int      // 465 for implicit TLS, 587/25 for STARTTLS
	Username string   // SMTP username (optional)
	Password string   // SMTP password (optional)
	From     string   // From header, "Name <addr>" or bare address
	To       []string // Recipients
}

// Validate validates the SMTP configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("SMTP port is required")
	}
	if c.From == "" {
		return fmt.Errorf("from address is required")
	}
	if len(c.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	return nil
}

// ErrNotConfigured is returned by NopSender.
var ErrNotConfigured = errors.New("mailer: not configured")

// Client sends mail through a single SMTP server.
type Client struct {
	config      Config
	dialTimeout time.Duration
}

// New creates an SMTP client.
func New(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid smtp config: %w", err)
	}
	return &Client{config: config, dialTimeout: 30 * time.Second}, nil
}

// Send delivers msg to all configured recipients.
func (c *Client) Send(ctx context.Context, msg Message) error {
	return c.sendMail(ctx, c.buildMIMEMessage(msg, time.Now()))
}

// buildMIMEMessage builds a multipart/alternative message with plain text and HTML parts.
func (c *Client) buildMIMEMessage(msg Message, now time.Time) []byte {
	boundary := fmt.Sprintf("----=_Part_%d", now.UnixNano())

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(c.config.From))
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(c.config.To, ", "))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", headerValue(msg.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	b.WriteString("\r\n")

	if msg.TextBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
		b.WriteString(msg.TextBody)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// sendMail sends the raw message via SMTP.
func (c *Client) sendMail(ctx context.Context, msg []byte) error {
	addr := net.JoinHostPort(c.config.Host, fmt.Sprint(c.config.Port))
	tlsConfig := &tls.Config{ServerName: c.config.Host}

	var client *smtp.Client
	var err error
	if c.config.Port == 465 {
		client, err = c.connectImplicitTLS(ctx, addr, tlsConfig)
	} else {
		client, err = c.connectSTARTTLS(ctx, addr, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if c.config.Username != "" && c.config.Password != "" {
		auth := smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(extractEmail(c.config.From)); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range c.config.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to add recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data: %w", err)
	}
	return client.Quit()
}

func (c *Client) connectImplicitTLS(ctx context.Context, addr string, tlsConfig *tls.Config) (*smtp.Client, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.dialTimeout},
		Config:    tlsConfig,
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.config.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

func (c *Client) connectSTARTTLS(ctx context.Context, addr string, tlsConfig *tls.Config) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, c.config.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	return client, nil
}

// NopSender drops every message. It is used when SMTP credentials are missing.
type NopSender struct{}

// Send always returns ErrNotConfigured.
func (NopSender) Send(context.Context, Message) error { return ErrNotConfigured }

// extractEmail extracts the address from a "Name <email>" value.
func extractEmail(addr string) string {
	if start := strings.Index(addr, "<"); start != -1 {
		if end := strings.Index(addr, ">"); end > start {
			return addr[start+1 : end]
		}
	}
	return addr
}

// headerValue strips CR and LF so user input cannot inject headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
