package mailer

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{name: "empty config", config: Config{}, wantErr: true, errMsg: "SMTP host is required"},
		{name: "missing port", config: Config{Host: "smtp.example.com"}, wantErr: true, errMsg: "SMTP port is required"},
		{name: "missing from", config: Config{Host: "smtp.example.com", Port: 587}, wantErr: true, errMsg: "from address is required"},
		{
			name:    "missing recipients",
			config:  Config{Host: "smtp.example.com", Port: 587, From: "a@example.com"},
			wantErr: true,
			errMsg:  "at least one recipient is required",
		},
		{
			name:   "valid config",
			config: Config{Host: "smtp.example.com", Port: 587, From: "a@example.com", To: []string{"b@example.com"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuildMIMEMessage(t *testing.T) {
	c := &Client{config: Config{
		Host: "smtp.example.com",
		Port: 587,
		From: "Portfolio Contact Form <me@example.com>",
		To:   []string{"inbox@example.com"},
	}}

	raw := string(c.buildMIMEMessage(Message{
		Subject:  "Hello\r\nBcc: evil@example.com",
		HTMLBody: "<p>Hi</p>",
		TextBody: "Hi",
		ReplyTo:  "ada@example.com",
	}, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))

	for _, want := range []string{
		"From: Portfolio Contact Form <me@example.com>\r\n",
		"To: inbox@example.com\r\n",
		"Reply-To: ada@example.com\r\n",
		"Subject: Hello  Bcc: evil@example.com\r\n",
		"Content-Type: text/html; charset=UTF-8",
		"Content-Type: text/plain; charset=UTF-8",
		"<p>Hi</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q\n%s", want, raw)
		}
	}
	if strings.Contains(raw, "\r\nBcc:") {
		t.Error("subject injected a Bcc header")
	}
}

func TestExtractEmail(t *testing.T) {
	tests := map[string]string{
		"Name <a@example.com>": "a@example.com",
		"a@example.com":        "a@example.com",
		"broken <a@example":    "broken <a@example",
	}
	for in, want := range tests {
		if got := extractEmail(in); got != want {
			t.Errorf("extractEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNopSender(t *testing.T) {
	err := NopSender{}.Send(context.Background(), Message{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

// fakeSMTPServer accepts one session and records the DATA payload.
type fakeSMTPServer struct {
	ln   net.Listener
	mu   sync.Mutex
	data string
	rcpt []string
	done chan struct{}
}

func newFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeSMTPServer{ln: ln, done: make(chan struct{})}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeSMTPServer) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	write := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
	write("220 localhost ESMTP")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			write("250 localhost")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			write("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO"):
			s.mu.Lock()
			s.rcpt = append(s.rcpt, strings.TrimSpace(line))
			s.mu.Unlock()
			write("250 OK")
		case cmd == "DATA":
			write("354 End data with <CR><LF>.<CR><LF>")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			s.mu.Lock()
			s.data = body.String()
			s.mu.Unlock()
			write("250 OK")
		case cmd == "QUIT":
			write("221 Bye")
			return
		default:
			write("250 OK")
		}
	}
}

func TestClient_Send(t *testing.T) {
	srv := newFakeSMTPServer(t)
	addr := srv.ln.Addr().(*net.TCPAddr)

	client, err := New(Config{
		Host: "127.0.0.1",
		Port: addr.Port,
		From: "Portfolio <me@example.com>",
		To:   []string{"inbox@example.com"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Send(ctx, Message{Subject: "New message", HTMLBody: "<b>hello</b>", ReplyTo: "ada@example.com"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case <-srv.done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not finish")
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.rcpt) != 1 || !strings.Contains(srv.rcpt[0], "inbox@example.com") {
		t.Errorf("unexpected recipients: %v", srv.rcpt)
	}
	if !strings.Contains(srv.data, "<b>hello</b>") {
		t.Errorf("body not delivered: %q", srv.data)
	}
	if !strings.Contains(srv.data, "Reply-To: ada@example.com") {
		t.Errorf("reply-to header missing: %q", srv.data)
	}
}

func TestClient_ImplicitTLS_HonorsContextDeadline(t *testing.T) {
	// TLS peer that completes the handshake but never sends an SMTP greeting.
	srv := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()
	addr := srv.Listener.Addr().String()

	client, err := New(Config{Host: "127.0.0.1", Port: 465, From: "me@example.com", To: []string{"inbox@example.com"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		c, err := client.connectImplicitTLS(ctx, addr, &tls.Config{InsecureSkipVerify: true})
		if c != nil {
			c.Close()
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		if err == nil {
			t.Fatal("expected an error from a server that never greets")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("connectImplicitTLS still blocked after the context deadline")
	}
}
