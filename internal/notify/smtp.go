package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"lead-intake/internal/common/logger"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
}

func (c SMTPConfig) addr() string {
	port := c.Port
	if port == 0 {
		port = 587
	}
	return net.JoinHostPort(c.Host, fmt.Sprint(port))
}

// SMTPSender sends through a plain SMTP relay, upgrading with STARTTLS when
// UseTLS is set.
type SMTPSender struct {
	config SMTPConfig
	from   Sender
	logger logger.Logger
}

func NewSMTPSender(cfg SMTPConfig, from Sender, log logger.Logger) *SMTPSender {
	return &SMTPSender{
		config: cfg,
		from:   from,
		logger: log.WithFields(map[string]interface{}{"provider": "smtp"}),
	}
}

func (s *SMTPSender) Provider() string { return "smtp" }

func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.config.Host)
	raw, err := buildMessage(s.from, msg, messageID, time.Now())
	if err != nil {
		return "", err
	}

	client, closeConn, err := s.dial(ctx)
	if err != nil {
		return "", err
	}
	defer closeConn()

	if s.config.Username != "" && s.config.Password != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err = client.Auth(auth); err != nil {
			return "", fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(s.from.Email); err != nil {
		return "", fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return "", fmt.Errorf("failed to set recipient %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(raw); err != nil {
		return "", fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("failed to close data writer: %w", err)
	}
	if err = client.Quit(); err != nil {
		return "", fmt.Errorf("failed to quit: %w", err)
	}

	s.logger.Debug("email sent", map[string]interface{}{"to": msg.To, "messageId": messageID})
	return messageID, nil
}

// Check opens a session (and STARTTLS if configured) without sending.
func (s *SMTPSender) Check(ctx context.Context) error {
	client, closeConn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer closeConn()
	return client.Quit()
}

// dial connects with ctx's deadline applied to the whole session.
func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, func(), error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.config.addr())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}

	if s.config.UseTLS {
		if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	return client, func() { client.Close() }, nil
}

// buildMessage renders a multipart/alternative message, or a single text part
// when there is no HTML body.
func buildMessage(from Sender, msg EmailMessage, messageID string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.ToName), msg.To)
	}
	fromHeader := from.Email
	if from.Name != "" {
		fromHeader = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", from.Name), from.Email)
	}

	headers := []string{
		"From: " + fromHeader,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"Date: " + now.Format(time.RFC1123Z),
		"Message-ID: " + messageID,
		"MIME-Version: 1.0",
	}
	if msg.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+msg.ReplyTo)
	}

	if msg.HTML == "" {
		headers = append(headers, "Content-Type: text/plain; charset=UTF-8")
		buf.WriteString(strings.Join(headers, "\r\n"))
		buf.WriteString("\r\n\r\n")
		buf.WriteString(msg.Text)
		return buf.Bytes(), nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	headers = append(headers, fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mw.Boundary()))

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	buf.WriteString(strings.Join(headers, "\r\n"))
	buf.WriteString("\r\n\r\n")
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}
