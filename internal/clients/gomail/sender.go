package gomail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// smtpSender is a gomail.SendCloser over a single connection whose reads and writes are
// cut off once the dial context is done.
type smtpSender struct {
	client *smtp.Client
	stop   func() bool
}

func (c *Client) dial(ctx context.Context) (*smtpSender, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.addr(), err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})

	client, err := c.handshake(conn)
	if err != nil {
		stop()
		_ = conn.Close()

		return nil, err
	}

	return &smtpSender{
		client: client,
		stop:   stop,
	}, nil
}

func (c *Client) handshake(conn net.Conn) (*smtp.Client, error) {
	if c.port == implicitTLSPort {
		conn = tls.Client(conn, c.tlsConfig)
	}

	client, err := smtp.NewClient(conn, c.host)
	if err != nil {
		return nil, fmt.Errorf("smtp greeting: %w", err)
	}

	if c.port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			err = client.StartTLS(c.tlsConfig)
			if err != nil {
				return nil, fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if c.username != "" {
		if ok, mechs := client.Extension("AUTH"); ok {
			err = client.Auth(c.auth(mechs))
			if err != nil {
				return nil, fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	return client, nil
}

func (c *Client) auth(mechs string) smtp.Auth {
	switch {
	case strings.Contains(mechs, "CRAM-MD5"):
		return smtp.CRAMMD5Auth(c.username, c.password)
	case strings.Contains(mechs, "LOGIN"):
		return &loginAuth{username: c.username, password: c.password, host: c.host}
	default:
		return smtp.PlainAuth("", c.username, c.password, c.host)
	}
}

func (s *smtpSender) Send(from string, to []string, msg io.WriterTo) error {
	err := s.client.Mail(from)
	if err != nil {
		return fmt.Errorf("mail from: %w", err)
	}

	for _, addr := range to {
		err = s.client.Rcpt(addr)
		if err != nil {
			return fmt.Errorf("rcpt %s: %w", addr, err)
		}
	}

	w, err := s.client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}

	_, err = msg.WriteTo(w)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("end data: %w", err)
	}

	return nil
}

// Close ends the session and always releases the connection.
func (s *smtpSender) Close() error {
	defer s.stop()

	err := s.client.Quit()
	if err != nil {
		_ = s.client.Close()
		return fmt.Errorf("quit: %w", err)
	}

	return nil
}

// loginAuth implements the LOGIN mechanism, which net/smtp lacks.
type loginAuth struct {
	username string
	password string
	host     string
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS && !isLocalhost(server.Name) {
		return "", nil, errors.New("unencrypted connection")
	}

	if server.Name != a.host {
		return "", nil, errors.New("wrong host name")
	}

	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}

	switch {
	case bytes.EqualFold(fromServer, []byte("Username:")):
		return []byte(a.username), nil
	case bytes.EqualFold(fromServer, []byte("Password:")):
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected server challenge: %s", fromServer)
	}
}

func isLocalhost(name string) bool {
	return name == "localhost" || name == "127.0.0.1" || name == "::1"
}
