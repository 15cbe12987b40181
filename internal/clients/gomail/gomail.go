package gomail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/wavythought/relay/internal/entity"
	"github.com/wavythought/relay/pkg/config"
)

const implicitTLSPort = 465

type Client struct {
	host      string
	port      int
	username  string
	password  string
	tlsConfig *tls.Config
	dialer    net.Dialer
}

// New returns an SMTP client. Port 465 uses implicit TLS, any other port STARTTLS when offered.
func New(cfg config.SMTP) *Client {
	return &Client{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		tlsConfig: &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		},
	}
}

// Send dials the server and delivers n. Every network step is bounded by ctx: once it is done
// the connection is closed and Send returns.
func (c *Client) Send(ctx context.Context, n entity.Notification) error {
	sc, err := c.dial(ctx)
	if err != nil {
		return sendErr(ctx, err)
	}

	defer sc.Close()

	err = gomail.Send(sc, NewMessage(n))
	if err != nil {
		return sendErr(ctx, err)
	}

	return nil
}

func sendErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("failed to send email: %w: %w", ctxErr, err)
	}

	return fmt.Errorf("failed to send email: %w", err)
}

func NewMessage(n entity.Notification) *gomail.Message {
	msg := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)

	replyAddr, replyName := replyTo(n.ReplyTo)

	msg.SetAddressHeader("From", n.From, n.FromName)
	msg.SetHeader("To", n.To)
	msg.SetAddressHeader("Reply-To", replyAddr, replyName)
	msg.SetHeader("Subject", n.Subject)
	msg.SetBody("text/plain", n.Body)

	return msg
}

// replyTo splits a submitter address into address and display name. Unparsable input is
// used as the bare address.
func replyTo(raw string) (string, string) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return raw, ""
	}

	return addr.Address, addr.Name
}

func (c *Client) addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}
