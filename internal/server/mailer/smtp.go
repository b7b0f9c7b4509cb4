// Package mailer delivers OTP codes by e-mail over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"
)

// Subjects used by the auth flows.
const (
	SubjectVerification = "Security Verification"
	SubjectRecovery     = "Recovery Code"
)

const defaultTimeout = time.Minute

// SMTPMailer sends one message per call over a fresh connection. By default
// the connection is wrapped in TLS before the SMTP greeting (port 465 style).
type SMTPMailer struct {
	addr        string
	user        string
	password    string
	from        string
	implicitTLS bool
	tlsConfig   *tls.Config
}

type Option func(*SMTPMailer)

// WithPlainTransport disables implicit TLS, for local relays and tests.
func WithPlainTransport() Option {
	return func(m *SMTPMailer) { m.implicitTLS = false }
}

// WithFrom overrides the envelope/header sender, which defaults to user.
func WithFrom(from string) Option {
	return func(m *SMTPMailer) { m.from = from }
}

// WithTLSConfig replaces the TLS settings of the implicit TLS connection.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(m *SMTPMailer) { m.tlsConfig = cfg }
}

func NewSMTPMailer(addr, user, password string, opts ...Option) *SMTPMailer {
	m := &SMTPMailer{
		addr:        addr,
		user:        user,
		password:    password,
		from:        user,
		implicitTLS: true,
	}
	for _, o := range opts {
		o(m)
	}
	if m.from == "" {
		m.from = "noreply@localhost"
	}
	return m
}

// Send delivers code to the address to. The context deadline bounds the whole
// exchange.
func (m *SMTPMailer) Send(ctx context.Context, to, code, subject string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, "Your secure verification code is: "+code)

	client, err := m.client(ctx)
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) client(ctx context.Context) (*mail.Client, error) {
	host, portStr, err := net.SplitHostPort(m.addr)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp address %q: %w", m.addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp port %q: %w", portStr, err)
	}

	timeout := defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, ctx.Err()
		}
	}

	tlsConfig := m.tlsConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(timeout),
		mail.WithDialContextFunc(m.dialer(tlsConfig)),
	}
	if m.implicitTLS {
		opts = append(opts, mail.WithSSL(), mail.WithTLSConfig(tlsConfig))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if m.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.user),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return client, nil
}

// dialer opens the connection with the context deadline applied to the
// greeting as well, and performs the TLS handshake when implicit TLS is on.
func (m *SMTPMailer) dialer(tlsConfig *tls.Config) mail.DialContextFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetDeadline(deadline)
		}
		if !m.implicitTLS {
			return conn, nil
		}

		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return tlsConn, nil
	}
}
