// Package smtpprobe implements the SMTP Session Probe (§4.5), the RCPT
// Probe (§4.6), the TLS Inspector, and the SMTP-dependent ancillary probes
// of §4.7.
//
// None of these map cleanly onto net/smtp.Client: the probes need the raw
// greeting line for banner inspection, the exact EHLO capability tokens,
// control over when STARTTLS happens, and the ability to run multiple
// custom command sequences (malformed MAIL FROM, double RCPT, retries with
// delays) against one transport. optimode-emailkit's internal/smtppool hand-
// rolls the wire protocol over bufio+net.Conn for exactly this reason — this
// package follows that shape (command/readResponse) without the pool, since
// spec.md's resource model bounds each verification to at most two sessions
// per MX rather than a long-lived reusable pool.
package smtpprobe

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Dialer opens the raw TCP connection a conn wraps; injected for tests.
type Dialer func(ctx context.Context, network, address string) (net.Conn, error)

// Conn is one raw SMTP transport to a single MX host on port 25.
type Conn struct {
	netConn net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	host    string
}

// dial opens a TCP connection to host:25 bounded by timeout.
func dial(ctx context.Context, d Dialer, host string, timeout time.Duration) (*Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	netConn, err := d(dctx, "tcp", net.JoinHostPort(host, "25"))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", host, err)
	}
	return &Conn{
		netConn: netConn,
		reader:  bufio.NewReader(netConn),
		writer:  bufio.NewWriter(netConn),
		host:    host,
	}, nil
}

func (c *Conn) setDeadline(d time.Duration) {
	_ = c.netConn.SetDeadline(time.Now().Add(d))
}

func (c *Conn) Close() {
	_ = c.netConn.Close()
}

// readResponse reads a (possibly multi-line) SMTP response, returning the
// numeric code, the full joined text, and the raw first line (used for
// greeting/banner inspection).
func (c *Conn) readResponse() (code int, full string, firstLine string, err error) {
	var lines []string
	for {
		line, rerr := c.reader.ReadString('\n')
		if rerr != nil {
			return 0, "", "", fmt.Errorf("read SMTP response: %w", rerr)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", "", errors.New("SMTP response line too short")
		}
		lines = append(lines, line)
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}
	last := lines[len(lines)-1]
	code, err = strconv.Atoi(last[:3])
	if err != nil {
		return 0, "", "", fmt.Errorf("invalid SMTP response code %q: %w", last[:3], err)
	}
	return code, strings.Join(lines, " | "), lines[0], nil
}

// command writes cmd (without CRLF) and reads the response.
func (c *Conn) command(cmd string) (code int, full string, err error) {
	if _, err := c.writer.WriteString(cmd + "\r\n"); err != nil {
		return 0, "", err
	}
	if err := c.writer.Flush(); err != nil {
		return 0, "", err
	}
	code, full, _, err = c.readResponse()
	return code, full, err
}

// ehlo sends EHLO and parses the advertised extension tokens (the first
// word after the reply code on every line of the response, the first and
// last lines included).
func (c *Conn) ehlo(hostname string) (code int, extensions map[string]bool, err error) {
	if _, err := c.writer.WriteString("EHLO " + hostname + "\r\n"); err != nil {
		return 0, nil, err
	}
	if err := c.writer.Flush(); err != nil {
		return 0, nil, err
	}

	extensions = make(map[string]bool)
	var lines []string
	for {
		line, rerr := c.reader.ReadString('\n')
		if rerr != nil {
			return 0, extensions, fmt.Errorf("read EHLO response: %w", rerr)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, extensions, errors.New("EHLO response line too short")
		}
		lines = append(lines, line)
		if len(line) > 4 {
			token := strings.ToUpper(strings.Fields(line[4:])[0])
			extensions[token] = true
		}
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}
	last := lines[len(lines)-1]
	code, err = strconv.Atoi(last[:3])
	if err != nil {
		return 0, extensions, fmt.Errorf("invalid EHLO response code %q: %w", last[:3], err)
	}
	return code, extensions, nil
}

// helo sends the fallback HELO command (§4.6: "fallback to HELO on
// 4xx/5xx").
func (c *Conn) helo(hostname string) (code int, err error) {
	code, _, err = c.command("HELO " + hostname)
	return code, err
}

// startTLS issues STARTTLS and, on a 220 response, performs the TLS
// handshake in place, replacing the conn's reader/writer with ones backed
// by the encrypted connection. Returns the resulting connection state so
// callers can inspect the peer certificate and negotiated cipher.
func (c *Conn) startTLS(serverName string) (*tls.ConnectionState, error) {
	code, _, err := c.command("STARTTLS")
	if err != nil {
		return nil, err
	}
	if code != 220 {
		return nil, fmt.Errorf("STARTTLS rejected: %d", code)
	}

	tlsConn := tls.Client(c.netConn, &tls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: true, // inspection only, never used to send mail
	})
	if err := tlsConn.Handshake(); err != nil {
		return nil, fmt.Errorf("TLS handshake failed: %w", err)
	}

	c.netConn = tlsConn
	c.reader = bufio.NewReader(tlsConn)
	c.writer = bufio.NewWriter(tlsConn)

	state := tlsConn.ConnectionState()
	return &state, nil
}

func (c *Conn) mailFrom(addr string) (code int, msg string, err error) {
	return c.command(fmt.Sprintf("MAIL FROM:<%s>", addr))
}

func (c *Conn) rcptTo(addr string) (code int, msg string, err error) {
	return c.command(fmt.Sprintf("RCPT TO:<%s>", addr))
}

func (c *Conn) noop() (code int, err error) {
	code, _, err = c.command("NOOP")
	return code, err
}

func (c *Conn) rset() (code int, err error) {
	code, _, err = c.command("RSET")
	return code, err
}

// quit sends QUIT and returns the response code, ignoring write/read
// errors beyond reporting them (callers treat any non-221 or error as an
// unclean disconnect per §4.7 "QUIT behaviour").
func (c *Conn) quit() (code int, err error) {
	code, _, err = c.command("QUIT")
	return code, err
}
