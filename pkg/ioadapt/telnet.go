package ioadapt

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/storyloom/storyloom/pkg/driver"
	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/oob"
)

const (
	negotiateTimeout = 500 * time.Millisecond
	writeTimeout     = 5 * time.Second
)

// TelnetServer accepts TCP clients and hands each one to the driver as
// a fresh connection. OOB protocols are negotiated per client.
type TelnetServer struct {
	driver *driver.Driver
	log    *zap.Logger

	mu sync.Mutex
	ln net.Listener
}

// NewTelnetServer creates a server for the given driver.
func NewTelnetServer(d *driver.Driver, log *zap.Logger) *TelnetServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &TelnetServer{driver: d, log: log}
}

// Listen binds the server address.
func (s *TelnetServer) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("telnet listen: %w", err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.log.Info("telnet server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Serve runs the accept loop until Close.
func (s *TelnetServer) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("telnet serve: not listening")
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return err
		}
		go s.handle(conn)
	}
}

// Close stops the accept loop.
func (s *TelnetServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.ln = nil
	return err
}

func (s *TelnetServer) handle(conn net.Conn) {
	caps := oob.Negotiate(conn, negotiateTimeout)
	tc := newTelnetConn(conn, caps)
	if caps.MSSP {
		tc.sendRaw(oob.EncodeMSSP(s.msspPairs()))
	}
	s.log.Info("client connected",
		zap.String("addr", conn.RemoteAddr().String()),
		zap.Bool("gmcp", caps.GMCP), zap.Bool("msdp", caps.MSDP))

	s.driver.NewConnection(tc)
	tc.readLoop(func() {
		s.log.Info("client hung up", zap.String("addr", tc.addr))
		s.driver.AfterPlayerAction(func(ctx *driver.Context) {
			for _, sess := range s.driver.Sessions() {
				if sess.Conn == tc {
					s.driver.Detach(sess, false)
				}
			}
		})
	})
}

// msspPairs builds the MSSP crawler payload from live driver state.
func (s *TelnetServer) msspPairs() map[string]string {
	cfg := s.driver.Config
	return map[string]string{
		"NAME":     cfg.Name,
		"PLAYERS":  strconv.Itoa(len(s.driver.Sessions())),
		"UPTIME":   strconv.FormatInt(time.Now().Unix(), 10),
		"CODEBASE": "storyloom",
	}
}

// telnetConn is one client connection. Input bytes pass through a small
// telnet state machine that strips IAC sequences and collects GMCP
// subnegotiations; everything else is line input.
type telnetConn struct {
	lineBuffer

	conn net.Conn
	caps *oob.Capabilities
	addr string

	wmu       sync.Mutex
	destroyed bool
}

func newTelnetConn(conn net.Conn, caps *oob.Capabilities) *telnetConn {
	return &telnetConn{
		lineBuffer: newLineBuffer(),
		conn:       conn,
		caps:       caps,
		addr:       conn.RemoteAddr().String(),
	}
}

func (t *telnetConn) sendRaw(data []byte) {
	if data == nil {
		return
	}
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if t.destroyed {
		return
	}
	t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	t.conn.Write(data)
}

func (t *telnetConn) sendLine(msg string) {
	t.sendRaw([]byte(lang.StripStyles(msg) + "\r\n"))
}

// Output writes one region of paragraphs, CRLF terminated, with a
// GMCP mirror for capable clients.
func (t *telnetConn) Output(paragraphs []string) {
	for i, p := range paragraphs {
		if i > 0 {
			t.sendRaw([]byte("\r\n"))
		}
		t.sendLine(p)
	}
	if t.caps != nil && t.caps.GMCP && len(paragraphs) > 0 {
		ev := oob.Event{
			Type: oob.EvRoomText,
			Text: lang.StripStyles(paragraphs[len(paragraphs)-1]),
			Data: map[string]any{"text": lang.StripStyles(paragraphs[len(paragraphs)-1])},
		}
		t.sendRaw(oob.EncodeGMCP(ev))
	}
}

// WriteInputPrompt draws the prompt with no newline so the cursor rests
// after it.
func (t *telnetConn) WriteInputPrompt() {
	t.sendRaw([]byte("\r\n> "))
}

func (t *telnetConn) ClearScreen() {
	t.sendRaw([]byte("\x1b[2J\x1b[H"))
}

// Destroy closes the socket once.
func (t *telnetConn) Destroy() {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if !t.destroyed {
		t.destroyed = true
		t.conn.Close()
	}
}

// readLoop consumes the socket until it drops, then runs onClose.
func (t *telnetConn) readLoop(onClose func()) {
	defer onClose()
	r := bufio.NewReaderSize(t.conn, 4096)
	var line []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		switch b {
		case oob.IAC:
			if t.consumeIAC(r) != nil {
				return
			}
		case 0x03: // Ctrl-C sent in-band
			t.Break()
		case '\n':
			t.push(string(line))
			line = line[:0]
		case '\r':
			// swallowed; \n completes the line
		default:
			line = append(line, b)
		}
	}
}

// consumeIAC handles one telnet command sequence after the IAC byte.
func (t *telnetConn) consumeIAC(r *bufio.Reader) error {
	cmd, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case oob.IP:
		t.Break()
		return nil
	case oob.NOP, oob.SE:
		return nil
	case oob.WILL, oob.WONT, oob.DO, oob.DONT:
		_, err = r.ReadByte()
		return err
	case oob.SB:
		return t.consumeSubneg(r)
	}
	return nil
}

// consumeSubneg reads a subnegotiation body up to IAC SE. GMCP bodies
// update the client's package subscriptions; the rest is dropped.
func (t *telnetConn) consumeSubneg(r *bufio.Reader) error {
	opt, err := r.ReadByte()
	if err != nil {
		return err
	}
	var body []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b == oob.IAC {
			next, err := r.ReadByte()
			if err != nil {
				return err
			}
			if next == oob.SE {
				break
			}
			body = append(body, next)
			continue
		}
		body = append(body, b)
	}
	if opt == oob.TeloptGMCP && t.caps != nil {
		pkg, _ := oob.ParseGMCPMessage(body)
		if pkg != "" {
			t.caps.GMCPPackages[pkg] = true
		}
	}
	return nil
}
