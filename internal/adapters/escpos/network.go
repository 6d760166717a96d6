package escpos

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/example/inkwell/internal/ports/secondary"
)

// NetworkTransport writes to a WiFi thermal printer over the standard
// ESC/POS TCP port. Connections are made per print.
type NetworkTransport struct {
	host string
	conn net.Conn
}

// NewNetwork creates a network transport. host may include a port; the
// ESC/POS default 9100 is appended otherwise.
func NewNetwork(host string) *NetworkTransport {
	if !strings.Contains(host, ":") {
		host += ":9100"
	}
	return &NetworkTransport{host: host}
}

func (t *NetworkTransport) Kind() secondary.TransportKind { return secondary.KindNetwork }

func (t *NetworkTransport) Describe() string {
	return fmt.Sprintf("Network printer (%s)", t.host)
}

// Open dials the printer to verify it is reachable, then disconnects; the
// write path dials its own connection per print.
func (t *NetworkTransport) Open() error {
	conn, err := net.DialTimeout("tcp", t.host, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to reach network printer %s: %w", t.host, err)
	}
	return conn.Close()
}

func (t *NetworkTransport) Write(text string) error {
	if t.conn == nil {
		conn, err := net.DialTimeout("tcp", t.host, 10*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", t.host, err)
		}
		t.conn = conn
	}
	if _, err := t.conn.Write(cmdInit); err != nil {
		return fmt.Errorf("failed to initialize printer: %w", err)
	}
	if _, err := t.conn.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write to printer: %w", err)
	}
	return nil
}

func (t *NetworkTransport) Cut() error {
	if t.conn == nil {
		return fmt.Errorf("network transport not connected")
	}
	if _, err := t.conn.Write(cmdCut); err != nil {
		return fmt.Errorf("failed to cut paper: %w", err)
	}
	return nil
}

func (t *NetworkTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	conn := t.conn
	t.conn = nil
	return conn.Close()
}
