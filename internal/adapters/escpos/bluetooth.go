package escpos

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/example/inkwell/internal/ports/secondary"
)

// BluetoothTransport writes to a thermal printer over a raw RFCOMM socket.
// The socket is dialed lazily on Write and released on Close, so the printer
// is free between prints.
type BluetoothTransport struct {
	addr    [6]byte
	display string
	channel uint8
	fd      int
	open    bool
}

// NewBluetooth creates an RFCOMM transport for the given MAC address.
func NewBluetooth(mac string) (*BluetoothTransport, error) {
	addr, err := parseMAC(mac)
	if err != nil {
		return nil, err
	}
	return &BluetoothTransport{addr: addr, display: mac, channel: 1, fd: -1}, nil
}

// parseMAC converts "60:6E:41:15:4A:EE" into the reversed byte order the
// kernel's bdaddr_t expects.
func parseMAC(mac string) ([6]byte, error) {
	var addr [6]byte
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return addr, fmt.Errorf("invalid bluetooth address %q", mac)
	}
	for i, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return addr, fmt.Errorf("invalid bluetooth address %q: %w", mac, err)
		}
		addr[5-i] = byte(b)
	}
	return addr, nil
}

func (t *BluetoothTransport) Kind() secondary.TransportKind { return secondary.KindBluetooth }

func (t *BluetoothTransport) Describe() string {
	return fmt.Sprintf("Bluetooth printer (%s)", t.display)
}

// Open dials the device once to verify it is reachable, then releases the
// socket. Real connections are made per Write so the device stays free
// between prints.
func (t *BluetoothTransport) Open() error {
	if err := t.connect(); err != nil {
		return err
	}
	return t.Close()
}

func (t *BluetoothTransport) connect() error {
	if t.open {
		return nil
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM, unix.BTPROTO_RFCOMM)
	if err != nil {
		return fmt.Errorf("failed to create rfcomm socket: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: t.addr, Channel: t.channel}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return fmt.Errorf("failed to connect to %s: %w", t.display, err)
	}

	t.fd = fd
	t.open = true
	return nil
}

// Write initializes the printer and sends the text line by line.
func (t *BluetoothTransport) Write(text string) error {
	if err := t.connect(); err != nil {
		return err
	}

	if _, err := unix.Write(t.fd, cmdInit); err != nil {
		return fmt.Errorf("failed to initialize printer: %w", err)
	}

	for _, line := range strings.Split(text, "\n") {
		if _, err := unix.Write(t.fd, append([]byte(line), '\n')); err != nil {
			return fmt.Errorf("failed to write to printer: %w", err)
		}
	}
	return nil
}

// Cut sends the paper cut command.
func (t *BluetoothTransport) Cut() error {
	if !t.open {
		return fmt.Errorf("bluetooth transport not connected")
	}
	if _, err := unix.Write(t.fd, cmdCut); err != nil {
		return fmt.Errorf("failed to cut paper: %w", err)
	}
	return nil
}

// Close releases the socket so the device is free for the next print.
func (t *BluetoothTransport) Close() error {
	if !t.open {
		return nil
	}
	t.open = false
	fd := t.fd
	t.fd = -1
	return unix.Close(fd)
}
