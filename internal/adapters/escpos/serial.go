package escpos

import (
	"fmt"
	"os"

	"go.bug.st/serial"

	"github.com/example/inkwell/internal/ports/secondary"
)

// SerialTransport writes over a serial device, covering both real serial
// printers and serial-over-bluetooth rfcomm bindings.
type SerialTransport struct {
	path string
	baud int
	port serial.Port
}

// NewSerial creates a serial transport for the given device path.
func NewSerial(path string, baud int) *SerialTransport {
	if baud == 0 {
		baud = 9600
	}
	return &SerialTransport{path: path, baud: baud}
}

func (t *SerialTransport) Kind() secondary.TransportKind { return secondary.KindSerial }

func (t *SerialTransport) Describe() string {
	return fmt.Sprintf("Serial printer (%s)", t.path)
}

// Open opens the device. The handle persists for the process lifetime.
func (t *SerialTransport) Open() error {
	if t.port != nil {
		return nil
	}
	if _, err := os.Stat(t.path); err != nil {
		return fmt.Errorf("serial device %s not present: %w", t.path, err)
	}

	port, err := serial.Open(t.path, &serial.Mode{BaudRate: t.baud})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", t.path, err)
	}
	t.port = port
	return nil
}

func (t *SerialTransport) Write(text string) error {
	if t.port == nil {
		if err := t.Open(); err != nil {
			return err
		}
	}
	if _, err := t.port.Write(cmdInit); err != nil {
		return fmt.Errorf("failed to initialize printer: %w", err)
	}
	if _, err := t.port.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	return nil
}

func (t *SerialTransport) Cut() error {
	if t.port == nil {
		return fmt.Errorf("serial transport not open")
	}
	if _, err := t.port.Write(cmdCut); err != nil {
		return fmt.Errorf("failed to cut paper: %w", err)
	}
	return nil
}

func (t *SerialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	port := t.port
	t.port = nil
	return port.Close()
}
