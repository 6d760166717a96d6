package escpos

import (
	"fmt"

	"github.com/google/gousb"

	"github.com/example/inkwell/internal/ports/secondary"
)

// USBTransport writes to a USB thermal printer via libusb. The device handle
// is claimed at Open and kept for the process lifetime.
type USBTransport struct {
	vendor  uint16
	product uint16
	name    string

	usbCtx *gousb.Context
	dev    *gousb.Device
	intf   *gousb.Interface
	closer func()
	out    *gousb.OutEndpoint
}

// NewUSB creates a USB transport for the given vendor/product pair.
func NewUSB(vendor, product uint16, name string) *USBTransport {
	if name == "" {
		name = "USB thermal printer"
	}
	return &USBTransport{vendor: vendor, product: product, name: name}
}

func (t *USBTransport) Kind() secondary.TransportKind { return secondary.KindUSB }

func (t *USBTransport) Describe() string {
	return fmt.Sprintf("%s (%04x:%04x)", t.name, t.vendor, t.product)
}

// Open claims the device and resolves its bulk OUT endpoint.
func (t *USBTransport) Open() error {
	if t.out != nil {
		return nil
	}

	usbCtx := gousb.NewContext()
	dev, err := usbCtx.OpenDeviceWithVIDPID(gousb.ID(t.vendor), gousb.ID(t.product))
	if err != nil || dev == nil {
		usbCtx.Close()
		if err == nil {
			err = fmt.Errorf("device not present")
		}
		return fmt.Errorf("failed to open usb device %04x:%04x: %w", t.vendor, t.product, err)
	}

	intf, closer, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to claim usb interface: %w", err)
	}

	var out *gousb.OutEndpoint
	for _, ep := range intf.Setting.Endpoints {
		if ep.Direction == gousb.EndpointDirectionOut {
			out, err = intf.OutEndpoint(ep.Number)
			break
		}
	}
	if err != nil || out == nil {
		closer()
		dev.Close()
		usbCtx.Close()
		if err == nil {
			err = fmt.Errorf("no bulk OUT endpoint")
		}
		return fmt.Errorf("failed to resolve usb endpoint: %w", err)
	}

	t.usbCtx = usbCtx
	t.dev = dev
	t.intf = intf
	t.closer = closer
	t.out = out
	return nil
}

func (t *USBTransport) Write(text string) error {
	if t.out == nil {
		return fmt.Errorf("usb transport not open")
	}
	if _, err := t.out.Write(cmdInit); err != nil {
		return fmt.Errorf("failed to initialize printer: %w", err)
	}
	if _, err := t.out.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write to usb printer: %w", err)
	}
	return nil
}

func (t *USBTransport) Cut() error {
	if t.out == nil {
		return fmt.Errorf("usb transport not open")
	}
	if _, err := t.out.Write(cmdCut); err != nil {
		return fmt.Errorf("failed to cut paper: %w", err)
	}
	return nil
}

func (t *USBTransport) Close() error {
	if t.out == nil {
		return nil
	}
	t.out = nil
	t.closer()
	t.dev.Close()
	t.usbCtx.Close()
	return nil
}
