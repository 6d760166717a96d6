package escpos

import (
	"github.com/example/inkwell/internal/config"
	"github.com/example/inkwell/internal/ports/secondary"
)

// ProbeList builds the static, ordered transport candidates from config.
// Order matters: the delivery engine takes the first that opens and never
// probes further. Entries that cannot even be constructed (e.g. a malformed
// bluetooth address) are left out.
func ProbeList(cfg config.PrinterConfig) []secondary.Transport {
	var list []secondary.Transport

	// 1. Direct bluetooth socket to the configured device.
	if cfg.BluetoothAddr != "" {
		if bt, err := NewBluetooth(cfg.BluetoothAddr); err == nil {
			list = append(list, bt)
		}
	}

	// 2. Serial-over-bluetooth rfcomm bindings.
	for _, port := range cfg.RFCOMMPorts {
		list = append(list, NewSerial(port, 9600))
	}

	// 3. Explicitly configured serial port.
	if cfg.SerialPort != "" {
		list = append(list, NewSerial(cfg.SerialPort, 9600))
	}

	// 4. Configured network printer.
	if cfg.NetworkHost != "" {
		list = append(list, NewNetwork(cfg.NetworkHost))
	}

	// 5. Configured USB vendor/product pair.
	if cfg.USBVendor != 0 && cfg.USBProduct != 0 {
		list = append(list, NewUSB(cfg.USBVendor, cfg.USBProduct, ""))
	}

	// 6. Known thermal printer table.
	for _, p := range knownUSBPrinters {
		list = append(list, NewUSB(p.vendor, p.product, p.name))
	}

	// 7. Common serial device paths.
	for _, port := range commonSerialPorts {
		list = append(list, NewSerial(port, 9600))
	}

	// 8. File sink, 9. discard.
	if cfg.FilePath != "" {
		list = append(list, NewFile(cfg.FilePath))
	}
	list = append(list, NewDiscard())

	return list
}
