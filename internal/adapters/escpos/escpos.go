// Package escpos provides the concrete printer transports. Each transport is
// a tagged kind implementing secondary.Transport; selection happens once at
// startup by probing a static ordered list (see ProbeList).
package escpos

// ESC/POS control sequences shared by the raw transports.
var (
	cmdInit = []byte{0x1B, 0x40}             // ESC @ - initialize printer
	cmdCut  = []byte{0x1D, 0x56, 0x41, 0x10} // GS V A - feed and cut
)

// knownUSBPrinter is one row of the auto-detection table.
type knownUSBPrinter struct {
	vendor  uint16
	product uint16
	name    string
}

// knownUSBPrinters lists common thermal printers probed when no explicit
// vendor/product pair is configured.
var knownUSBPrinters = []knownUSBPrinter{
	{0x04b8, 0x0202, "Epson TM series"},
	{0x04b8, 0x0e15, "Epson TM-T20"},
	{0x04b8, 0x0e28, "Epson TM-T20II"},
	{0x04b8, 0x0e27, "Epson TM-T20III"},
	{0x04b8, 0x0e2a, "Epson TM-T82"},
	{0x0519, 0x0001, "Star TSP100"},
	{0x0519, 0x0003, "Star TSP143"},
	{0x0fe6, 0x811e, "ITP Printer"},
	{0x28e9, 0x0289, "Generic POS Printer"},
	{0x1fc9, 0x2016, "Generic Thermal Printer"},
	{0x1659, 0x8965, "Thermal Printer"},
	{0x1d90, 0x2168, "Citizen CT-S310"},
	{0x1d90, 0x2174, "Citizen CT-S4000"},
	{0x1504, 0x0006, "Bixolon SRP-275"},
	{0x1504, 0x0011, "Bixolon SRP-350"},
}

// commonSerialPorts are Pi-typical device paths probed as a late fallback.
var commonSerialPorts = []string{"/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyAMA0", "/dev/serial0"}
