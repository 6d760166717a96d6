package secondary

// TransportKind tags a concrete transport. Kinds carry their own labels;
// nothing in the delivery path inspects concrete types.
type TransportKind string

const (
	KindBluetooth TransportKind = "bluetooth"
	KindSerial    TransportKind = "serial"
	KindNetwork   TransportKind = "network"
	KindUSB       TransportKind = "usb"
	KindFile      TransportKind = "file"
	KindDiscard   TransportKind = "discard"
)

// Transport is one concrete delivery channel capable of accepting formatted
// text. Socket-backed transports open and close per print call; one-shot
// hardware handles stay open for the process lifetime.
type Transport interface {
	// Kind returns the transport's tag.
	Kind() TransportKind

	// Describe returns a human-readable label, e.g. the device address.
	Describe() string

	// Open prepares the transport for writing.
	Open() error

	// Write sends formatted text to the device.
	Write(text string) error

	// Cut advances and cuts the paper where supported.
	Cut() error

	// Close releases the transport.
	Close() error
}

// AudioPlayer starts asynchronous local playback of the configured cue.
type AudioPlayer interface {
	// Play starts playback and returns without waiting for completion.
	Play() error
}
