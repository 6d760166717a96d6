package escpos

import (
	"fmt"
	"os"

	"github.com/example/inkwell/internal/ports/secondary"
)

// FileTransport appends formatted output to a local file. The last resort
// before discarding: missions remain readable even with no hardware at all.
type FileTransport struct {
	path string
	f    *os.File
}

// NewFile creates a file sink at the given path.
func NewFile(path string) *FileTransport {
	return &FileTransport{path: path}
}

func (t *FileTransport) Kind() secondary.TransportKind { return secondary.KindFile }

func (t *FileTransport) Describe() string {
	return fmt.Sprintf("File output (%s)", t.path)
}

func (t *FileTransport) Open() error {
	if t.f != nil {
		return nil
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	t.f = f
	return nil
}

func (t *FileTransport) Write(text string) error {
	if t.f == nil {
		if err := t.Open(); err != nil {
			return err
		}
	}
	if _, err := t.f.WriteString(text + "\n"); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// Cut writes a blank separator; files have no paper to cut.
func (t *FileTransport) Cut() error {
	if t.f == nil {
		return fmt.Errorf("file transport not open")
	}
	_, err := t.f.WriteString("\n\n")
	return err
}

func (t *FileTransport) Close() error {
	if t.f == nil {
		return nil
	}
	f := t.f
	t.f = nil
	return f.Close()
}

// DiscardTransport swallows everything. Used when even file output is
// disabled; keeps the pipeline running with zero delivery.
type DiscardTransport struct{}

// NewDiscard creates a discard sink.
func NewDiscard() *DiscardTransport { return &DiscardTransport{} }

func (t *DiscardTransport) Kind() secondary.TransportKind { return secondary.KindDiscard }
func (t *DiscardTransport) Describe() string              { return "No printer" }
func (t *DiscardTransport) Open() error                   { return nil }
func (t *DiscardTransport) Write(text string) error       { return nil }
func (t *DiscardTransport) Cut() error                    { return nil }
func (t *DiscardTransport) Close() error                  { return nil }
