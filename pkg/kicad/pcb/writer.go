package pcb

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/hierpcb/pkg/kicad/sexp/kicadsexp"
)

// Write serializes the board in KiCad's file layout.
func (b *Board) Write(w io.Writer) error {
	return kicadsexp.Write(w, b.root)
}

// Save writes the board back to the file it was loaded from.
func (b *Board) Save() error {
	if b.path == "" {
		return fmt.Errorf("board has no file path")
	}
	return b.SaveAs(b.path)
}

// SaveAs writes the board to filename. The file is replaced atomically so
// a failed write never leaves a truncated board behind.
func (b *Board) SaveAs(filename string) error {
	var buf bytes.Buffer
	if err := b.Write(&buf); err != nil {
		return fmt.Errorf("failed to serialize board: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".hierpcb-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write board: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}
