// Package fsmfile reads and writes Mealy machine descriptions as JSON and
// Graphviz DOT, and renders observation tables as PNG images.
package fsmfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/olstar/pkg/fsm"
)

// Format is a machine file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
)

// FormatOf guesses the format from a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".dot", ".gv":
		return FormatDOT, nil
	}
	return "", fmt.Errorf("unknown machine file format for %q (want .json or .dot)", path)
}

// Parse decodes a machine in the given format and validates it.
func Parse(data []byte, format Format) (*fsm.FSM, error) {
	var (
		f   *fsm.FSM
		err error
	)
	switch format {
	case FormatJSON:
		f, err = ParseJSON(data)
	case FormatDOT:
		f, err = ParseDOT(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadFile reads and validates a machine file. The format follows the
// extension.
func ReadFile(path string) (*fsm.FSM, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// Encode renders a machine in the given format.
func Encode(f *fsm.FSM, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := ToJSON(f, true)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatDOT:
		return []byte(GenerateDOT(f, f.Name)), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// WriteFile writes a machine file. The format follows the extension.
func WriteFile(path string, f *fsm.FSM) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
