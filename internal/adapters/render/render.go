// Package render turns environment descriptors into activation artifacts.
package render

import (
	"encoding/json"
	"io"
	"strings"

	"go.trai.ch/devshell/internal/core/domain"
	"go.trai.ch/zerr"
)

// Format selects a renderer.
type Format string

const (
	// FormatShell renders a POSIX shell script.
	FormatShell Format = "shell"
	// FormatJSON renders the descriptor as JSON.
	FormatJSON Format = "json"
	// FormatNix renders a mkShell expression.
	FormatNix Format = "nix"
)

// Formats lists the supported formats.
var Formats = []Format{FormatShell, FormatJSON, FormatNix}

// ParseFormat parses a format name. The empty string selects FormatShell.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatShell:
		return FormatShell, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNix:
		return FormatNix, nil
	default:
		return "", zerr.With(domain.ErrInvalidFormat, "format", s)
	}
}

// Descriptor writes desc to w in the given format.
func Descriptor(w io.Writer, desc domain.EnvironmentDescriptor, format Format) error {
	var out string

	switch format {
	case FormatShell:
		out = Shell(desc)
	case FormatJSON:
		data, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			return zerr.Wrap(err, "failed to encode descriptor")
		}
		out = string(data) + "\n"
	case FormatNix:
		expr, err := Nix(desc)
		if err != nil {
			return err
		}
		out = expr
	default:
		return zerr.With(domain.ErrInvalidFormat, "format", string(format))
	}

	_, err := io.WriteString(w, out)
	return err
}

// Table writes the whole table as a JSON object keyed by platform.
func Table(w io.Writer, table domain.EnvironmentTable) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(table); err != nil {
		return zerr.Wrap(err, "failed to encode environment table")
	}
	return nil
}
