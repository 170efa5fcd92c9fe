package shader

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for decoded programs.
type Format uint8

const (
	FormatYAML Format = iota
	FormatMsgPack
)

func (f Format) String() string {
	if f == FormatMsgPack {
		return "msgpack"
	}
	return "yaml"
}

// ParseFormat parses a format name. "auto" is not accepted here.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mpk":
		return FormatMsgPack, nil
	}
	return 0, errors.Errorf("unknown program format %q", name)
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, errors.Errorf("%s: no file extension to infer program format", path)
	}
	return ParseFormat(ext)
}

// Decode reads a program in the given format.
func Decode(r io.Reader, format Format) (*Program, error) {
	var p Program
	switch format {
	case FormatMsgPack:
		if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
			return nil, errors.Wrap(err, "decode msgpack program")
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, errors.Wrap(err, "decode yaml program")
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Encode writes a program in the given format.
func Encode(w io.Writer, p *Program, format Format) error {
	switch format {
	case FormatMsgPack:
		return errors.Wrap(msgpack.NewEncoder(w).Encode(p), "encode msgpack program")
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return errors.Wrap(err, "encode yaml program")
		}
		return errors.Wrap(enc.Close(), "encode yaml program")
	}
}

// ReadFile decodes the program stored at path, inferring the format from
// its extension.
func ReadFile(path string) (*Program, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

// Validate checks the structural sanity of a decoded program.
func (p *Program) Validate() error {
	if p.Major < 1 || p.Major > 3 {
		return errors.Errorf("unsupported shader version %d.%d", p.Major, p.Minor)
	}
	if p.Type != ProgramVertex && p.Type != ProgramPixel {
		return errors.Errorf("unsupported program type %d", p.Type)
	}
	for i := range p.Instructions {
		inst := &p.Instructions[i]
		if inst.Dest == nil && inst.Opcode.HasDestination() && !optionalDestination(inst.Opcode) {
			return errors.Errorf("instruction %d (%s): missing destination operand", i, inst.Opcode)
		}
	}
	return nil
}

// optionalDestination lists opcodes that are valid without a destination.
func optionalDestination(op Opcode) bool {
	switch op {
	case OpTexKill, OpNop, OpComment, OpPhase, OpEnd:
		return true
	}
	return false
}
