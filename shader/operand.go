package shader

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Swizzle selects a source component for each of the four destination lanes.
type Swizzle [4]uint8

// IdentitySwizzle reads every lane from itself.
var IdentitySwizzle = Swizzle{0, 1, 2, 3}

// ReplicateSwizzle returns a swizzle that reads component c in every lane.
func ReplicateSwizzle(c uint8) Swizzle { return Swizzle{c, c, c, c} }

// Component returns the source component read for destination lane i.
func (s Swizzle) Component(i int) int { return int(s[i&3]) }

// IsIdentity reports whether the swizzle is .xyzw.
func (s Swizzle) IsIdentity() bool { return s == IdentitySwizzle }

// IsReplicate reports whether every lane reads the same component.
func (s Swizzle) IsReplicate() bool {
	return s[0] == s[1] && s[1] == s[2] && s[2] == s[3]
}

// String returns the four-letter form, e.g. "xyzw".
func (s Swizzle) String() string {
	var b [4]byte
	for i, c := range s {
		b[i] = ComponentName(int(c))
	}
	return string(b[:])
}

// MarshalText implements encoding.TextMarshaler.
func (s Swizzle) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Short forms repeat
// their last letter, so "x" is .xxxx and "xy" is .xyyy.
func (s *Swizzle) UnmarshalText(text []byte) error {
	t := strings.TrimPrefix(string(text), ".")
	if len(t) == 0 || len(t) > 4 {
		return fmt.Errorf("invalid swizzle %q", text)
	}
	for i := range 4 {
		ch := t[min(i, len(t)-1)]
		c, ok := componentIndex(ch)
		if !ok {
			return fmt.Errorf("invalid swizzle %q", text)
		}
		s[i] = c
	}
	return nil
}

func componentIndex(ch byte) (uint8, bool) {
	switch ch {
	case 'x', 'r':
		return 0, true
	case 'y', 'g':
		return 1, true
	case 'z', 'b':
		return 2, true
	case 'w', 'a':
		return 3, true
	}
	return 0, false
}

// WriteMask is the set of destination lanes an instruction writes.
type WriteMask uint8

const (
	MaskX    WriteMask = 1 << iota // .x
	MaskY                          // .y
	MaskZ                          // .z
	MaskW                          // .w
	MaskNone WriteMask = 0
	MaskAll            = MaskX | MaskY | MaskZ | MaskW
)

// Has reports whether lane i is written.
func (m WriteMask) Has(i int) bool { return m&(1<<uint(i)) != 0 }

// Components returns the written lane indices in order.
func (m WriteMask) Components() []int {
	out := make([]int, 0, 4)
	for i := range 4 {
		if m.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the number of written lanes.
func (m WriteMask) Count() int {
	n := 0
	for i := range 4 {
		if m.Has(i) {
			n++
		}
	}
	return n
}

// String returns the lane letters, e.g. "xyz".
func (m WriteMask) String() string {
	var b strings.Builder
	for _, c := range m.Components() {
		b.WriteByte(ComponentName(c))
	}
	return b.String()
}

// MaskFromComponents builds a mask from lane indices.
func MaskFromComponents(components ...int) WriteMask {
	var m WriteMask
	for _, c := range components {
		m |= 1 << uint(c&3)
	}
	return m
}

// MarshalText implements encoding.TextMarshaler.
func (m WriteMask) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *WriteMask) UnmarshalText(text []byte) error {
	t := strings.TrimPrefix(string(text), ".")
	var mask WriteMask
	for i := 0; i < len(t); i++ {
		c, ok := componentIndex(t[i])
		if !ok {
			return fmt.Errorf("invalid write mask %q", text)
		}
		mask |= 1 << c
	}
	*m = mask
	return nil
}

// SourceModifier transforms a source operand before use.
type SourceModifier uint8

const (
	ModNone SourceModifier = iota
	ModNegate
	ModBias
	ModBiasNegate
	ModSign
	ModSignNegate
	ModComplement
	ModX2
	ModX2Negate
	ModDivideZ
	ModDivideW
	ModAbs
	ModAbsNegate
	ModNot
)

var sourceModifierNames = map[SourceModifier]string{
	ModNone:       "",
	ModNegate:     "neg",
	ModBias:       "bias",
	ModBiasNegate: "biasneg",
	ModSign:       "sign",
	ModSignNegate: "signneg",
	ModComplement: "comp",
	ModX2:         "x2",
	ModX2Negate:   "x2neg",
	ModDivideZ:    "dz",
	ModDivideW:    "dw",
	ModAbs:        "abs",
	ModAbsNegate:  "absneg",
	ModNot:        "not",
}

func (m SourceModifier) String() string { return enumName(sourceModifierNames, m) }

// MarshalText implements encoding.TextMarshaler.
func (m SourceModifier) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SourceModifier) UnmarshalText(text []byte) error {
	v, err := parseEnum("source modifier", sourceModifierNames, string(text))
	*m = v
	return err
}

// ResultModifier is a bit set applied to an instruction result.
type ResultModifier uint8

const (
	ResultSaturate         ResultModifier = 1 << iota // _sat
	ResultPartialPrecision                            // _pp
	ResultCentroid                                    // _centroid
)

// Has reports whether all bits of f are set.
func (r ResultModifier) Has(f ResultModifier) bool { return r&f == f }

func (r ResultModifier) String() string {
	var parts []string
	if r.Has(ResultSaturate) {
		parts = append(parts, "sat")
	}
	if r.Has(ResultPartialPrecision) {
		parts = append(parts, "pp")
	}
	if r.Has(ResultCentroid) {
		parts = append(parts, "centroid")
	}
	return strings.Join(parts, ",")
}

// MarshalText implements encoding.TextMarshaler.
func (r ResultModifier) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. It accepts a comma
// separated list such as "sat,pp".
func (r *ResultModifier) UnmarshalText(text []byte) error {
	var v ResultModifier
	for _, part := range strings.Split(string(text), ",") {
		switch strings.TrimSpace(part) {
		case "":
		case "sat":
			v |= ResultSaturate
		case "pp":
			v |= ResultPartialPrecision
		case "centroid":
			v |= ResultCentroid
		default:
			return fmt.Errorf("unknown result modifier %q", part)
		}
	}
	*r = v
	return nil
}

// RelativeAddress is the index register lane of c[a0.x + n] style operands.
type RelativeAddress struct {
	Register  RegisterKey
	Component int
}

func (r RelativeAddress) String() string {
	return r.Register.Lane(r.Component).String()
}

// MarshalText implements encoding.TextMarshaler.
func (r RelativeAddress) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler for "a0.x" forms.
func (r *RelativeAddress) UnmarshalText(text []byte) error {
	reg, comp, ok := strings.Cut(string(text), ".")
	key, err := ParseRegister(reg)
	if err != nil {
		return err
	}
	r.Register = key
	r.Component = 0
	if ok {
		if len(comp) != 1 {
			return fmt.Errorf("invalid relative address %q", text)
		}
		c, valid := componentIndex(comp[0])
		if !valid {
			return fmt.Errorf("invalid relative address %q", text)
		}
		r.Component = int(c)
	}
	return nil
}

// SourceOperand is a register read with swizzle and modifier.
type SourceOperand struct {
	Register RegisterKey      `yaml:"reg" msgpack:"reg"`
	Swizzle  Swizzle          `yaml:"swizzle" msgpack:"swizzle"`
	Modifier SourceModifier   `yaml:"mod,omitempty" msgpack:"mod"`
	Relative *RelativeAddress `yaml:"rel,omitempty" msgpack:"rel,omitempty"`
}

// UnmarshalYAML defaults an omitted swizzle to .xyzw.
func (s *SourceOperand) UnmarshalYAML(value *yaml.Node) error {
	type plain SourceOperand
	p := plain{Swizzle: IdentitySwizzle}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = SourceOperand(p)
	return nil
}

// DestinationOperand is a register write with write mask and result modifier.
type DestinationOperand struct {
	Register RegisterKey    `yaml:"reg" msgpack:"reg"`
	Mask     WriteMask      `yaml:"mask" msgpack:"mask"`
	Result   ResultModifier `yaml:"result,omitempty" msgpack:"result"`
}

// UnmarshalYAML defaults an omitted write mask to .xyzw.
func (d *DestinationOperand) UnmarshalYAML(value *yaml.Node) error {
	type plain DestinationOperand
	p := plain{Mask: MaskAll}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = DestinationOperand(p)
	return nil
}
