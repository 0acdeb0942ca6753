package frame

import (
	"fmt"
	"strings"
)

// CFA identifies the 2x2 repeating arrangement of the raw mosaic,
// named by reading the top-left 2x2 block row by row
type CFA int

const (
	// RGGB has red at (0,0)
	RGGB CFA = iota
	// GRBG has red at (1,0)
	GRBG
	// GBRG has red at (0,1)
	GBRG
	// BGGR has red at (1,1)
	BGGR
)

var cfaNames = [...]string{"RGGB", "GRBG", "GBRG", "BGGR"}

func (c CFA) String() string {
	if c < 0 || int(c) >= len(cfaNames) {
		return fmt.Sprintf("CFA(%d)", int(c))
	}
	return cfaNames[c]
}

// ParseCFA converts a case-insensitive pattern name such as "rggb" to a CFA
func ParseCFA(s string) (CFA, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range cfaNames {
		if n == s {
			return CFA(i), nil
		}
	}
	return RGGB, fmt.Errorf("unknown CFA pattern %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (c CFA) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *CFA) UnmarshalText(b []byte) error {
	v, err := ParseCFA(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Role is the color a raw pixel records.  The two greens are distinct
// because they sit on red and blue rows and may need different gains.
type Role int

const (
	// R is red
	R Role = iota
	// Gr is green on a red row
	Gr
	// Gb is green on a blue row
	Gb
	// B is blue
	B
)

func (r Role) String() string {
	switch r {
	case R:
		return "R"
	case Gr:
		return "Gr"
	case Gb:
		return "Gb"
	case B:
		return "B"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// cfaLUT is indexed [pattern][x%2][y%2]
var cfaLUT = [4][2][2]Role{
	RGGB: {{R, Gb}, {Gr, B}},
	GRBG: {{Gr, B}, {R, Gb}},
	GBRG: {{Gb, R}, {B, Gr}},
	BGGR: {{B, Gr}, {Gb, R}},
}

// Role returns the color recorded at pixel (x, y) under this pattern
func (c CFA) Role(x, y int) Role {
	return cfaLUT[c][x&1][y&1]
}
