// Package util contains misc internal utilities.
package util

import (
	"strings"
)

// Number is any built in integer or floating point type
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Clamp limits x to the closed interval [low, high]
func Clamp[T Number](x, low, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

// Abs returns the absolute value of x.  For signed integers the most
// negative value has no positive counterpart and is returned unchanged.
func Abs[T Number](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of a and b
func Min[T Number](a, b T) T {
	if b < a {
		return b
	}
	return a
}

// SplitCSV splits a comma separated list, trimming whitespace and
// dropping empty fields.  e.g., "depwl, dpc,,wbgain" => [depwl dpc wbgain]
func SplitCSV(s string) []string {
	chunks := strings.Split(s, ",")
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// AllElementsNumbers returns true if every rune of s is an ASCII digit or '.'
func AllElementsNumbers(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}
