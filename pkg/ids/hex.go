package ids

import (
	"regexp"
	"strings"
)

// The chain SDK and the wire format disagree on the presence of the 0x
// prefix; every boundary crossing goes through this one canonicalization pair.

var hexPattern = regexp.MustCompile(`^(0x)?([0-9a-fA-F]+)$`)

// ZeroX returns the input with a 0x prefix. Non-hex input is returned
// unchanged.
func ZeroX(input string) string {
	return zeroXTransformer(input, true)
}

// NoZeroX returns the input with any 0x prefix stripped. Non-hex input is
// returned unchanged.
func NoZeroX(input string) string {
	return zeroXTransformer(input, false)
}

func zeroXTransformer(input string, zeroOutput bool) string {
	match := hexPattern.FindStringSubmatch(input)
	if match == nil {
		return input
	}
	if zeroOutput {
		return "0x" + match[2]
	}
	return match[2]
}

// IsHex32 reports whether the input is a 32-byte hex string, with or without
// prefix.
func IsHex32(input string) bool {
	return len(NoZeroX(input)) == 64 && hexPattern.MatchString(input)
}

// EqualHex compares two hex strings ignoring prefix and case.
func EqualHex(a, b string) bool {
	return strings.EqualFold(NoZeroX(a), NoZeroX(b))
}
