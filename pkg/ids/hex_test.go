package ids

import "testing"

func TestZeroXTransformer(t *testing.T) {
	tests := []struct {
		input   string
		zeroX   string
		noZeroX string
	}{
		{"0x1234", "0x1234", "1234"},
		{"1234", "0x1234", "1234"},
		{"0xABCDef", "0xABCDef", "ABCDef"},
		{"not-hex!", "not-hex!", "not-hex!"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ZeroX(tt.input); got != tt.zeroX {
				t.Errorf("ZeroX(%q) = %q, want %q", tt.input, got, tt.zeroX)
			}
			if got := NoZeroX(tt.input); got != tt.noZeroX {
				t.Errorf("NoZeroX(%q) = %q, want %q", tt.input, got, tt.noZeroX)
			}
		})
	}
}

func TestIsHex32(t *testing.T) {
	id := GenerateID()
	if !IsHex32(id.Hex()) {
		t.Errorf("IsHex32 should accept %s", id.Hex())
	}
	if !IsHex32(NoZeroX(id.Hex())) {
		t.Error("IsHex32 should accept unprefixed form")
	}
	if IsHex32("0x1234") {
		t.Error("IsHex32 should reject short values")
	}
}

func TestEqualHex(t *testing.T) {
	if !EqualHex("0xAAbb", "aabb") {
		t.Error("EqualHex should ignore prefix and case")
	}
	if EqualHex("0xaa", "0xbb") {
		t.Error("EqualHex should compare content")
	}
}

func TestDIDRoundTrip(t *testing.T) {
	did := GenerateDID()

	parsed, err := ParseDID(did.String())
	if err != nil {
		t.Fatalf("ParseDID(%q) failed: %v", did.String(), err)
	}
	if parsed.Hash() != did.Hash() {
		t.Error("round trip through textual form lost the identifier")
	}

	// Bare and 0x-prefixed hex forms parse to the same DID.
	fromBare, err := ParseDID(did.ID())
	if err != nil {
		t.Fatalf("ParseDID bare failed: %v", err)
	}
	fromPrefixed, err := ParseDID(ZeroX(did.ID()))
	if err != nil {
		t.Fatalf("ParseDID prefixed failed: %v", err)
	}
	if fromBare.Hash() != did.Hash() || fromPrefixed.Hash() != did.Hash() {
		t.Error("alternate hex forms must parse to the same DID")
	}
}

func TestParseDIDRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "did:aqua:xyz", "did:aqua:1234", "did:other:" + GenerateDID().ID()} {
		if _, err := ParseDID(input); err == nil {
			t.Errorf("ParseDID(%q) should fail", input)
		}
	}
}
