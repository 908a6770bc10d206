package config

import (
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateAddresses(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"valid lowercase", "0x1111111111111111111111111111111111111111", false},
		{"valid mixed case", "0xAbCd111111111111111111111111111111111111", false},
		{"missing prefix", "1111111111111111111111111111111111111111", true},
		{"too short", "0x1111", true},
		{"non hex", "0xzz11111111111111111111111111111111111111", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Keeper.Contracts.Token = tt.addr
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected error for address %q", tt.addr)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for address %q: %v", tt.addr, err)
			}
		})
	}
}

func TestValidateMissingEndpoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keeper.NodeURI = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing node uri")
	}
}

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	yaml := `
keeper:
  node_uri: "http://localhost:8545"
  bogus_field: true
`
	cfg := DefaultConfig()
	err := DecodeStrict(strings.NewReader(yaml), cfg)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	yaml := `
keeper:
  node_uri: "http://keeper.example:8545"
metadata:
  uri: "http://metadata.example:5000"
`
	cfg := DefaultConfig()
	if err := DecodeStrict(strings.NewReader(yaml), cfg); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Keeper.NodeURI != "http://keeper.example:8545" {
		t.Errorf("node uri not overridden: %s", cfg.Keeper.NodeURI)
	}
	if cfg.Metadata.URI != "http://metadata.example:5000" {
		t.Errorf("metadata uri not overridden: %s", cfg.Metadata.URI)
	}
	if cfg.Provider.URI != "http://localhost:8030" {
		t.Errorf("provider default lost: %s", cfg.Provider.URI)
	}
}
