package security

import (
	"testing"
)

func TestGenerateLoginCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateLoginCode()
		if err != nil {
			t.Fatalf("GenerateLoginCode() error: %v", err)
		}
		if len(code) != LoginCodeLength {
			t.Fatalf("code length = %d, want %d", len(code), LoginCodeLength)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
		seen[code] = true
	}

	// 20 draws from a million values colliding down to one would mean the
	// generator is broken.
	if len(seen) < 2 {
		t.Error("expected varied codes")
	}
}

func TestHashAndCheckLoginCode(t *testing.T) {
	hash, err := HashLoginCode("123456")
	if err != nil {
		t.Fatalf("HashLoginCode() error: %v", err)
	}
	if hash == "123456" {
		t.Fatal("expected code to be hashed")
	}

	if !CheckLoginCode("123456", hash) {
		t.Error("expected correct code to verify")
	}
	if CheckLoginCode("654321", hash) {
		t.Error("expected wrong code to fail")
	}
	if CheckLoginCode("", hash) {
		t.Error("expected empty code to fail")
	}
	if CheckLoginCode("123456", "not-a-hash") {
		t.Error("expected malformed hash to fail")
	}
}
