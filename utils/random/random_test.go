package random

import (
	"strings"
	"testing"
)

func TestTempPassword(t *testing.T) {
	p, err := TempPassword(TempPasswordLength)
	if err != nil {
		t.Fatalf("TempPassword: %v", err)
	}
	if len(p) != TempPasswordLength {
		t.Errorf("length = %d, want %d", len(p), TempPasswordLength)
	}
	for _, r := range p {
		if !strings.ContainsRune(passwordAlphabet, r) {
			t.Errorf("character %q outside the alphabet", r)
		}
	}

	// Two draws colliding would mean the generator is broken
	q, err := TempPassword(TempPasswordLength)
	if err != nil {
		t.Fatalf("TempPassword: %v", err)
	}
	if p == q {
		t.Error("two generated passwords are identical")
	}
}

func TestOTPCode(t *testing.T) {
	code, err := OTPCode()
	if err != nil {
		t.Fatalf("OTPCode: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("length = %d, want 6", len(code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Errorf("character %q is not a digit", r)
		}
	}
}
