package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Errorf("VerifyPassword with right password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); err == nil {
		t.Error("VerifyPassword accepted the wrong password")
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("expected an error for a password under the minimum length")
	}
}

func TestIsPasswordValid(t *testing.T) {
	if IsPasswordValid("1234567") {
		t.Error("7 characters should be invalid")
	}
	if !IsPasswordValid("12345678") {
		t.Error("8 characters should be valid")
	}
}
