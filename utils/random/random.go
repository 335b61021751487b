package random

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Alphabet for generated temporary passwords. Ambiguous glyphs (0/O, 1/l)
// are excluded because these credentials get read out over the phone.
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// TempPasswordLength is the length of generated teacher passwords.
const TempPasswordLength = 12

// TempPassword generates a random temporary password of n characters.
func TempPassword(n int) (string, error) {
	if n <= 0 {
		n = TempPasswordLength
	}
	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// OTPCode generates a 6-digit one-time code.
func OTPCode() (string, error) {
	var buf [4]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	n := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}
