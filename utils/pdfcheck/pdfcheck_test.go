package pdfcheck

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateBytesRejectsNonPDF(t *testing.T) {
	result, err := ValidateBytes([]byte("just some text, definitely not a pdf"), InvitationLimits)
	if err != nil {
		t.Fatalf("ValidateBytes: %v", err)
	}
	if result.Valid {
		t.Error("plain text accepted as a PDF")
	}
	if !strings.Contains(result.Error, "PDF header") {
		t.Errorf("unexpected error message: %s", result.Error)
	}
}

func TestValidateBytesRejectsOversize(t *testing.T) {
	big := bytes.Repeat([]byte("a"), (InvitationLimits.MaxFileSizeMB+1)*1024*1024)

	result, err := ValidateBytes(big, InvitationLimits)
	if err != nil {
		t.Fatalf("ValidateBytes: %v", err)
	}
	if result.Valid {
		t.Error("oversize content accepted")
	}
	if !strings.Contains(result.Error, "exceeds maximum") {
		t.Errorf("unexpected error message: %s", result.Error)
	}
}

func TestValidateBytesRejectsTruncatedPDF(t *testing.T) {
	// Correct magic bytes but no usable structure behind them
	result, err := ValidateBytes([]byte("%PDF-1.7\nbroken"), InvitationLimits)
	if err != nil {
		t.Fatalf("ValidateBytes: %v", err)
	}
	if result.Valid {
		t.Error("truncated PDF accepted")
	}
}
