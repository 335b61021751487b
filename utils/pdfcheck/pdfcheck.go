package pdfcheck

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Limits defines the validation bounds for an uploaded PDF.
type Limits struct {
	MaxFileSizeMB int
	MaxPages      int
	DocumentName  string // for error messages
}

// InvitationLimits bounds the mandatory duty-request invitation document.
var InvitationLimits = Limits{
	MaxFileSizeMB: 10,
	MaxPages:      20,
	DocumentName:  "invitation",
}

// SupportingDocLimits bounds permission letters, travel proofs and other
// additional documents.
var SupportingDocLimits = Limits{
	MaxFileSizeMB: 10,
	MaxPages:      50,
	DocumentName:  "supporting document",
}

// Result contains the outcome of a PDF validation.
type Result struct {
	Valid     bool
	PageCount int
	FileSize  int64
	Error     string
}

// ValidateFile validates an uploaded PDF against the given limits.
func ValidateFile(file *multipart.FileHeader, limits Limits) (*Result, error) {
	result := &Result{FileSize: file.Size}

	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result, nil
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		result.Error = "Only PDF files are supported"
		return result, nil
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return validateContent(content, limits, result)
}

// ValidateBytes validates PDF content bytes against the given limits.
func ValidateBytes(content []byte, limits Limits) (*Result, error) {
	result := &Result{FileSize: int64(len(content))}

	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if result.FileSize > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result, nil
	}

	return validateContent(content, limits, result)
}

func validateContent(content []byte, limits Limits, result *Result) (*Result, error) {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		result.Error = "Invalid PDF file: missing PDF header"
		return result, nil
	}

	pageCount, err := pageCount(content)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to read PDF: %v", err)
		return result, nil
	}
	result.PageCount = pageCount

	if pageCount == 0 {
		result.Error = "PDF has no pages"
		return result, nil
	}
	if pageCount > limits.MaxPages {
		result.Error = fmt.Sprintf("PDF has %d pages, which exceeds the maximum of %d pages for the %s",
			pageCount, limits.MaxPages, limits.DocumentName)
		return result, nil
	}

	result.Valid = true
	return result, nil
}

func pageCount(content []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
