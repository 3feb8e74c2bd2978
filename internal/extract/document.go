package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxUploadBytes bounds uploaded documents.
const MaxUploadBytes = 10 << 20

// IsPDF decides by content type first and falls back to the file extension.
func IsPDF(filename, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// DocumentText extracts the text of an uploaded file. PDFs go through the
// PDF reader; everything else is read as UTF-8 text.
func DocumentText(filename, contentType string, data []byte) (string, error) {
	if IsPDF(filename, contentType) {
		return pdfText(data)
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

func pdfText(data []byte) (text string, err error) {
	// the reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("open pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(b), nil
}
