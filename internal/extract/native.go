package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// nativeText extracts the embedded text layer of a file without any
// rendering: PDFs via their content streams, plain text files as-is.
// Scanned PDFs typically succeed here but yield little or no text, which
// the caller treats as a miss and routes to OCR.
func (p *Pipeline) nativeText(src Source) (string, error) {
	switch {
	case isPDF(src):
		return pdfText(src.Data)
	case isPlainText(src):
		if !utf8.Valid(src.Data) {
			return "", fmt.Errorf("plain text file is not valid UTF-8")
		}
		return strings.TrimSpace(string(src.Data)), nil
	default:
		return "", fmt.Errorf("%w: no native text layer for %q", ErrUnsupported, src.MimeType)
	}
}

func isPDF(src Source) bool {
	if src.MimeType == "application/pdf" {
		return true
	}
	return bytes.HasPrefix(src.Data, []byte("%PDF-"))
}

func isPlainText(src Source) bool {
	return strings.HasPrefix(src.MimeType, "text/plain") ||
		strings.HasPrefix(src.MimeType, "text/markdown")
}

// pdfText reads the text layer of every page. A page whose content streams
// fail to parse is skipped rather than failing the whole document.
func pdfText(data []byte) (text string, err error) {
	// The parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text layer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text layer: %w", err)
	}

	return collapseWhitespace(buf.String()), nil
}
