// Package extraction turns PDF payloads into raw text. Digital PDFs are read
// directly; scanned documents fall back to OCR.
package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// minDirectTextLength is the threshold below which a PDF is treated as
// scanned and handed to OCR.
const minDirectTextLength = 100

// TextExtractor supplies raw document text given binary content and a
// filename.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// PDFExtractor extracts text from PDF payloads, using OCR when the embedded
// text layer is too small to be useful.
type PDFExtractor struct {
	ocr    OCR
	logger *log.Logger
}

func NewPDFExtractor(ocr OCR, logger *log.Logger) *PDFExtractor {
	if logger == nil {
		logger = log.Default()
	}
	return &PDFExtractor{ocr: ocr, logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	text, err := readPlainText(data)
	if err != nil {
		e.logger.Printf("direct pdf extraction failed for %s: %v", filename, err)
	} else if len(strings.TrimSpace(text)) > minDirectTextLength {
		return text, nil
	}

	if e.ocr == nil {
		if err != nil {
			return "", fmt.Errorf("extract pdf text: %w", err)
		}
		return text, nil
	}

	e.logger.Printf("falling back to OCR for %s", filename)
	ocrText, ocrErr := e.ocr.Recognize(ctx, data, filename)
	if ocrErr != nil {
		return "", fmt.Errorf("ocr fallback: %w", ocrErr)
	}
	return ocrText, nil
}

func readPlainText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, plain); err != nil {
		return "", fmt.Errorf("copy pdf text: %w", err)
	}

	return buf.String(), nil
}

var _ TextExtractor = (*PDFExtractor)(nil)
