package extraction_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/innopdf/policy-agent/extraction"
)

type stubOCR struct {
	text   string
	err    error
	called bool
}

func (s *stubOCR) Recognize(ctx context.Context, data []byte, filename string) (string, error) {
	s.called = true
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

var _ extraction.OCR = (*stubOCR)(nil)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestExtractFallsBackToOCRForInvalidPDF(t *testing.T) {
	ocr := &stubOCR{text: "스캔된 약관 본문"}
	extractor := extraction.NewPDFExtractor(ocr, discardLogger())

	text, err := extractor.Extract(context.Background(), []byte("not a pdf"), "scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ocr.called {
		t.Fatal("expected OCR fallback")
	}
	if text != "스캔된 약관 본문" {
		t.Fatalf("expected OCR text, got %q", text)
	}
}

func TestExtractReturnsOCRError(t *testing.T) {
	ocrErr := errors.New("tesseract not installed")
	extractor := extraction.NewPDFExtractor(&stubOCR{err: ocrErr}, discardLogger())

	if _, err := extractor.Extract(context.Background(), []byte("not a pdf"), "scan.pdf"); !errors.Is(err, ocrErr) {
		t.Fatalf("expected OCR error, got %v", err)
	}
}

func TestExtractWithoutOCRReturnsReadError(t *testing.T) {
	extractor := extraction.NewPDFExtractor(nil, discardLogger())

	if _, err := extractor.Extract(context.Background(), []byte("not a pdf"), "scan.pdf"); err == nil {
		t.Fatal("expected error for unreadable pdf without OCR")
	}
}
