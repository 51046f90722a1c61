package extraction

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// OCR recognizes text in a scanned PDF payload.
type OCR interface {
	Recognize(ctx context.Context, data []byte, filename string) (string, error)
}

// CommandOCR renders PDF pages to images with pdftoppm and recognizes each
// page with tesseract. Both binaries must be on PATH.
type CommandOCR struct {
	Lang string
}

func NewCommandOCR(lang string) *CommandOCR {
	if lang == "" {
		lang = "kor"
	}
	return &CommandOCR{Lang: lang}
}

func (o *CommandOCR) Recognize(ctx context.Context, data []byte, filename string) (string, error) {
	tempDir, err := os.MkdirTemp("", "policy-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp pdf: %w", err)
	}

	render := exec.CommandContext(ctx, "pdftoppm", "-jpeg", "-r", "300", pdfPath, filepath.Join(tempDir, "page"))
	if out, err := render.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm %s: %w: %s", filename, err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(filepath.Join(tempDir, "page*.jpg"))
	if err != nil {
		return "", fmt.Errorf("list rendered pages: %w", err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("pdftoppm produced no pages for %s", filename)
	}
	sort.Strings(pages)

	var sb strings.Builder
	for _, page := range pages {
		recognize := exec.CommandContext(ctx, "tesseract", page, "stdout", "-l", o.Lang)
		out, err := recognize.Output()
		if err != nil {
			return "", fmt.Errorf("tesseract %s: %w", filepath.Base(page), err)
		}
		sb.Write(out)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

var _ OCR = (*CommandOCR)(nil)
