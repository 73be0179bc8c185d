package ocr

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText reads the embedded text layer of digitally generated bills (food delivery
// and utility e-bills). Scanned PDFs have no text layer and yield an empty string.
type PDFText struct {
	// MaxPages limits how many pages are read. Zero reads every page.
	MaxPages int
}

// Recognize implements Recognizer.
func (p PDFText) Recognize(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if p.MaxPages > 0 && pages > p.MaxPages {
		pages = p.MaxPages
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteByte('\n')
		}
	}

	if strings.TrimSpace(b.String()) != "" {
		return b.String(), nil
	}

	// Some generators only decode through the whole-document reader.
	return plainText(r)
}

type plainTextReader interface {
	GetPlainText() (io.Reader, error)
}

func plainText(r plainTextReader) (string, error) {
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return string(data), nil
}
