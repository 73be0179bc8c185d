package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Recognizer produces the text of a bill stored at path. An empty result is valid and
// means nothing could be read.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, path string) (string, error)

// Recognize implements Recognizer.
func (f RecognizerFunc) Recognize(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// TesseractConfig locates the tesseract binary and its language data.
type TesseractConfig struct {
	Binary      string // binary name or absolute path; "tesseract" when empty
	Lang        string // "eng" when empty
	TessdataDir string // optional --tessdata-dir
	PSM         int    // page segmentation mode; 0 leaves tesseract's default
}

// Tesseract recognizes images with the tesseract CLI.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
}

// NewTesseract returns a recognizer using cfg. A nil runner runs real commands.
func NewTesseract(cfg TesseractConfig, runner Runner) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

// Recognize runs `tesseract <path> stdout -l <lang>`.
func (t *Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", t.cfg.Lang}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 256))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

// ByExtension dispatches PDFs to one recognizer and everything else to another.
type ByExtension struct {
	Image Recognizer
	PDF   Recognizer
}

// Recognize implements Recognizer.
func (r ByExtension) Recognize(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if r.PDF == nil {
			return "", fmt.Errorf("pdf bills are not supported")
		}
		return r.PDF.Recognize(ctx, path)
	}
	return r.Image.Recognize(ctx, path)
}
