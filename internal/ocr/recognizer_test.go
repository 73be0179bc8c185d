package ocr

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	name   string
	args   []string
	stdout string
	stderr string
	err    error
}

func (r *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	return []byte(r.stdout), []byte(r.stderr), r.err
}

func TestTesseractRecognize(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		runner := &stubRunner{stdout: "TOTAL 1921\n"}
		text, err := NewTesseract(TesseractConfig{}, runner).Recognize(ctx, "/tmp/bill.png")

		require.NoError(t, err)
		assert.Equal(t, "TOTAL 1921\n", text)
		assert.Equal(t, "tesseract", runner.name)
		assert.Equal(t, []string{"/tmp/bill.png", "stdout", "-l", "eng"}, runner.args)
	})

	t.Run("explicit configuration", func(t *testing.T) {
		runner := &stubRunner{}
		cfg := TesseractConfig{
			Binary:      "/usr/local/bin/tesseract",
			Lang:        "eng+hin",
			TessdataDir: "/opt/tessdata",
			PSM:         6,
		}
		_, err := NewTesseract(cfg, runner).Recognize(ctx, "bill.jpg")

		require.NoError(t, err)
		assert.Equal(t, "/usr/local/bin/tesseract", runner.name)
		assert.Equal(t, []string{"bill.jpg", "stdout", "-l", "eng+hin", "--tessdata-dir", "/opt/tessdata", "--psm", "6"}, runner.args)
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		runner := &stubRunner{stderr: "Error opening data file\n", err: errors.New("exit status 1")}
		_, err := NewTesseract(TesseractConfig{}, runner).Recognize(ctx, "bill.jpg")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "exit status 1")
		assert.Contains(t, err.Error(), "Error opening data file")
	})
}

func TestByExtension(t *testing.T) {
	ctx := context.Background()
	r := ByExtension{Image: staticText("image"), PDF: staticText("pdf")}

	text, err := r.Recognize(ctx, "receipt.PDF")
	require.NoError(t, err)
	assert.Equal(t, "pdf", text)

	text, err = r.Recognize(ctx, "receipt.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image", text)

	_, err = ByExtension{Image: staticText("image")}.Recognize(ctx, "receipt.pdf")
	assert.Error(t, err)
}

func TestPDFTextMissingFile(t *testing.T) {
	_, err := PDFText{}.Recognize(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

type stubPlainText struct {
	text string
	err  error
}

func (s stubPlainText) GetPlainText() (io.Reader, error) {
	if s.err != nil {
		return nil, s.err
	}
	return strings.NewReader(s.text), nil
}

func TestPlainText(t *testing.T) {
	text, err := plainText(stubPlainText{text: "Cafe\nTOTAL 120"})
	require.NoError(t, err)
	assert.Equal(t, "Cafe\nTOTAL 120", text)

	_, err = plainText(stubPlainText{err: errors.New("malformed stream")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed stream")
}
