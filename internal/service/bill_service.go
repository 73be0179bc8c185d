package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"connectrpc.com/connect"

	"github.com/amrita-prog/Paynion-Project/internal/metrics"
	"github.com/amrita-prog/Paynion-Project/internal/ocr"
)

var (
	errEmptyUpload       = errors.New("bill file is empty")
	errUnsupportedUpload = errors.New("bill must be an image (png, jpg, webp, bmp, tiff) or a pdf")
)

var billExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
	".bmp": true, ".tif": true, ".tiff": true, ".pdf": true,
}

// BillParser extracts title and total from a bill on disk.
type BillParser interface {
	ParseFile(ctx context.Context, path string) ocr.ParsedBill
}

// BillService implements the Connect BillService.
type BillService struct {
	parser   BillParser
	maxBytes int64
}

var _ BillServiceHandler = (*BillService)(nil)

// NewBillService creates a BillService that rejects uploads over maxBytes.
func NewBillService(parser BillParser, maxBytes int64) *BillService {
	return &BillService{parser: parser, maxBytes: maxBytes}
}

// ParseBill stores the upload in a temporary file, runs OCR on it and removes the file.
// Unreadable bills are not RPC errors: the response reports Success=false with a message.
func (s *BillService) ParseBill(ctx context.Context, req *connect.Request[ParseBillRequest]) (*connect.Response[ParseBillResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ParseBill request received",
		"user_id", userID,
		"filename", req.Msg.Filename,
		"size", len(req.Msg.Content),
	)

	ext := strings.ToLower(filepath.Ext(req.Msg.Filename))
	switch {
	case len(req.Msg.Content) == 0:
		return nil, invalidArgument(errEmptyUpload)
	case !billExtensions[ext]:
		return nil, invalidArgument(errUnsupportedUpload)
	case s.maxBytes > 0 && int64(len(req.Msg.Content)) > s.maxBytes:
		return nil, connect.NewError(connect.CodeResourceExhausted,
			fmt.Errorf("bill is larger than %d bytes", s.maxBytes))
	}

	path, err := writeTemp(ext, req.Msg.Content)
	if err != nil {
		slog.Error("ParseBill failed to store upload", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove bill upload", "path", path, "error", err)
		}
	}()

	bill := s.parser.ParseFile(ctx, path)
	metrics.BillParses.WithLabelValues(string(bill.Outcome)).Inc()

	slog.Info("ParseBill finished", "outcome", bill.Outcome, "title", bill.Title)
	return connect.NewResponse(toParseBillResponse(bill)), nil
}

func writeTemp(ext string, content []byte) (string, error) {
	f, err := os.CreateTemp("", "bill-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), nil
}
