package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amrita-prog/Paynion-Project/pkg/money"
)

// Failure messages reported in ParsedBill.Message.
const (
	MsgNoText      = "Could not read text from image"
	MsgNoAmount    = "Unable to detect bill amount"
	msgErrorPrefix = "Error processing image: "
)

// Outcome labels a parse result for metrics.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeNoText   Outcome = "no_text"
	OutcomeNoAmount Outcome = "no_amount"
	OutcomeError    Outcome = "error"
)

// ParsedBill is the result of reading one bill. Callers must check Success before
// using Title or Amount.
type ParsedBill struct {
	Success bool
	Title   string
	Amount  *decimal.Decimal // rounded to two decimals; nil unless Success
	RawText string
	Message string
	Outcome Outcome
}

// Parser reads bills through a Recognizer and extracts title and total.
type Parser struct {
	recognizer Recognizer
	timeout    time.Duration
	logger     *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithTimeout bounds each recognizer call.
func WithTimeout(d time.Duration) ParserOption {
	return func(p *Parser) { p.timeout = d }
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) { p.logger = logger }
}

// NewParser returns a Parser backed by recognizer.
func NewParser(recognizer Recognizer, opts ...ParserOption) *Parser {
	p := &Parser{recognizer: recognizer, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile recognizes the bill stored at path and extracts its title and total.
// It never returns an error and never panics: every failure is reported in the
// result. The file is left in place for the caller to remove.
func (p *Parser) ParseFile(ctx context.Context, path string) (bill ParsedBill) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Bill parsing panicked", "path", path, "panic", r)
			bill = failed(fmt.Errorf("%v", r))
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.recognizer.Recognize(ctx, path)
	if err != nil {
		p.logger.Warn("Bill recognition failed", "path", path, "error", err)
		return failed(err)
	}
	return p.ParseText(raw)
}

// ParseText extracts title and total from already recognized text.
func (p *Parser) ParseText(raw string) (bill ParsedBill) {
	defer func() {
		if r := recover(); r != nil {
			bill = failed(fmt.Errorf("%v", r))
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return ParsedBill{Message: MsgNoText, Outcome: OutcomeNoText}
	}

	normalized := Normalize(raw)
	title := ExtractDescription(raw)
	amount := ExtractAmount(raw, normalized)
	if amount == nil {
		p.logger.Debug("No bill amount detected", "title", title)
		return ParsedBill{Message: MsgNoAmount, RawText: raw, Outcome: OutcomeNoAmount}
	}

	rounded := money.Round(*amount)
	return ParsedBill{
		Success: true,
		Title:   title,
		Amount:  &rounded,
		RawText: raw,
		Outcome: OutcomeSuccess,
	}
}

func failed(err error) ParsedBill {
	return ParsedBill{Message: msgErrorPrefix + err.Error(), Outcome: OutcomeError}
}
