package parser

import (
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"cardwatch/pkg/models"
)

// Format identifies which of the two recognized screen layouts a payload
// came from.
type Format string

const (
	FormatAppleCard  Format = "apple_card"
	FormatCapitalOne Format = "capital_one"
)

type Parser struct {
	logger *log.Logger
	limits LimitTable
}

// Option configures a Parser.
type Option func(*Parser)

// WithLimits overrides the built-in credit limit table.
func WithLimits(limits LimitTable) Option {
	return func(p *Parser) {
		p.limits = limits
	}
}

func New(logger *log.Logger, opts ...Option) *Parser {
	p := &Parser{
		logger: logger,
		limits: DefaultLimits(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DetectFormat classifies raw payload text. The Apple Card screen is the only
// one where the card network brand and the balance summary label co-occur, so
// anything else, including garbage, falls through to the Capital One parser.
func DetectFormat(text string) Format {
	lc := strings.ToLower(text)
	if strings.Contains(lc, "mastercard") && strings.Contains(lc, "card balance") {
		return FormatAppleCard
	}
	return FormatCapitalOne
}

// Parse converts raw scraped text into account records. A payload in which no
// account can be located yields an empty slice, not an error.
func (p *Parser) Parse(text string) []models.Account {
	accounts, _ := p.ParseWithFormat(text)
	return accounts
}

// ParseWithFormat additionally reports which layout was detected.
func (p *Parser) ParseWithFormat(text string) ([]models.Account, Format) {
	format := DetectFormat(text)
	lines := normalizeLines(text)
	p.logger.Debug("parsing payload", "format", format, "lines", len(lines))

	var accounts []models.Account
	switch format {
	case FormatAppleCard:
		accounts = p.parseAppleCard(lines)
	case FormatCapitalOne:
		accounts = p.parseCapitalOne(lines)
	}

	p.logger.Debug("parsed payload", "format", format, "accounts", len(accounts))
	return accounts, format
}

// utilizationOf computes balance/limit as a percentage rounded to two
// decimals. Nil when the limit is missing or zero.
func utilizationOf(balance float64, limit *float64) *float64 {
	if limit == nil || *limit == 0 {
		return nil
	}
	u := math.Round(balance / *limit * 100 * 100) / 100
	return &u
}

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }
