package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LimitTable holds the statically known credit limits. The scraped screens
// never show the limit itself, so it is either looked up here by account
// suffix or derived from balance + available credit.
type LimitTable struct {
	Cards            map[string]float64
	AppleCardDefault float64
}

// DefaultLimits returns the built-in table.
func DefaultLimits() LimitTable {
	return LimitTable{
		Cards: map[string]float64{
			"6958": 5300,
			"1069": 5800,
		},
		AppleCardDefault: 2000,
	}
}

// ByLast4 looks up the limit for an account suffix.
func (t LimitTable) ByLast4(last4 string) (float64, bool) {
	limit, ok := t.Cards[last4]
	return limit, ok
}

type limitsFile struct {
	Cards            map[string]float64 `yaml:"cards"`
	AppleCardDefault float64            `yaml:"apple_card"`
}

// LoadLimits reads a limit table from a YAML file. Missing sections fall back
// to the built-in values.
func LoadLimits(path string) (LimitTable, error) {
	table := DefaultLimits()

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("failed to read limits file %s: %w", path, err)
	}

	var file limitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return table, fmt.Errorf("failed to parse limits file %s: %w", path, err)
	}

	if len(file.Cards) > 0 {
		table.Cards = file.Cards
	}
	if file.AppleCardDefault > 0 {
		table.AppleCardDefault = file.AppleCardDefault
	}
	return table, nil
}
