package parser

import (
	"regexp"
	"strings"

	"cardwatch/pkg/models"
)

var (
	cardBalanceRegex = regexp.MustCompile(`(?i)^card balance$`)
	availableRegex   = regexp.MustCompile(`(?i)available$`)
	paymentDueRegex  = regexp.MustCompile(`(?i)^payment due\s*`)
	dailyCashRegex   = regexp.MustCompile(`(?i)^daily cash$`)
)

// parseAppleCard handles the labeled single-card layout. The screen shows one
// card, so at most one credit card account comes out, optionally joined by a
// Daily Cash rewards pseudo-account.
//
// The three label rules are independent: the balance label's amount sits on
// the following line in most captures but can be embedded in the label line
// itself, the available line usually embeds its amount but some captures push
// it to the next line, and the payment due label keeps the rest of its own
// line verbatim. When the due label repeats, the last occurrence wins.
func (p *Parser) parseAppleCard(lines []string) []models.Account {
	var (
		balance   *float64
		available *float64
		rewards   *float64
		due       string
	)

	for i, line := range lines {
		next := lineAt(lines, i+1)

		if cardBalanceRegex.MatchString(line) {
			if amt, ok := extractMoney(next); ok {
				balance = floatPtr(amt)
			} else if amt, ok := extractMoney(line); ok {
				balance = floatPtr(amt)
			}
		}

		if availableRegex.MatchString(line) {
			if amt, ok := extractMoney(line); ok {
				available = floatPtr(amt)
			} else if amt, ok := extractMoney(next); ok {
				available = floatPtr(amt)
			}
		}

		if dailyCashRegex.MatchString(line) {
			if amt, ok := extractMoney(next); ok {
				rewards = floatPtr(amt)
			} else if amt, ok := extractMoney(line); ok {
				rewards = floatPtr(amt)
			}
		}

		if paymentDueRegex.MatchString(line) {
			due = strings.TrimSpace(paymentDueRegex.ReplaceAllString(line, ""))
		}
	}

	var accounts []models.Account

	if balance != nil {
		limit := p.limits.AppleCardDefault
		if available != nil {
			limit = *available + *balance
		}
		account := models.Account{
			Issuer:     "Apple",
			Product:    "Apple Card",
			Balance:    *balance,
			Limit:      floatPtr(limit),
			PaymentMet: due == "",
			Kind:       models.KindCreditCard,
		}
		account.Utilization = utilizationOf(account.Balance, account.Limit)
		if due != "" {
			account.DueDate = stringPtr(due)
		}
		accounts = append(accounts, account)
	}

	if rewards != nil {
		accounts = append(accounts, models.Account{
			Issuer:     "Apple",
			Product:    "Daily Cash",
			Balance:    *rewards,
			PaymentMet: true,
			Kind:       models.KindRewards,
		})
	}

	return accounts
}
