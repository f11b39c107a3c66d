package parser

import (
	"regexp"
	"strings"

	"cardwatch/pkg/models"
)

var (
	productRegex        = regexp.MustCompile(`(?i)\b(QUICKSILVER|SAVOR|VENTURE|SPARK)\b`)
	last4Regex          = regexp.MustCompile(`(\d{4})\b`)
	currentBalanceRegex = regexp.MustCompile(`(?i)current balance`)
	minimumDueRegex     = regexp.MustCompile(`(?i)^minimum\s+(-?\$[\d,]+(?:\.\d{2})?)\s+due\s+(.+)$`)
)

// balanceScanWindow bounds how far below a card header the balance pair may
// sit. The account list screen stacks a handful of summary rows per card;
// anything further down belongs to another card or to unrelated chrome.
const balanceScanWindow = 20

// parseCapitalOne handles the multi-card account list. Every line mentioning
// a known product name is a candidate header; headers that are never followed
// by a "Current balance" pair are product mentions in marketing copy or
// notifications and get dropped. Duplicate headers for the same card are left
// in; reconciliation collapses them by identity key.
func (p *Parser) parseCapitalOne(lines []string) []models.Account {
	var headers []int
	for i, line := range lines {
		if productRegex.MatchString(line) {
			headers = append(headers, i)
		}
	}

	var accounts []models.Account
	for h, idx := range headers {
		end := len(lines)
		if h+1 < len(headers) {
			end = headers[h+1]
		}

		header := lines[idx]
		product := strings.ToUpper(productRegex.FindString(header))
		if product == "" {
			product = "CARD"
		}

		last4 := findLast4(header, lineAt(lines, idx+1), lineAt(lines, idx+2))
		balance, found := p.findCurrentBalance(lines, idx)
		if !found {
			p.logger.Debug("skipping header without balance", "line", idx, "product", product)
			continue
		}

		due, minimum := scanPaymentFields(lines[idx:end])

		account := models.Account{
			Issuer:         "Capital One",
			Product:        product,
			Last4:          last4,
			Balance:        balance,
			DueDate:        due,
			MinimumPayment: minimum,
			Kind:           models.KindCreditCard,
		}
		if last4 != nil {
			if limit, ok := p.limits.ByLast4(*last4); ok {
				account.Limit = floatPtr(limit)
			}
		}
		account.Utilization = utilizationOf(account.Balance, account.Limit)
		if minimum != nil {
			account.PaymentMet = *minimum == 0
		} else {
			account.PaymentMet = due == nil
		}

		accounts = append(accounts, account)
	}

	return accounts
}

// findLast4 extracts the 4-digit account suffix, preferring the header line
// over the two lines below it.
func findLast4(candidates ...string) *string {
	for _, s := range candidates {
		if m := last4Regex.FindStringSubmatch(s); m != nil {
			return stringPtr(m[1])
		}
	}
	return nil
}

// findCurrentBalance looks below the header for the first amount line whose
// following line carries the "Current balance" label. The pairing matters:
// the screen shows several unlabeled amounts (rewards, pending charges)
// before the one that is actually the balance.
func (p *Parser) findCurrentBalance(lines []string, idx int) (float64, bool) {
	for j := idx; j < len(lines)-1 && j < idx+balanceScanWindow; j++ {
		amt, ok := extractMoney(lines[j])
		if ok && currentBalanceRegex.MatchString(lines[j+1]) {
			return amt, true
		}
	}
	return 0, false
}

// scanPaymentFields picks up the due date and minimum payment from a card's
// region. The plain "Payment due" label wins over the date embedded in a
// "Minimum $x due ..." line regardless of which appears first; within each
// rule the first occurrence is kept.
func scanPaymentFields(region []string) (due *string, minimum *float64) {
	var minimumDate *string

	for _, line := range region {
		if due == nil && paymentDueRegex.MatchString(line) {
			rest := strings.TrimSpace(paymentDueRegex.ReplaceAllString(line, ""))
			if rest != "" {
				due = stringPtr(rest)
			}
			continue
		}
		if m := minimumDueRegex.FindStringSubmatch(line); m != nil {
			if minimum == nil {
				if amt, ok := extractMoney(m[1]); ok {
					minimum = floatPtr(amt)
				}
			}
			if minimumDate == nil {
				minimumDate = stringPtr(strings.TrimSpace(m[2]))
			}
		}
	}

	if due == nil {
		due = minimumDate
	}
	return due, minimum
}
