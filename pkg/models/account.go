package models

import "time"

// Kind distinguishes real credit card accounts from reward-balance
// pseudo-accounts, which carry a balance but no limit or payment fields.
type Kind string

const (
	KindCreditCard Kind = "credit_card"
	KindRewards    Kind = "rewards"
)

// Account is a single normalized card account extracted from scraped text.
// Pointer fields are absent when the corresponding label was never located
// in the payload; that is expected for noisy OCR input, not an error.
type Account struct {
	Issuer         string   `json:"issuer"`
	Product        string   `json:"product"`
	Last4          *string  `json:"last4"`
	Balance        float64  `json:"balance"`
	Limit          *float64 `json:"limit"`
	Utilization    *float64 `json:"utilization"`
	DueDate        *string  `json:"dueDate"`
	MinimumPayment *float64 `json:"minimumPayment,omitempty"`
	PaymentMet     bool     `json:"paymentMet"`
	Kind           Kind     `json:"kind"`
}

// Key identifies a logical account across ingestions. Two accounts with the
// same key are the same account; a fresh parse supersedes the stored record.
type Key struct {
	Issuer  string
	Product string
	Last4   string
	Kind    Kind
}

func (a Account) Key() Key {
	last4 := ""
	if a.Last4 != nil {
		last4 = *a.Last4
	}
	return Key{Issuer: a.Issuer, Product: a.Product, Last4: last4, Kind: a.Kind}
}

// State is the full set of known accounts plus ingestion metadata. It is
// replaced atomically on every successful ingestion.
type State struct {
	Accounts       []Account  `json:"accounts"`
	LastIngestedAt *time.Time `json:"lastIngestedAt"`
	Source         string     `json:"source,omitempty"`
}

// NewState returns the empty state used before any ingestion has happened.
func NewState() State {
	return State{Accounts: []Account{}}
}

// Clone returns a copy whose account slice does not alias the receiver's.
func (s State) Clone() State {
	out := s
	out.Accounts = make([]Account, len(s.Accounts))
	copy(out.Accounts, s.Accounts)
	return out
}
