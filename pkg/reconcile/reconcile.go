package reconcile

// Package reconcile merges a freshly parsed account list into the previously
// stored one. It is isolated from transport and persistence so the merge
// semantics stay unit-testable; the server and the CLI both consume it.

import (
	"cardwatch/pkg/models"
)

// Status indicates what a parsed account did to the stored list.
//
//   - Updated: replaced a stored account with the same identity key.
//   - Added:   no stored account had that key.
type Status int

const (
	Updated Status = iota
	Added
)

// Entry records the outcome for a single parsed account.
type Entry struct {
	Account models.Account
	Status  Status
}

// Report summarizes a merge for callers that want counts without diffing the
// lists themselves.
type Report struct {
	Items []Entry
}

// UpdatedCount returns how many parsed accounts replaced stored ones.
func (r *Report) UpdatedCount() int {
	return len(r.Items) - r.AddedCount()
}

// AddedCount returns how many parsed accounts were new.
func (r *Report) AddedCount() int {
	n := 0
	for _, e := range r.Items {
		if e.Status == Added {
			n++
		}
	}
	return n
}

// Merge combines stored and parsed accounts keyed by identity. Stored
// accounts keep their original positions; a parsed account with a matching
// key replaces the stored one in place, and unmatched parsed accounts are
// appended in parse order. Parsing one bank's screen therefore never drops
// the other bank's accounts, and an empty parse leaves everything untouched.
func Merge(stored, parsed []models.Account) ([]models.Account, *Report) {
	merged := make([]models.Account, len(stored))
	position := make(map[models.Key]int, len(stored))
	for i, account := range stored {
		merged[i] = account
		position[account.Key()] = i
	}

	report := &Report{Items: make([]Entry, 0, len(parsed))}
	for _, account := range parsed {
		key := account.Key()
		if i, ok := position[key]; ok {
			merged[i] = account
			report.Items = append(report.Items, Entry{Account: account, Status: Updated})
			continue
		}
		position[key] = len(merged)
		merged = append(merged, account)
		report.Items = append(report.Items, Entry{Account: account, Status: Added})
	}

	return merged, report
}
