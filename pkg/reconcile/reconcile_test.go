package reconcile

import (
	"testing"

	"cardwatch/pkg/models"
)

func account(issuer, product, last4 string, balance float64) models.Account {
	a := models.Account{
		Issuer:  issuer,
		Product: product,
		Balance: balance,
		Kind:    models.KindCreditCard,
	}
	if last4 != "" {
		a.Last4 = &last4
	}
	return a
}

func TestMergeIntoEmpty(t *testing.T) {
	parsed := []models.Account{
		account("Capital One", "SAVOR", "6958", 100),
		account("Capital One", "QUICKSILVER", "1069", 200),
	}

	merged, report := Merge(nil, parsed)
	if len(merged) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(merged))
	}
	for i := range parsed {
		if merged[i].Key() != parsed[i].Key() {
			t.Errorf("order not preserved at %d: %+v", i, merged[i])
		}
	}
	if report.AddedCount() != 2 || report.UpdatedCount() != 0 {
		t.Errorf("report = %d added / %d updated, want 2/0", report.AddedCount(), report.UpdatedCount())
	}
}

func TestMergeEmptyParse(t *testing.T) {
	stored := []models.Account{
		account("Apple", "Apple Card", "", 50),
		account("Capital One", "SAVOR", "6958", 100),
	}

	merged, report := Merge(stored, nil)
	if len(merged) != 2 {
		t.Fatalf("empty ingestion must leave stored accounts untouched, got %d", len(merged))
	}
	for i := range stored {
		if merged[i] != stored[i] {
			t.Errorf("account %d changed: %+v", i, merged[i])
		}
	}
	if len(report.Items) != 0 {
		t.Errorf("expected empty report, got %+v", report.Items)
	}
}

func TestMergeDisjointKeys(t *testing.T) {
	stored := []models.Account{
		account("Apple", "Apple Card", "", 50),
	}
	parsed := []models.Account{
		account("Capital One", "SAVOR", "6958", 100),
		account("Capital One", "QUICKSILVER", "1069", 200),
	}

	merged, report := Merge(stored, parsed)
	if len(merged) != 3 {
		t.Fatalf("expected stored + parsed = 3, got %d", len(merged))
	}
	if merged[0].Issuer != "Apple" {
		t.Errorf("stored account should keep position 0, got %+v", merged[0])
	}
	if merged[1].Product != "SAVOR" || merged[2].Product != "QUICKSILVER" {
		t.Errorf("parsed accounts should append in parse order: %+v", merged[1:])
	}
	if report.AddedCount() != 2 {
		t.Errorf("added = %d, want 2", report.AddedCount())
	}
}

func TestMergeUpdateInPlace(t *testing.T) {
	stored := []models.Account{
		account("Apple", "Apple Card", "", 50),
		account("Capital One", "SAVOR", "6958", 100),
		account("Capital One", "QUICKSILVER", "1069", 200),
	}
	parsed := []models.Account{
		account("Capital One", "SAVOR", "6958", 999),
	}

	merged, report := Merge(stored, parsed)
	if len(merged) != 3 {
		t.Fatalf("matching key must not grow the list, got %d", len(merged))
	}
	if merged[1].Balance != 999 {
		t.Errorf("updated account should sit at its original slot, got %+v", merged[1])
	}
	if merged[0].Balance != 50 || merged[2].Balance != 200 {
		t.Errorf("unrelated accounts changed: %+v", merged)
	}
	if report.UpdatedCount() != 1 || report.AddedCount() != 0 {
		t.Errorf("report = %d updated / %d added, want 1/0", report.UpdatedCount(), report.AddedCount())
	}
}

func TestMergeCrossFormatPreservation(t *testing.T) {
	// An Apple ingestion must never remove Capital One accounts
	stored := []models.Account{
		account("Capital One", "SAVOR", "6958", 100),
	}
	parsed := []models.Account{
		account("Apple", "Apple Card", "", 75),
	}

	merged, _ := Merge(stored, parsed)
	if len(merged) != 2 {
		t.Fatalf("expected both issuers present, got %+v", merged)
	}
}

func TestMergeCollapsesDuplicateParsedKeys(t *testing.T) {
	parsed := []models.Account{
		account("Capital One", "SAVOR", "6958", 100),
		account("Capital One", "SAVOR", "6958", 120),
	}

	merged, _ := Merge(nil, parsed)
	if len(merged) != 1 {
		t.Fatalf("duplicate parsed keys should collapse, got %d", len(merged))
	}
	if merged[0].Balance != 120 {
		t.Errorf("later duplicate should win, got %+v", merged[0])
	}
}

func TestKeyDistinguishesKind(t *testing.T) {
	card := account("Apple", "Apple Card", "", 10)
	rewards := card
	rewards.Kind = models.KindRewards

	if card.Key() == rewards.Key() {
		t.Error("kind must be part of the identity key")
	}
}
