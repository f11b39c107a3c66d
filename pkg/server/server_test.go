package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"cardwatch/pkg/config"
	"cardwatch/pkg/parser"
	"cardwatch/pkg/store"
)

const capitalOneText = "SAVOR\n...6958\n$1,234.56\nCurrent balance"
const appleCardText = "Mastercard\nCard Balance\n$123.45\n$1,876.55 Available"

func newTestServer(t *testing.T, apiKey string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Port:    "0",
		APIKey:  apiKey,
		DataDir: t.TempDir(),
		Persist: false,
	}
	logger := log.New(io.Discard)
	st := store.New(cfg.DataFile(), false, logger)
	p := parser.New(logger)
	return New(cfg, logger, p, st).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, contentType, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON response for %s %s: %v (%s)", method, path, err, rec.Body.String())
	}
	return rec.Code, decoded
}

func TestIngestTextBody(t *testing.T) {
	h := newTestServer(t, "")

	status, resp := doJSON(t, h, http.MethodPost, "/ingest", "text/plain", capitalOneText)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", status, resp)
	}
	if resp["ok"] != true || resp["count"].(float64) != 1 {
		t.Errorf("unexpected ingest response: %v", resp)
	}
	if resp["format"] != "capital_one" {
		t.Errorf("format = %v, want capital_one", resp["format"])
	}
	if resp["id"] == "" {
		t.Error("expected an ingestion id")
	}

	status, resp = doJSON(t, h, http.MethodGet, "/balances", "", "")
	if status != http.StatusOK {
		t.Fatalf("balances status = %d", status)
	}
	accounts := resp["accounts"].([]interface{})
	if len(accounts) != 1 {
		t.Fatalf("expected 1 stored account, got %d", len(accounts))
	}
	if resp["lastIngestedAt"] == nil {
		t.Error("lastIngestedAt should be set after an ingestion")
	}
}

func TestIngestJSONPayloadField(t *testing.T) {
	h := newTestServer(t, "")

	body, _ := json.Marshal(map[string]string{"payload": capitalOneText})
	status, resp := doJSON(t, h, http.MethodPost, "/ingest", "application/json", string(body))
	if status != http.StatusOK || resp["count"].(float64) != 1 {
		t.Errorf("status = %d, resp = %v", status, resp)
	}
}

func TestIngestJSONFallbackField(t *testing.T) {
	h := newTestServer(t, "")

	// No well-known field; the first long-enough string value is used
	body, _ := json.Marshal(map[string]interface{}{
		"note": "hi",
		"dump": capitalOneText,
		"n":    42,
	})
	status, resp := doJSON(t, h, http.MethodPost, "/ingest", "application/json", string(body))
	if status != http.StatusOK || resp["count"].(float64) != 1 {
		t.Errorf("status = %d, resp = %v", status, resp)
	}
}

func TestIngestRejectsShortPayload(t *testing.T) {
	h := newTestServer(t, "")

	status, resp := doJSON(t, h, http.MethodPost, "/ingest", "text/plain", "hi")
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %v", status, resp)
	}
	if resp["error"] != "Missing text payload" {
		t.Errorf("error = %v", resp["error"])
	}

	// A rejected payload must not mutate state
	status, resp = doJSON(t, h, http.MethodGet, "/balances", "", "")
	if status != http.StatusOK || resp["lastIngestedAt"] != nil {
		t.Errorf("state mutated by rejected ingest: %v", resp)
	}
}

func TestIngestMergePreservesOtherIssuer(t *testing.T) {
	h := newTestServer(t, "")

	doJSON(t, h, http.MethodPost, "/ingest", "text/plain", capitalOneText)
	doJSON(t, h, http.MethodPost, "/ingest", "text/plain", appleCardText)

	_, resp := doJSON(t, h, http.MethodGet, "/balances", "", "")
	accounts := resp["accounts"].([]interface{})
	if len(accounts) != 2 {
		t.Fatalf("apple ingestion dropped capital one account: %v", accounts)
	}
}

func TestAuthGate(t *testing.T) {
	h := newTestServer(t, "s3cret")

	status, _ := doJSON(t, h, http.MethodGet, "/balances", "", "")
	if status != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", status)
	}

	status, _ = doJSON(t, h, http.MethodGet, "/balances?key=s3cret", "", "")
	if status != http.StatusOK {
		t.Errorf("query key: status = %d, want 200", status)
	}

	req := httptest.NewRequest(http.MethodGet, "/balances", nil)
	req.Header.Set("X-API-Key", "s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("header key: status = %d, want 200", rec.Code)
	}

	// Ingestion stays open; only reads are gated
	status, _ = doJSON(t, h, http.MethodPost, "/ingest", "text/plain", capitalOneText)
	if status != http.StatusOK {
		t.Errorf("ingest should not require the key, got %d", status)
	}
}

func TestSummaryView(t *testing.T) {
	h := newTestServer(t, "")

	doJSON(t, h, http.MethodPost, "/ingest", "text/plain", appleCardText)

	status, resp := doJSON(t, h, http.MethodGet, "/summary", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	cards := resp["cards"].([]interface{})
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	card := cards[0].(map[string]interface{})
	if card["displayName"] != "Apple Card" {
		t.Errorf("displayName = %v", card["displayName"])
	}
	if card["availableCredit"] != card["limit"] {
		t.Errorf("availableCredit should mirror limit: %v vs %v", card["availableCredit"], card["limit"])
	}
	if card["paymentMet"] != true {
		t.Errorf("no due date captured, paymentMet = %v", card["paymentMet"])
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, "s3cret")

	// Health is never gated
	status, resp := doJSON(t, h, http.MethodGet, "/health", "", "")
	if status != http.StatusOK || resp["ok"] != true {
		t.Errorf("health: status = %d, resp = %v", status, resp)
	}
}

func TestNotFound(t *testing.T) {
	h := newTestServer(t, "")

	status, resp := doJSON(t, h, http.MethodGet, "/nope", "", "")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if resp["endpoints"] == nil {
		t.Errorf("404 body should list endpoints: %v", resp)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, "")

	status, _ := doJSON(t, h, http.MethodGet, "/ingest", "", "")
	if status != http.StatusMethodNotAllowed {
		t.Errorf("GET /ingest status = %d, want 405", status)
	}
	status, _ = doJSON(t, h, http.MethodPost, "/balances", "", "")
	if status != http.StatusMethodNotAllowed {
		t.Errorf("POST /balances status = %d, want 405", status)
	}
}
