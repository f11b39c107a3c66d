package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"cardwatch/pkg/models"
)

// minPayloadLen is the shortest text worth handing to the parser. Anything
// below it is a caller mistake, not an OCR capture.
const minPayloadLen = 5

// payloadFields are the JSON field names checked, in order, before falling
// back to the first sufficiently long string value in the document.
var payloadFields = []string{"text", "payload", "content", "ocr_text"}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	state := s.store.Snapshot()
	_ = s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":             true,
		"service":        "cardwatch",
		"lastIngestedAt": state.LastIngestedAt,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	text, err := extractPayload(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Missing text payload", err)
		return
	}

	id := uuid.NewString()
	accounts, format := s.parser.ParseWithFormat(text)
	if accounts == nil {
		accounts = []models.Account{}
	}
	state, report := s.store.Ingest(accounts, "ocr_payload")

	s.logger.Info("ingested payload",
		"id", id,
		"format", format,
		"parsed", len(accounts),
		"updated", report.UpdatedCount(),
		"added", report.AddedCount(),
		"total", len(state.Accounts))

	_ = s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"id":       id,
		"format":   format,
		"count":    len(accounts),
		"updated":  report.UpdatedCount(),
		"added":    report.AddedCount(),
		"accounts": accounts,
	})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	if !s.authOK(r) {
		s.respondError(w, r, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	state := s.store.Snapshot()
	_ = s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":             true,
		"accounts":       state.Accounts,
		"lastIngestedAt": state.LastIngestedAt,
		"source":         state.Source,
	})
}

// handleSummary serves the flattened widget view.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	if !s.authOK(r) {
		s.respondError(w, r, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	state := s.store.Snapshot()
	summaries := make([]models.Summary, len(state.Accounts))
	for i, account := range state.Accounts {
		summaries[i] = models.SummaryOf(account)
	}

	_ = s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":             true,
		"cards":          summaries,
		"lastIngestedAt": state.LastIngestedAt,
	})
}

// extractPayload pulls the raw text out of the request: a text body is used
// as-is, a JSON body is searched for a usable string field.
func extractPayload(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}

	text := string(body)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		text = payloadFromJSON(body)
	}

	if len(text) < minPayloadLen {
		return "", errPayloadTooShort
	}
	return text, nil
}

var errPayloadTooShort = errors.New("payload missing or too short")

// payloadFromJSON finds the text in a structured payload. The well-known
// field names are tried first; failing that, the first long-enough string
// value wins, checked in sorted key order so the choice is deterministic.
func payloadFromJSON(body []byte) string {
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}

	for _, field := range payloadFields {
		if v, ok := doc[field].(string); ok && v != "" {
			return v
		}
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := doc[k].(string); ok && len(v) >= minPayloadLen {
			return v
		}
	}
	return ""
}
