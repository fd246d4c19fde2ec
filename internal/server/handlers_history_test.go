package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"carecompass/backend/internal/analysis"
)

func TestSaveHistoryUsesTokenSubject(t *testing.T) {
	h := newTestHarness(t)
	userID := testID()
	token := signToken(t, userID, nil)

	rec := performRequest(t, h.router, http.MethodPost, "/api/history", token, map[string]any{
		"query": "fever and chills",
		"result": map[string]any{
			"detected_condition": "influenza",
			"urgency":            "moderate",
			"remedies":           []string{"rest"},
		},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(h.store.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(h.store.inserted))
	}
	saved := h.store.inserted[0]
	if saved.UserID != userID {
		t.Fatalf("expected user id from token, got %q", saved.UserID)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", saved)
	}
	if saved.InputKind != string(analysis.KindSymptom) {
		t.Fatalf("expected default input kind, got %q", saved.InputKind)
	}
	if saved.DetectedCondition != "influenza" || saved.Urgency != "moderate" {
		t.Fatalf("expected denormalized result fields, got %+v", saved)
	}

	body := decodeJSONMap(t, rec)
	if body["user_id"] != userID {
		t.Fatalf("expected response user_id, got %v", body["user_id"])
	}
}

func TestSaveHistoryRejectsForeignUserID(t *testing.T) {
	h := newTestHarness(t)
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodPost, "/api/history", token, map[string]any{
		"user_id": testID(),
		"query":   "fever",
	}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(h.store.events) != 0 {
		t.Fatalf("expected no store call, got %v", h.store.events)
	}
}

func TestSaveHistoryRequiresQuery(t *testing.T) {
	h := newTestHarness(t)
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodPost, "/api/history", token, map[string]any{"query": ""}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSaveHistoryStoreFailureIs500(t *testing.T) {
	h := newTestHarness(t)
	h.store.insertErr = &upstreamError{Service: "storage", Status: http.StatusServiceUnavailable}
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodPost, "/api/history", token, map[string]any{"query": "fever"}, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if detail := responseDetail(t, rec); detail != "Failed to save history" {
		t.Fatalf("unexpected detail %q", detail)
	}
}

func TestListHistory(t *testing.T) {
	h := newTestHarness(t)
	userID := testID()
	h.store.records = []HistoryRecord{
		{ID: "h2", UserID: userID, Query: "cough", CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "h1", UserID: userID, Query: "fever", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	token := signToken(t, userID, nil)

	rec := performRequest(t, h.router, http.MethodGet, "/api/history", token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	history, ok := decodeJSONMap(t, rec)["history"].([]any)
	if !ok || len(history) != 2 {
		t.Fatalf("expected two records, got %v", history)
	}
	if h.store.listLimits[0] != defaultHistoryLimit {
		t.Fatalf("expected default limit, got %d", h.store.listLimits[0])
	}
	if h.store.events[0] != "list_history:"+userID {
		t.Fatalf("expected list scoped to caller, got %v", h.store.events)
	}

	rec = performRequest(t, h.router, http.MethodGet, "/api/history?limit=5", token, nil, nil)
	if rec.Code != http.StatusOK || h.store.listLimits[1] != 5 {
		t.Fatalf("expected limit 5 to pass through, got %d %v", rec.Code, h.store.listLimits)
	}
}

func TestListHistoryEmptyIsArray(t *testing.T) {
	h := newTestHarness(t)
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodGet, "/api/history", token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"history":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestListHistoryValidation(t *testing.T) {
	h := newTestHarness(t)
	token := signToken(t, testID(), nil)

	for _, path := range []string{"/api/history?limit=0", "/api/history?limit=101", "/api/history?limit=abc"} {
		rec := performRequest(t, h.router, http.MethodGet, path, token, nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
	rec := performRequest(t, h.router, http.MethodGet, "/api/history?user_id="+testID(), token, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign user_id, got %d", rec.Code)
	}
	if len(h.store.events) != 0 {
		t.Fatalf("expected no store calls, got %v", h.store.events)
	}
}

func TestListHistoryStoreFailure(t *testing.T) {
	h := newTestHarness(t)
	h.store.listErr = errors.New("connection reset")
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodGet, "/api/history", token, nil, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestExportHistoryXLSX(t *testing.T) {
	h := newTestHarness(t)
	userID := testID()
	h.store.records = []HistoryRecord{{
		ID:                "h1",
		UserID:            userID,
		Query:             "fever and chills",
		InputKind:         "symptom",
		DetectedCondition: "influenza",
		Urgency:           "moderate",
		Result: analysis.AnalysisResult{
			SuggestedDoctor: "general practitioner",
			Remedies:        []string{"rest", "fluids"},
		},
		CreatedAt: time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
	}}
	token := signToken(t, userID, nil)

	rec := performRequest(t, h.router, http.MethodGet, "/api/history/export.xlsx", token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "carecompass_history_") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if h.store.listLimits[0] != exportHistoryLimit {
		t.Fatalf("expected export limit, got %d", h.store.listLimits[0])
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(historySheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][3] != "query" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "2026-03-01T08:30:00Z" || rows[1][3] != "fever and chills" || rows[1][8] != "rest, fluids" {
		t.Fatalf("unexpected data row %v", rows[1])
	}
}
