package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestBookAppointment(t *testing.T) {
	h := newTestHarness(t)
	userID := testID()
	token := signToken(t, userID, nil)

	rec := performRequest(t, h.router, http.MethodPost, "/appointments", token, map[string]any{
		"name":   "Jane Doe",
		"doctor": "Dr. Smith",
		"date":   "2026-11-02T10:00:00Z",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeJSONMap(t, rec)["status"]; got != "Appointment booked" {
		t.Fatalf("unexpected status %v", got)
	}
	if len(h.pool.execs) != 1 {
		t.Fatalf("expected one insert, got %d", len(h.pool.execs))
	}
	call := h.pool.execs[0]
	if !strings.Contains(call.sql, "INSERT INTO appointments") {
		t.Fatalf("unexpected SQL %q", call.sql)
	}
	if call.args[0] != userID || call.args[1] != "Jane Doe" || call.args[2] != "Dr. Smith" {
		t.Fatalf("unexpected args %v", call.args)
	}
}

func TestBookAppointmentRequiresFields(t *testing.T) {
	h := newTestHarness(t)
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodPost, "/appointments", token, map[string]any{"name": "Jane"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if detail := responseDetail(t, rec); detail != "Missing name, doctor or date" {
		t.Fatalf("unexpected detail %q", detail)
	}
	if h.pool.execCount() != 0 {
		t.Fatalf("expected no database call")
	}
}

func TestBookAppointmentWithoutDatabase(t *testing.T) {
	h := newTestHarness(t, withoutDatabase())
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodPost, "/appointments", token, map[string]any{
		"name": "Jane", "doctor": "Dr. Smith", "date": "2026-11-02",
	}, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if detail := responseDetail(t, rec); detail != "Failed to book appointment" {
		t.Fatalf("unexpected detail %q", detail)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	h := newTestHarness(t)
	userID := testID()
	token := signToken(t, userID, nil)

	rec := performRequest(t, h.router, http.MethodPost, "/delete-account", token, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(h.pool.execs) != 2 {
		t.Fatalf("expected two relational deletes, got %d", len(h.pool.execs))
	}
	if !strings.Contains(h.pool.execs[0].sql, "medications") || !strings.Contains(h.pool.execs[1].sql, "appointments") {
		t.Fatalf("unexpected delete order %+v", h.pool.execs)
	}
	want := []string{"delete_history:" + userID, "delete_user:" + userID}
	if len(h.store.events) != len(want) || h.store.events[0] != want[0] || h.store.events[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, h.store.events)
	}
}

func TestDeleteAccountRejectsForeignUser(t *testing.T) {
	h := newTestHarness(t)
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodPost, "/delete-account", token, map[string]any{"user_id": testID()}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if h.upstreamCalls() != 0 {
		t.Fatalf("expected no collaborator calls")
	}
}

func TestDeleteAccountStopsOnFailure(t *testing.T) {
	h := newTestHarness(t)
	h.store.deleteErr = &upstreamError{Service: "storage", Status: http.StatusInternalServerError}
	userID := testID()
	token := signToken(t, userID, nil)

	rec := performRequest(t, h.router, http.MethodPost, "/delete-account", token, map[string]any{"user_id": userID}, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	for _, event := range h.store.events {
		if strings.HasPrefix(event, "delete_user:") {
			t.Fatalf("auth user must not be deleted after a failed history delete")
		}
	}
}

func TestDeleteAccountWithoutDatabase(t *testing.T) {
	h := newTestHarness(t, withoutDatabase())
	token := signToken(t, testID(), nil)

	rec := performRequest(t, h.router, http.MethodPost, "/delete-account", token, nil, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(h.store.events) != 0 {
		t.Fatalf("expected no storage calls, got %v", h.store.events)
	}
}

func TestRequestPasswordResetIsPublic(t *testing.T) {
	h := newTestHarness(t)

	rec := performRequest(t, h.router, http.MethodPost, "/request-password-reset", "", map[string]any{
		"email": "  Jane@Example.com ",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(h.store.resetEmails) != 1 || h.store.resetEmails[0] != "jane@example.com" {
		t.Fatalf("unexpected reset emails %v", h.store.resetEmails)
	}

	rec = performRequest(t, h.router, http.MethodPost, "/request-password-reset", "", map[string]any{"email": "not-an-email"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", rec.Code)
	}
}

func TestRequestPasswordResetUpstreamFailure(t *testing.T) {
	h := newTestHarness(t)
	h.store.resetErr = errors.New("dial tcp: i/o timeout")

	rec := performRequest(t, h.router, http.MethodPost, "/request-password-reset", "", map[string]any{"email": "jane@example.com"}, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestVerifyPasswordReset(t *testing.T) {
	h := newTestHarness(t)
	payload := map[string]any{"email": "jane@example.com", "code": "123456", "new_password": "correct-horse"}

	rec := performRequest(t, h.router, http.MethodPost, "/verify-password-reset", "", payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	h.store.verifyErr = &upstreamError{Service: "auth", Status: http.StatusForbidden, Body: "token expired"}
	rec = performRequest(t, h.router, http.MethodPost, "/verify-password-reset", "", payload, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rejected code, got %d", rec.Code)
	}
	if detail := responseDetail(t, rec); detail != "Invalid or expired reset code" {
		t.Fatalf("unexpected detail %q", detail)
	}

	h.store.verifyErr = &upstreamError{Service: "auth", Status: http.StatusBadGateway}
	rec = performRequest(t, h.router, http.MethodPost, "/verify-password-reset", "", payload, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for upstream failure, got %d", rec.Code)
	}
}

func TestVerifyPasswordResetValidation(t *testing.T) {
	h := newTestHarness(t)
	cases := []map[string]any{
		{"email": "jane@example.com", "code": "", "new_password": "correct-horse"},
		{"email": "jane@example.com", "code": "123456", "new_password": "short"},
		{"email": "", "code": "123456", "new_password": "correct-horse"},
	}
	for _, payload := range cases {
		rec := performRequest(t, h.router, http.MethodPost, "/verify-password-reset", "", payload, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d", payload, rec.Code)
		}
	}
	if len(h.store.events) != 0 {
		t.Fatalf("expected no auth calls, got %v", h.store.events)
	}
}
