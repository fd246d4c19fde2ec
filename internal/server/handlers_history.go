package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carecompass/backend/internal/analysis"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	exportHistoryLimit  = 1000
)

// saveHistory godoc
// @Summary Save an analysis result to the caller's history
// @Tags history
// @Accept json
// @Produce json
// @Param body body saveHistoryRequest true "History record"
// @Success 201 {object} HistoryRecord
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /api/history [post]
func (a *App) saveHistory(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req saveHistoryRequest
	if !mustJSON(c, &req) {
		return
	}
	if !sameUser(c, user, req.UserID) {
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(c, http.StatusBadRequest, "query is required")
		return
	}
	kind := strings.TrimSpace(req.InputKind)
	if kind == "" {
		kind = string(analysis.KindSymptom)
	}

	record := HistoryRecord{
		ID:                uuid.NewString(),
		UserID:            user.ID,
		Query:             query,
		InputKind:         kind,
		DetectedCondition: req.Result.DetectedCondition,
		Urgency:           req.Result.Urgency,
		Result:            req.Result,
		CreatedAt:         a.now().UTC(),
	}
	saved, err := a.store.InsertHistory(c.Request.Context(), record)
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to save history")
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// listHistory godoc
// @Summary List the caller's history, newest first
// @Tags history
// @Produce json
// @Param limit query int false "Maximum records (1-100)"
// @Success 200 {object} map[string][]HistoryRecord
// @Security BearerAuth
// @Router /api/history [get]
func (a *App) listHistory(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !sameUser(c, user, c.Query("user_id")) {
		return
	}
	limit, err := parseHistoryLimit(c.Query("limit"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := a.store.ListHistory(c.Request.Context(), user.ID, limit)
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to load history")
		return
	}
	if records == nil {
		records = []HistoryRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

// @Summary Download the caller's history as a spreadsheet
// @Tags history
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Router /api/history/export.xlsx [get]
func (a *App) exportHistoryXLSX(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	records, err := a.store.ListHistory(c.Request.Context(), user.ID, exportHistoryLimit)
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to load history")
		return
	}
	workbook, err := buildHistoryWorkbook(records)
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to build export")
		return
	}

	filename := fmt.Sprintf("carecompass_history_%s.xlsx", a.now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

func parseHistoryLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxHistoryLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxHistoryLimit)
	}
	return limit, nil
}

// sameUser rejects a caller-supplied user id that differs from the token subject.
func sameUser(c *gin.Context, user AuthUser, claimed string) bool {
	claimed = strings.TrimSpace(claimed)
	if claimed != "" && claimed != user.ID {
		writeError(c, http.StatusForbidden, "user_id does not match token")
		return false
	}
	return true
}
