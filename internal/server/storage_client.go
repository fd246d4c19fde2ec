package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"carecompass/backend/internal/analysis"
	"carecompass/backend/internal/config"
)

type HistoryRecord struct {
	ID                string                  `json:"id"`
	UserID            string                  `json:"user_id"`
	Query             string                  `json:"query"`
	InputKind         string                  `json:"input_kind"`
	DetectedCondition string                  `json:"detected_condition"`
	Urgency           string                  `json:"urgency"`
	Result            analysis.AnalysisResult `json:"result"`
	CreatedAt         time.Time               `json:"created_at"`
}

type RecordStore interface {
	InsertHistory(ctx context.Context, record HistoryRecord) (HistoryRecord, error)
	ListHistory(ctx context.Context, userID string, limit int) ([]HistoryRecord, error)
	DeleteHistory(ctx context.Context, userID string) error
}

type AuthAdmin interface {
	DeleteUser(ctx context.Context, userID string) error
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	VerifyPasswordReset(ctx context.Context, email, code, newPassword string) error
}

// RESTStorageClient talks to a PostgREST-style table API under /rest/v1 and a
// GoTrue-style auth API under /auth/v1.
type RESTStorageClient struct {
	httpClient   *resty.Client
	configured   bool
	historyTable string
	logger       *zap.Logger
}

func NewRESTStorageClient(cfg config.Config, logger *zap.Logger) *RESTStorageClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.StorageURL), "/")
	serviceKey := strings.TrimSpace(cfg.StorageServiceKey)
	table := strings.TrimSpace(cfg.StorageHistoryTable)
	if table == "" {
		table = "analysis_history"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(upstreamTimeout(cfg)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey)

	return &RESTStorageClient{
		httpClient:   client,
		configured:   baseURL != "" && serviceKey != "",
		historyTable: table,
		logger:       logger,
	}
}

func (c *RESTStorageClient) InsertHistory(ctx context.Context, record HistoryRecord) (HistoryRecord, error) {
	if err := c.ready(); err != nil {
		return HistoryRecord{}, err
	}
	var inserted []HistoryRecord
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(record).
		SetResult(&inserted).
		Post("/rest/v1/" + c.historyTable)
	if err := checkResponse("storage", resp, err); err != nil {
		return HistoryRecord{}, err
	}
	if len(inserted) == 0 {
		return record, nil
	}
	return inserted[0], nil
}

func (c *RESTStorageClient) ListHistory(ctx context.Context, userID string, limit int) ([]HistoryRecord, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []HistoryRecord
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id": "eq." + userID,
			"order":   "created_at.desc",
			"limit":   strconv.Itoa(limit),
			"select":  "*",
		}).
		SetResult(&rows).
		Get("/rest/v1/" + c.historyTable)
	if err := checkResponse("storage", resp, err); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []HistoryRecord{}
	}
	return rows, nil
}

func (c *RESTStorageClient) DeleteHistory(ctx context.Context, userID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("user_id", "eq."+userID).
		Delete("/rest/v1/" + c.historyTable)
	return checkResponse("storage", resp, err)
}

func (c *RESTStorageClient) DeleteUser(ctx context.Context, userID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		Delete("/auth/v1/admin/users/{id}")
	return checkResponse("auth", resp, err)
}

func (c *RESTStorageClient) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	if err := c.ready(); err != nil {
		return err
	}
	req := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email})
	if strings.TrimSpace(redirectTo) != "" {
		req.SetQueryParam("redirect_to", redirectTo)
	}
	resp, err := req.Post("/auth/v1/recover")
	return checkResponse("auth", resp, err)
}

// VerifyPasswordReset exchanges the emailed recovery code for a session and
// uses that session to set the new password.
func (c *RESTStorageClient) VerifyPasswordReset(ctx context.Context, email, code, newPassword string) error {
	if err := c.ready(); err != nil {
		return err
	}
	var session struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"type":  "recovery",
			"email": email,
			"token": code,
		}).
		SetResult(&session).
		Post("/auth/v1/verify")
	if err := checkResponse("auth", resp, err); err != nil {
		return err
	}
	if strings.TrimSpace(session.AccessToken) == "" {
		return &upstreamError{Service: "auth", Status: resp.StatusCode(), Err: errors.New("verify response missing access_token")}
	}

	resp, err = c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(session.AccessToken).
		SetBody(map[string]string{"password": newPassword}).
		Put("/auth/v1/user")
	return checkResponse("auth", resp, err)
}

func (c *RESTStorageClient) ready() error {
	if !c.configured {
		return fmt.Errorf("%w: STORAGE_URL/STORAGE_SERVICE_KEY", errNotConfigured)
	}
	return nil
}

func checkResponse(service string, resp *resty.Response, err error) error {
	if err != nil {
		return &upstreamError{Service: service, Err: err}
	}
	if resp.IsError() {
		return &upstreamError{Service: service, Status: resp.StatusCode(), Body: truncateForLog(resp.String(), 600)}
	}
	return nil
}
