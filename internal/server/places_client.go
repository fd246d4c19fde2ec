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

type PlacesQuery struct {
	Specialty string
	Lat       float64
	Lng       float64
}

type PlacesClient interface {
	NearbySearch(ctx context.Context, query PlacesQuery) ([]analysis.PlaceRecord, error)
}

type GooglePlacesClient struct {
	httpClient *resty.Client
	apiKey     string
	radius     int
	logger     *zap.Logger
}

type nearbySearchResponse struct {
	Status       string                 `json:"status"`
	ErrorMessage string                 `json:"error_message"`
	Results      []analysis.PlaceRecord `json:"results"`
}

func NewGooglePlacesClient(cfg config.Config, logger *zap.Logger) *GooglePlacesClient {
	radius := cfg.PlacesRadiusMeters
	if radius <= 0 {
		radius = 5000
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.PlacesBaseURL, "/")).
		SetTimeout(upstreamTimeout(cfg)).
		SetHeader("Accept", "application/json")

	return &GooglePlacesClient{
		httpClient: client,
		apiKey:     strings.TrimSpace(cfg.PlacesAPIKey),
		radius:     radius,
		logger:     logger,
	}
}

func (c *GooglePlacesClient) NearbySearch(ctx context.Context, query PlacesQuery) ([]analysis.PlaceRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_PLACES_API_KEY", errNotConfigured)
	}
	specialty := strings.TrimSpace(query.Specialty)
	if specialty == "" {
		specialty = "general"
	}

	var response nearbySearchResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"location": formatCoordinate(query.Lat) + "," + formatCoordinate(query.Lng),
			"radius":   strconv.Itoa(c.radius),
			"keyword":  specialty + " doctor",
			"key":      c.apiKey,
		}).
		SetResult(&response).
		Get("/nearbysearch/json")
	if err != nil {
		return nil, &upstreamError{Service: "places", Err: err}
	}
	if resp.IsError() {
		return nil, &upstreamError{Service: "places", Status: resp.StatusCode(), Body: truncateForLog(resp.String(), 600)}
	}

	switch response.Status {
	case "OK", "ZERO_RESULTS", "":
	default:
		return nil, &upstreamError{
			Service: "places",
			Status:  resp.StatusCode(),
			Err:     errors.New(strings.TrimSpace(response.Status + " " + response.ErrorMessage)),
		}
	}

	c.logger.Debug("places nearby search completed",
		zap.String("specialty", specialty),
		zap.Int("result_count", len(response.Results)),
	)
	return response.Results, nil
}

func formatCoordinate(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func upstreamTimeout(cfg config.Config) time.Duration {
	seconds := cfg.UpstreamTimeoutSeconds
	if seconds <= 0 {
		seconds = 15
	}
	return time.Duration(seconds) * time.Second
}
