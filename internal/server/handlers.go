package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"carecompass/backend/internal/analysis"
)

type locationInput struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (l *locationInput) coordinates() (float64, float64, bool) {
	if l == nil || l.Lat == nil || l.Lng == nil {
		return 0, 0, false
	}
	return *l.Lat, *l.Lng, true
}

type analyzeRequest struct {
	Symptoms string          `json:"symptoms"`
	Profile  json.RawMessage `json:"profile" swaggertype:"object"`
	Language string          `json:"language"`
	Location *locationInput  `json:"location"`
}

type timelineEntry struct {
	Date     string `json:"date"`
	Symptoms string `json:"symptoms"`
	Severity string `json:"severity,omitempty"`
}

type analyzeTrendsRequest struct {
	Timeline []timelineEntry `json:"timeline"`
	Profile  json.RawMessage `json:"profile" swaggertype:"object"`
	Language string          `json:"language"`
}

type askRequest struct {
	Question string          `json:"question"`
	Profile  json.RawMessage `json:"profile" swaggertype:"object"`
	Language string          `json:"language"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

type imageAnalyzeRequest struct {
	ImageBase64 string          `json:"image_base64"`
	Profile     json.RawMessage `json:"profile" swaggertype:"object"`
	Language    string          `json:"language"`
	Location    *locationInput  `json:"location"`
}

type labReportRequest struct {
	ReportText  string          `json:"report_text"`
	ImageBase64 string          `json:"image_base64"`
	Profile     json.RawMessage `json:"profile" swaggertype:"object"`
	Language    string          `json:"language"`
	Location    *locationInput  `json:"location"`
}

type visionRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type saveHistoryRequest struct {
	UserID    string                  `json:"user_id"`
	Query     string                  `json:"query"`
	InputKind string                  `json:"input_kind"`
	Result    analysis.AnalysisResult `json:"result"`
}

type doctorsRequest struct {
	Specialty string   `json:"specialty" form:"specialty"`
	Lat       *float64 `json:"lat" form:"lat"`
	Lng       *float64 `json:"lng" form:"lng"`
}

type appointmentRequest struct {
	Name   string `json:"name"`
	Doctor string `json:"doctor"`
	Date   string `json:"date"`
}

type deleteAccountRequest struct {
	UserID string `json:"user_id"`
}

type passwordResetRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

type verifyPasswordResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

var errInvalidImage = errors.New("image_base64 is not valid base64")

// cleanImageBase64 strips a data URL prefix and checks the payload decodes.
func cleanImageBase64(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "data:") {
		if comma := strings.Index(trimmed, ","); comma >= 0 {
			trimmed = trimmed[comma+1:]
		}
	}
	trimmed = strings.Join(strings.Fields(trimmed), "")
	if trimmed == "" {
		return "", errInvalidImage
	}
	if _, err := base64.StdEncoding.DecodeString(trimmed); err != nil {
		return "", errInvalidImage
	}
	return trimmed, nil
}

func profileContextFrom(raw json.RawMessage) string {
	profile, ok := analysis.DecodeProfile(raw)
	if !ok {
		return analysis.NoProfileMessage
	}
	return analysis.BuildProfileContext(profile)
}

func languageOrDefault(language string) string {
	if trimmed := strings.TrimSpace(language); trimmed != "" {
		return trimmed
	}
	return analysis.DefaultLanguage
}

func extractNumberFromMap(data map[string]any, keys ...string) float64 {
	if data == nil {
		return 0
	}
	for _, key := range keys {
		raw, ok := data[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case json.Number:
			f, err := v.Float64()
			if err == nil {
				return f
			}
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err == nil {
				return f
			}
		}
	}
	return 0
}

func parseJSONStringMap(input []byte) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	var result map[string]any
	if err := json.Unmarshal(input, &result); err != nil || result == nil {
		return map[string]any{}
	}
	return result
}

func truncateForLog(value string, limit int) string {
	trimmed := strings.TrimSpace(value)
	if limit <= 0 || len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "...(truncated)"
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
