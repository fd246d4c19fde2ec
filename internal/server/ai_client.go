package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"carecompass/backend/internal/analysis"
	"carecompass/backend/internal/config"
)

type AIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type AIModelRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

type AIModelResponse struct {
	Answer string
	Model  string
	Usage  AIUsage
}

type AIClient interface {
	Query(ctx context.Context, req AIModelRequest) (AIModelResponse, error)
}

const assistantSystemPrompt = "You are a helpful multilingual health assistant."

type OpenAIResponsesClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
}

func NewOpenAIResponsesClient(cfg config.Config) *OpenAIResponsesClient {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &OpenAIResponsesClient{
		apiKey:          strings.TrimSpace(cfg.OpenAIAPIKey),
		baseURL:         strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/"),
		model:           strings.TrimSpace(cfg.OpenAIModel),
		maxOutputTokens: cfg.AIMaxOutputTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (c *OpenAIResponsesClient) Query(ctx context.Context, req AIModelRequest) (AIModelResponse, error) {
	if c.apiKey == "" {
		return AIModelResponse{}, fmt.Errorf("%w: OPENAI_API_KEY", errNotConfigured)
	}
	if c.baseURL == "" {
		return AIModelResponse{}, fmt.Errorf("%w: OPENAI_BASE_URL", errNotConfigured)
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	if model == "" {
		return AIModelResponse{}, fmt.Errorf("%w: OPENAI_MODEL", errNotConfigured)
	}

	type inputText struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	type inputBlock struct {
		Role    string      `json:"role"`
		Content []inputText `json:"content"`
	}
	input := make([]inputBlock, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		input = append(input, inputBlock{Role: "system", Content: []inputText{{Type: "input_text", Text: system}}})
	}
	if user := strings.TrimSpace(req.UserPrompt); user != "" {
		input = append(input, inputBlock{Role: "user", Content: []inputText{{Type: "input_text", Text: user}}})
	}
	if len(input) == 0 {
		return AIModelResponse{}, errors.New("AI request input is empty")
	}

	payload := map[string]any{
		"model": model,
		"input": input,
	}
	if c.maxOutputTokens > 0 {
		payload["max_output_tokens"] = c.maxOutputTokens
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	}
	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return AIModelResponse{}, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(bodyRaw))
	if err != nil {
		return AIModelResponse{}, err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return AIModelResponse{}, &upstreamError{Service: "openai", Err: err}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return AIModelResponse{}, &upstreamError{Service: "openai", Err: err}
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return AIModelResponse{}, &upstreamError{
			Service: "openai",
			Status:  response.StatusCode,
			Body:    truncateForLog(string(responseBody), 600),
		}
	}

	parsed := parseJSONStringMap(responseBody)
	answer := extractResponseAnswer(parsed)
	if answer == "" {
		if isMaxOutputTokenIncomplete(parsed) {
			return AIModelResponse{}, &upstreamError{Service: "openai", Err: errors.New("response incomplete due to max_output_tokens")}
		}
		return AIModelResponse{}, &upstreamError{Service: "openai", Err: errors.New("response answer is empty")}
	}

	usage, _ := parsed["usage"].(map[string]any)
	modelName := strings.TrimSpace(toString(parsed["model"]))
	if modelName == "" {
		modelName = model
	}
	return AIModelResponse{
		Answer: answer,
		Model:  modelName,
		Usage: AIUsage{
			PromptTokens:     int(extractNumberFromMap(usage, "input_tokens", "prompt_tokens")),
			CompletionTokens: int(extractNumberFromMap(usage, "output_tokens", "completion_tokens")),
			TotalTokens:      int(extractNumberFromMap(usage, "total_tokens")),
		},
	}, nil
}

func extractResponseAnswer(data map[string]any) string {
	if direct := strings.TrimSpace(toString(data["output_text"])); direct != "" {
		return direct
	}

	outputs, ok := data["output"].([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0)
	for _, item := range outputs {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		contentList, ok := block["content"].([]any)
		if !ok {
			continue
		}
		for _, contentItem := range contentList {
			contentMap, ok := contentItem.(map[string]any)
			if !ok {
				continue
			}
			contentType := strings.ToLower(strings.TrimSpace(toString(contentMap["type"])))
			if contentType != "output_text" && contentType != "text" {
				continue
			}
			if text := strings.TrimSpace(toString(contentMap["text"])); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func isMaxOutputTokenIncomplete(parsed map[string]any) bool {
	details, ok := parsed["incomplete_details"].(map[string]any)
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(toString(details["reason"])), "max_output_tokens")
}

// MockAIClient answers without a network call. It is used when APP_ENV=local
// and no OpenAI key is configured.
type MockAIClient struct{}

func (MockAIClient) Query(_ context.Context, req AIModelRequest) (AIModelResponse, error) {
	prompt := req.UserPrompt
	var answer string
	switch {
	case strings.Contains(prompt, "Symptom timeline:"):
		answer = "Your symptoms look stable over the period you logged.\nCitations: No specific citations for trends."
	case strings.Contains(prompt, `"detected_condition"`):
		encoded, _ := json.Marshal(map[string]any{
			"detected_condition":        "unsure",
			"medical_analysis":          "Mock analysis generated without a language model.",
			"why_happening_explanation": "Mock mode is active.",
			"immediate_action":          "Monitor your symptoms.",
			"nurse_tips":                "Rest and stay hydrated.",
			"remedies":                  []string{"rest", "fluids"},
			"medicines":                 []string{},
			"urgency":                   "low",
			"suggested_doctor":          "general practitioner",
			"nursing_explanation":       "This is placeholder content.",
			"personal_notes":            "None.",
			"relevant_information":      "Configure OPENAI_API_KEY for real analysis.",
			"hipaa_disclaimer":          analysis.HIPAADisclaimer,
			"citations":                 []analysis.Citation{},
		})
		answer = "```json\n" + string(encoded) + "\n```"
	default:
		answer = "Mock response: " + strings.TrimSpace(prompt)
	}
	return AIModelResponse{Answer: answer, Model: "mock"}, nil
}
