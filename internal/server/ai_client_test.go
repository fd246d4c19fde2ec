package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"carecompass/backend/internal/analysis"
	"carecompass/backend/internal/config"
)

func newTestOpenAIClient(baseURL string) *OpenAIResponsesClient {
	return &OpenAIResponsesClient{
		apiKey:          "test",
		baseURL:         baseURL,
		model:           "gpt-4o-mini",
		maxOutputTokens: 256,
		httpClient:      &http.Client{Timeout: 2 * time.Second},
	}
}

func TestOpenAIResponsesClientQuery(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	var authHeader, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		authHeader = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model":"gpt-4o-mini-2024",
			"output":[{"content":[{"type":"output_text","text":"first"},{"type":"output_text","text":"second"}]}],
			"usage":{"input_tokens":10,"output_tokens":4,"total_tokens":14}
		}`))
	}))
	defer server.Close()

	resp, err := newTestOpenAIClient(server.URL).Query(context.Background(), AIModelRequest{
		SystemPrompt: assistantSystemPrompt,
		UserPrompt:   "hello",
		Temperature:  modelTemperature,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != "first\nsecond" {
		t.Fatalf("unexpected answer: %q", resp.Answer)
	}
	if resp.Model != "gpt-4o-mini-2024" || resp.Usage.TotalTokens != 14 || resp.Usage.PromptTokens != 10 {
		t.Fatalf("unexpected response metadata: %+v", resp)
	}
	if authHeader != "Bearer test" || path != "/responses" {
		t.Fatalf("unexpected request auth=%q path=%q", authHeader, path)
	}
	if payload["model"] != "gpt-4o-mini" || extractNumberFromMap(payload, "max_output_tokens") != 256 {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["temperature"] != modelTemperature {
		t.Fatalf("expected temperature %v, got %v", modelTemperature, payload["temperature"])
	}
	input, _ := payload["input"].([]any)
	if len(input) != 2 {
		t.Fatalf("expected system and user input blocks, got %v", payload["input"])
	}
}

func TestOpenAIResponsesClientPrefersOutputText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output_text":"direct answer","output":[]}`))
	}))
	defer server.Close()

	resp, err := newTestOpenAIClient(server.URL).Query(context.Background(), AIModelRequest{UserPrompt: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != "direct answer" || resp.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestOpenAIResponsesClientDoesNotRetryServerError(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"temporary upstream issue"}}`))
	}))
	defer server.Close()

	_, err := newTestOpenAIClient(server.URL).Query(context.Background(), AIModelRequest{UserPrompt: "hello"})
	var upErr *upstreamError
	if !errors.As(err, &upErr) || upErr.Status != http.StatusBadGateway {
		t.Fatalf("expected upstream 502 error, got %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
	if !strings.Contains(upErr.Body, "temporary upstream issue") {
		t.Fatalf("expected body captured for logs, got %q", upErr.Body)
	}
}

func TestOpenAIResponsesClientReportsIncompleteOutput(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"incomplete","incomplete_details":{"reason":"max_output_tokens"},"output":[]}`))
	}))
	defer server.Close()

	_, err := newTestOpenAIClient(server.URL).Query(context.Background(), AIModelRequest{UserPrompt: "hello"})
	if err == nil || !strings.Contains(err.Error(), "max_output_tokens") {
		t.Fatalf("expected max_output_tokens error, got %v", err)
	}
}

func TestOpenAIResponsesClientRequiresKey(t *testing.T) {
	t.Parallel()

	client := NewOpenAIResponsesClient(config.Config{OpenAIBaseURL: "http://127.0.0.1:1", OpenAIModel: "m"})
	_, err := client.Query(context.Background(), AIModelRequest{UserPrompt: "hello"})
	if !errors.Is(err, errNotConfigured) {
		t.Fatalf("expected errNotConfigured, got %v", err)
	}
}

func TestMockAIClientProducesNormalizableAnalysis(t *testing.T) {
	t.Parallel()

	prompt := analysis.ComposePrompt(analysis.PromptInput{Content: "cough", Kind: analysis.KindSymptom})
	resp, err := MockAIClient{}.Query(context.Background(), AIModelRequest{UserPrompt: prompt})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := analysis.NormalizeReply(resp.Answer)
	if result.MedicalAnalysis != "Mock analysis generated without a language model." {
		t.Fatalf("expected mock analysis to parse, got %+v", result)
	}

	trend, _ := MockAIClient{}.Query(context.Background(), AIModelRequest{
		UserPrompt: analysis.ComposeTrendPrompt([]string{"cough"}, "", ""),
	})
	summary := analysis.ExtractTrendSummary(trend.Answer)
	if len(summary.Citations) != 1 || summary.Citations[0] != analysis.DefaultTrendCitation {
		t.Fatalf("expected default trend citation, got %+v", summary.Citations)
	}
}

func TestTruncateForLog(t *testing.T) {
	if got := truncateForLog("  short  ", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncateForLog("abcdefghij", 4); got != "abcd...(truncated)" {
		t.Fatalf("unexpected %q", got)
	}
}
