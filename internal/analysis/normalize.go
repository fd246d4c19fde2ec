package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const NotProvided = "Not provided."

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

var (
	errNoFence   = errors.New("no fenced json block")
	errNotObject = errors.New("reply is not a json object")
)

// Fields the model often drops; they get a placeholder instead of "".
var optionalTextFields = []string{
	"nursing_explanation",
	"personal_notes",
	"relevant_information",
	"why_happening_explanation",
	"immediate_action",
	"nurse_tips",
}

type parseResult struct {
	fields map[string]any
	err    error
}

func (r parseResult) ok() bool {
	return r.err == nil
}

// NormalizeReply never fails: any reply that cannot be decoded into an object
// yields FallbackResult.
func NormalizeReply(raw string) AnalysisResult {
	result := parseFenced(raw)
	if !result.ok() {
		result = parseRaw(raw)
	}
	if !result.ok() {
		return FallbackResult()
	}
	return normalizeFields(result.fields)
}

func parseFenced(raw string) parseResult {
	match := fencedJSONPattern.FindStringSubmatch(raw)
	if len(match) < 2 {
		return parseResult{err: errNoFence}
	}
	return decodeObject(match[1])
}

func parseRaw(raw string) parseResult {
	return decodeObject(strings.TrimSpace(raw))
}

func decodeObject(text string) parseResult {
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return parseResult{err: err}
	}
	fields, ok := decoded.(map[string]any)
	if !ok {
		return parseResult{err: errNotObject}
	}
	return parseResult{fields: fields}
}

func FallbackResult() AnalysisResult {
	return AnalysisResult{
		DetectedCondition:       "unsure",
		MedicalAnalysis:         "We could not analyze your input right now. Please try again or describe your symptoms in more detail.",
		WhyHappeningExplanation: "Unable to determine the cause from the information available.",
		ImmediateAction:         "If your symptoms are severe or getting worse, contact a healthcare provider or emergency services.",
		NurseTips:               "Rest, stay hydrated, and keep track of how your symptoms change.",
		Remedies:                []string{},
		Medicines:               []string{},
		Urgency:                 "unknown",
		SuggestedDoctor:         "general",
		NursingExplanation:      "A full explanation is not available for this request.",
		PersonalNotes:           "No personal notes could be generated.",
		RelevantInformation:     "No additional information is available.",
		HIPAADisclaimer:         HIPAADisclaimer,
		Citations:               []Citation{},
		NearbyDoctors:           []Doctor{},
	}
}

func normalizeFields(fields map[string]any) AnalysisResult {
	for _, key := range optionalTextFields {
		if _, ok := fields[key]; !ok {
			fields[key] = NotProvided
		}
	}
	return AnalysisResult{
		DetectedCondition:       textOr(fields["detected_condition"], "unsure"),
		MedicalAnalysis:         textOr(fields["medical_analysis"], NotProvided),
		WhyHappeningExplanation: textOr(fields["why_happening_explanation"], NotProvided),
		ImmediateAction:         textOr(fields["immediate_action"], NotProvided),
		NurseTips:               textOr(fields["nurse_tips"], NotProvided),
		Remedies:                coerceStringList(fields["remedies"]),
		Medicines:               coerceStringList(fields["medicines"]),
		Urgency:                 textOr(fields["urgency"], "unknown"),
		SuggestedDoctor:         textOr(fields["suggested_doctor"], "general"),
		NursingExplanation:      textOr(fields["nursing_explanation"], NotProvided),
		PersonalNotes:           textOr(fields["personal_notes"], NotProvided),
		RelevantInformation:     textOr(fields["relevant_information"], NotProvided),
		HIPAADisclaimer:         HIPAADisclaimer,
		Citations:               coerceCitations(fields["citations"]),
		NearbyDoctors:           []Doctor{},
	}
}

func textOr(value any, fallback string) string {
	text := strings.TrimSpace(anyToText(value))
	if text == "" {
		return fallback
	}
	return text
}

func anyToText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(anyToText(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

// coerceStringList wraps a scalar into a one-element list; absent or falsy
// values become an empty list.
func coerceStringList(value any) []string {
	if isFalsy(value) {
		return []string{}
	}
	items, ok := value.([]any)
	if !ok {
		return []string{anyToText(value)}
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(anyToText(item)); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func coerceCitations(value any) []Citation {
	if isFalsy(value) {
		return []Citation{}
	}
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	result := make([]Citation, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			citation := Citation{
				Title: strings.TrimSpace(anyToText(v["title"])),
				URL:   strings.TrimSpace(anyToText(v["url"])),
			}
			if citation.Title == "" && citation.URL == "" {
				continue
			}
			result = append(result, citation)
		case string:
			text := strings.TrimSpace(v)
			if text == "" {
				continue
			}
			if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
				result = append(result, Citation{Title: text, URL: text})
				continue
			}
			result = append(result, Citation{Title: text})
		}
	}
	return result
}

func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
