package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReplyWrapsScalarRemedies(t *testing.T) {
	result := NormalizeReply(`{"remedies": "rest"}`)
	assert.Equal(t, []string{"rest"}, result.Remedies)
	assert.Equal(t, []string{}, result.Medicines)
	assert.Equal(t, []Citation{}, result.Citations)
}

func TestNormalizeReplyPrefersFencedBlock(t *testing.T) {
	raw := "Here is my analysis {\"detected_condition\": \"wrong\"}\n" +
		"```json\n{\"detected_condition\": \"flu\", \"medicines\": [\"paracetamol\"]}\n```\n" +
		"Let me know if you need more."

	result := NormalizeReply(raw)
	assert.Equal(t, "flu", result.DetectedCondition)
	assert.Equal(t, []string{"paracetamol"}, result.Medicines)
}

func TestNormalizeReplyFillsOptionalFields(t *testing.T) {
	result := NormalizeReply(`{"detected_condition": "cold", "urgency": "low"}`)
	assert.Equal(t, NotProvided, result.NursingExplanation)
	assert.Equal(t, NotProvided, result.PersonalNotes)
	assert.Equal(t, NotProvided, result.RelevantInformation)
	assert.Equal(t, NotProvided, result.WhyHappeningExplanation)
	assert.Equal(t, NotProvided, result.ImmediateAction)
	assert.Equal(t, NotProvided, result.NurseTips)
	assert.Equal(t, "low", result.Urgency)
	assert.Equal(t, "general", result.SuggestedDoctor)
	assert.Equal(t, HIPAADisclaimer, result.HIPAADisclaimer)
}

func TestNormalizeReplyFallback(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "[1, 2, 3]", "```json\n{broken```", "\"just a string\""} {
		result := NormalizeReply(raw)
		assert.Equal(t, FallbackResult(), result, "raw=%q", raw)
		assert.Equal(t, "unsure", result.DetectedCondition)
		assert.Equal(t, "unknown", result.Urgency)
		assert.Equal(t, "general", result.SuggestedDoctor)
	}
}

func TestNormalizeReplyAlwaysEncodesSequences(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"remedies": null, "medicines": false, "citations": ""}`,
		`{"remedies": ["a", 2, {"k": "v"}], "citations": {"title": "CDC", "url": "https://cdc.gov"}}`,
		`garbage`,
	}
	for _, raw := range inputs {
		encoded, err := json.Marshal(NormalizeReply(raw))
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		for _, key := range RequiredKeys {
			assert.Contains(t, decoded, key, "raw=%q", raw)
		}
		for _, key := range []string{"remedies", "medicines", "citations", "nearby_doctors"} {
			assert.IsType(t, []any{}, decoded[key], "raw=%q key=%s", raw, key)
		}
	}
}

func TestNormalizeReplyCoercesListItems(t *testing.T) {
	result := NormalizeReply(`{"remedies": ["fluids", 2, "  "], "citations": [{"title": "NHS", "url": "https://nhs.uk"}, "https://who.int", 7]}`)
	assert.Equal(t, []string{"fluids", "2"}, result.Remedies)
	assert.Equal(t, []Citation{
		{Title: "NHS", URL: "https://nhs.uk"},
		{Title: "https://who.int", URL: "https://who.int"},
	}, result.Citations)
}

func TestNormalizeReplyOverridesDisclaimer(t *testing.T) {
	result := NormalizeReply(`{"hipaa_disclaimer": "whatever the model said"}`)
	assert.Equal(t, HIPAADisclaimer, result.HIPAADisclaimer)
}
