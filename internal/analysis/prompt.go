package analysis

import (
	"strings"
)

type InputKind string

const (
	KindSymptom   InputKind = "symptom"
	KindPhoto     InputKind = "photo"
	KindLabReport InputKind = "lab_report"
	KindOther     InputKind = "other"
)

const DefaultLanguage = "English"

const HIPAADisclaimer = "This information is for educational purposes only and is not a substitute for professional medical advice, diagnosis, or treatment. Always consult a licensed healthcare provider. Your health information is handled in line with HIPAA privacy standards."

// RequiredKeys is the output schema the model is instructed to return.
var RequiredKeys = []string{
	"detected_condition",
	"medical_analysis",
	"why_happening_explanation",
	"immediate_action",
	"nurse_tips",
	"remedies",
	"medicines",
	"urgency",
	"suggested_doctor",
	"nursing_explanation",
	"personal_notes",
	"relevant_information",
	"hipaa_disclaimer",
	"citations",
}

const analysisTemplate = `You are a careful, empathetic medical assistant working alongside a registered nurse.
Respond in this language: {{language}}.

Use these adult reference ranges when the input mentions measurements:
- Body temperature: 36.1-37.2 C (97-99 F); fever at or above 38.0 C (100.4 F)
- Resting heart rate: 60-100 beats per minute
- Blood pressure: below 120/80 mmHg normal; 130/80 mmHg or higher is high
- Fasting blood glucose: 70-99 mg/dL; 100-125 mg/dL prediabetes; 126 mg/dL or higher diabetes
- HbA1c: below 5.7%; 5.7-6.4% prediabetes; 6.5% or higher diabetes
- Total cholesterol: below 200 mg/dL; LDL below 100 mg/dL; HDL 40 mg/dL or higher
- Hemoglobin: 13.5-17.5 g/dL (men), 12.0-15.5 g/dL (women)
- Oxygen saturation (SpO2): 95-100%

Analyze the input below, taking the user's health profile into account, and return ONLY a JSON object with exactly these 14 keys:
{
  "detected_condition": "most likely condition, or 'unsure'",
  "medical_analysis": "clear explanation of what is going on",
  "why_happening_explanation": "why this is likely happening for this specific user",
  "immediate_action": "what the user should do right now",
  "nurse_tips": "practical nursing tips for home care",
  "remedies": ["home remedy", "home remedy"],
  "medicines": ["over-the-counter or mentioned medicine"],
  "urgency": "low | moderate | high",
  "suggested_doctor": "most relevant type of specialist",
  "nursing_explanation": "plain-language explanation a nurse would give",
  "personal_notes": "notes tied to the user's profile",
  "relevant_information": "other relevant facts or warning signs",
  "hipaa_disclaimer": "{{disclaimer}}",
  "citations": [{"title": "source title", "url": "https://..."}]
}
Do not wrap the JSON in prose. Use the hipaa_disclaimer text exactly as given.
`

type PromptInput struct {
	Content        string
	Kind           InputKind
	ProfileContext string
	Language       string
}

func ComposePrompt(in PromptInput) string {
	var b strings.Builder
	b.WriteString(fillTemplate(analysisTemplate, in.Language))
	b.WriteString("\n")
	profile := strings.TrimSpace(in.ProfileContext)
	if profile == "" {
		profile = NoProfileMessage
	}
	b.WriteString(profile)
	b.WriteString("\n\n")
	b.WriteString(framingLine(in.Kind, in.Content))
	b.WriteString("\n")
	return b.String()
}

func framingLine(kind InputKind, content string) string {
	content = strings.TrimSpace(content)
	switch kind {
	case KindSymptom:
		return `Symptoms: "` + content + `"`
	case KindPhoto:
		return `Image shows: "` + content + `"`
	case KindLabReport:
		return `Lab Report Text: "` + content + `"`
	default:
		return `User Input: "` + content + `"`
	}
}

func fillTemplate(template, language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}
	return strings.NewReplacer(
		"{{language}}", language,
		"{{disclaimer}}", HIPAADisclaimer,
	).Replace(template)
}

const trendTemplate = `You are a health assistant reviewing a user's symptom history over time.
Respond in this language: {{language}}.

Summarize the trends you see in the timeline below in a short, supportive paragraph: what is improving, what is getting worse, recurring patterns, and when the user should see a doctor.
End your answer with a single final line that starts with "Citations:" followed by markdown links in the form [title](url), separated by commas.
If you have no specific sources, write exactly: Citations: No specific citations for trends.
`

// ComposeTrendPrompt builds the prompt for the symptom-timeline summary. Each
// entry is rendered on its own line in the order given.
func ComposeTrendPrompt(entries []string, profileContext, language string) string {
	var b strings.Builder
	b.WriteString(fillTemplate(trendTemplate, language))
	b.WriteString("\n")
	profile := strings.TrimSpace(profileContext)
	if profile == "" {
		profile = NoProfileMessage
	}
	b.WriteString(profile)
	b.WriteString("\n\nSymptom timeline:\n")
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(entry)
		b.WriteString("\n")
	}
	return b.String()
}

const askTemplate = `You are a friendly, careful health assistant. Answer the user's question clearly and briefly.
Respond in this language: {{language}}.
Never give a definitive diagnosis; recommend seeing a clinician when symptoms are serious.
`

func ComposeAskPrompt(question, profileContext, language string) string {
	var b strings.Builder
	b.WriteString(fillTemplate(askTemplate, language))
	if profile := strings.TrimSpace(profileContext); profile != "" && profile != NoProfileMessage {
		b.WriteString("\n")
		b.WriteString(profile)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: \"")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\"\n")
	return b.String()
}
