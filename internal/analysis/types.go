// Package analysis turns user health input into model prompts and turns model
// replies back into typed results. Everything here is a pure function of its
// inputs; transport lives in internal/server.
package analysis

type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Doctor struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Rating   *float64 `json:"rating"`
	OpenNow  bool     `json:"open_now"`
	Phone    *string  `json:"phone"`
	MapsLink string   `json:"maps_link"`
}

type AnalysisResult struct {
	DetectedCondition       string     `json:"detected_condition"`
	MedicalAnalysis         string     `json:"medical_analysis"`
	WhyHappeningExplanation string     `json:"why_happening_explanation"`
	ImmediateAction         string     `json:"immediate_action"`
	NurseTips               string     `json:"nurse_tips"`
	Remedies                []string   `json:"remedies"`
	Medicines               []string   `json:"medicines"`
	Urgency                 string     `json:"urgency"`
	SuggestedDoctor         string     `json:"suggested_doctor"`
	NursingExplanation      string     `json:"nursing_explanation"`
	PersonalNotes           string     `json:"personal_notes"`
	RelevantInformation     string     `json:"relevant_information"`
	HIPAADisclaimer         string     `json:"hipaa_disclaimer"`
	Citations               []Citation `json:"citations"`
	NearbyDoctors           []Doctor   `json:"nearby_doctors"`
}

type TrendSummary struct {
	Summary   string     `json:"summary"`
	Citations []Citation `json:"citations"`
}
