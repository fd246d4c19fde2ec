package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carecompass/backend/internal/analysis"
)

const (
	modelTemperature = 0.4
	noTextDetected   = "No text detected"
)

type analysisInput struct {
	content  string
	kind     analysis.InputKind
	profile  string
	language string
	location *locationInput
}

// runAnalysis sends the composed prompt to the model, normalizes the reply
// and attaches nearby doctors when coordinates were supplied.
func (a *App) runAnalysis(c *gin.Context, in analysisInput) {
	prompt := analysis.ComposePrompt(analysis.PromptInput{
		Content:        in.content,
		Kind:           in.kind,
		ProfileContext: in.profile,
		Language:       languageOrDefault(in.language),
	})

	reply, err := a.ai.Query(c.Request.Context(), AIModelRequest{
		SystemPrompt: assistantSystemPrompt,
		UserPrompt:   prompt,
		Temperature:  modelTemperature,
	})
	if err != nil {
		a.writeUpstreamError(c, err, "AI analysis failed")
		return
	}

	result := analysis.NormalizeReply(reply.Answer)
	result.NearbyDoctors = a.nearbyDoctors(c.Request.Context(), result.SuggestedDoctor, in.location)
	c.JSON(http.StatusOK, result)
}

func (a *App) nearbyDoctors(ctx context.Context, specialty string, location *locationInput) []analysis.Doctor {
	lat, lng, ok := location.coordinates()
	if !ok {
		return []analysis.Doctor{}
	}
	places, err := a.places.NearbySearch(ctx, PlacesQuery{Specialty: specialty, Lat: lat, Lng: lng})
	if err != nil {
		a.log.Warn("doctor enrichment skipped", zap.Error(err), zap.String("specialty", specialty))
		return []analysis.Doctor{}
	}
	return analysis.RankDoctors(places)
}

// analyze godoc
// @Summary Analyze free-text symptoms
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body analyzeRequest true "Symptoms, profile, language and optional location"
// @Success 200 {object} analysis.AnalysisResult
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /analyze [post]
func (a *App) analyze(c *gin.Context) {
	var req analyzeRequest
	if !mustJSON(c, &req) {
		return
	}
	symptoms := strings.TrimSpace(req.Symptoms)
	if symptoms == "" {
		writeError(c, http.StatusBadRequest, "Symptoms required")
		return
	}
	a.runAnalysis(c, analysisInput{
		content:  symptoms,
		kind:     analysis.KindSymptom,
		profile:  profileContextFrom(req.Profile),
		language: req.Language,
		location: req.Location,
	})
}

// analyzeTrends godoc
// @Summary Summarize a symptom timeline
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body analyzeTrendsRequest true "Timeline entries"
// @Success 200 {object} analysis.TrendSummary
// @Security BearerAuth
// @Router /analyze-trends [post]
func (a *App) analyzeTrends(c *gin.Context) {
	var req analyzeTrendsRequest
	if !mustJSON(c, &req) {
		return
	}
	entries := make([]string, 0, len(req.Timeline))
	for _, item := range req.Timeline {
		symptoms := strings.TrimSpace(item.Symptoms)
		if symptoms == "" {
			continue
		}
		entry := symptoms
		if date := strings.TrimSpace(item.Date); date != "" {
			entry = date + ": " + symptoms
		}
		if severity := strings.TrimSpace(item.Severity); severity != "" {
			entry += " (severity: " + severity + ")"
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		writeError(c, http.StatusBadRequest, "Symptom timeline required")
		return
	}

	prompt := analysis.ComposeTrendPrompt(entries, profileContextFrom(req.Profile), languageOrDefault(req.Language))
	reply, err := a.ai.Query(c.Request.Context(), AIModelRequest{
		SystemPrompt: assistantSystemPrompt,
		UserPrompt:   prompt,
		Temperature:  modelTemperature,
	})
	if err != nil {
		a.writeUpstreamError(c, err, "Trend analysis failed")
		return
	}
	c.JSON(http.StatusOK, analysis.ExtractTrendSummary(reply.Answer))
}

// ask godoc
// @Summary Ask a free-form health question
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body askRequest true "Question"
// @Success 200 {object} askResponse
// @Security BearerAuth
// @Router /api/ask [post]
func (a *App) ask(c *gin.Context) {
	var req askRequest
	if !mustJSON(c, &req) {
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(c, http.StatusBadRequest, "Question required")
		return
	}

	prompt := analysis.ComposeAskPrompt(question, profileContextFrom(req.Profile), languageOrDefault(req.Language))
	reply, err := a.ai.Query(c.Request.Context(), AIModelRequest{
		SystemPrompt: assistantSystemPrompt,
		UserPrompt:   prompt,
		Temperature:  modelTemperature,
	})
	if err != nil {
		a.writeUpstreamError(c, err, "AI request failed")
		return
	}
	c.JSON(http.StatusOK, askResponse{Answer: reply.Answer, Model: reply.Model})
}

// @Summary Analyze a photo via labels and OCR
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body imageAnalyzeRequest true "Base64 image"
// @Success 200 {object} analysis.AnalysisResult
// @Security BearerAuth
// @Router /photo-analyze [post]
func (a *App) photoAnalyze(c *gin.Context) {
	var req imageAnalyzeRequest
	if !mustJSON(c, &req) {
		return
	}
	image, ok := requireImage(c, req.ImageBase64)
	if !ok {
		return
	}

	annotated, err := a.vision.Annotate(c.Request.Context(), image, FeatureLabels, FeatureText)
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to process image with Vision API")
		return
	}
	description := describeImage(annotated)
	if description == "" {
		writeError(c, http.StatusBadRequest, "No recognizable content detected in image")
		return
	}

	a.runAnalysis(c, analysisInput{
		content:  description,
		kind:     analysis.KindPhoto,
		profile:  profileContextFrom(req.Profile),
		language: req.Language,
		location: req.Location,
	})
}

func describeImage(result VisionResult) string {
	parts := make([]string, 0, 2)
	if len(result.Labels) > 0 {
		parts = append(parts, strings.Join(result.Labels, ", "))
	}
	if text := strings.TrimSpace(result.Text); text != "" {
		parts = append(parts, "visible text: "+text)
	}
	return strings.Join(parts, "; ")
}

// @Summary Analyze lab report text or an image of one
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body labReportRequest true "Report text or base64 image"
// @Success 200 {object} analysis.AnalysisResult
// @Security BearerAuth
// @Router /analyze-lab-report [post]
func (a *App) analyzeLabReport(c *gin.Context) {
	var req labReportRequest
	if !mustJSON(c, &req) {
		return
	}

	reportText := strings.TrimSpace(req.ReportText)
	if reportText == "" {
		if strings.TrimSpace(req.ImageBase64) == "" {
			writeError(c, http.StatusBadRequest, "report_text or image_base64 required")
			return
		}
		image, ok := requireImage(c, req.ImageBase64)
		if !ok {
			return
		}
		annotated, err := a.vision.Annotate(c.Request.Context(), image, FeatureText)
		if err != nil {
			a.writeUpstreamError(c, err, "Failed to process image with Vision API")
			return
		}
		reportText = strings.TrimSpace(annotated.Text)
		if reportText == "" {
			writeError(c, http.StatusBadRequest, "No text detected from lab report.")
			return
		}
	}

	a.runAnalysis(c, analysisInput{
		content:  reportText,
		kind:     analysis.KindLabReport,
		profile:  profileContextFrom(req.Profile),
		language: req.Language,
		location: req.Location,
	})
}

// @Summary Extract text from an image
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body visionRequest true "Base64 image"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /vision [post]
func (a *App) visionOCR(c *gin.Context) {
	var req visionRequest
	if !mustJSON(c, &req) {
		return
	}
	image, ok := requireImage(c, req.ImageBase64)
	if !ok {
		return
	}
	annotated, err := a.vision.Annotate(c.Request.Context(), image, FeatureText)
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to process image with Vision API")
		return
	}
	text := strings.TrimSpace(annotated.Text)
	if text == "" {
		text = noTextDetected
	}
	c.JSON(http.StatusOK, gin.H{"extracted_text": text})
}

func requireImage(c *gin.Context, raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		writeError(c, http.StatusBadRequest, "Missing image_base64 data")
		return "", false
	}
	image, err := cleanImageBase64(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return image, true
}
