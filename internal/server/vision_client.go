package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"carecompass/backend/internal/config"
)

type VisionFeature string

const (
	FeatureLabels VisionFeature = "LABEL_DETECTION"
	FeatureText   VisionFeature = "DOCUMENT_TEXT_DETECTION"

	maxVisionLabels = 10
)

type VisionResult struct {
	Labels []string
	Text   string
}

type VisionClient interface {
	Annotate(ctx context.Context, imageBase64 string, features ...VisionFeature) (VisionResult, error)
}

type GoogleVisionClient struct {
	service *vision.Service
	timeout time.Duration
	logger  *zap.Logger
}

// NewGoogleVisionClient returns a client that reports errNotConfigured on use
// when no API key is set.
func NewGoogleVisionClient(ctx context.Context, cfg config.Config, logger *zap.Logger, extra ...option.ClientOption) (*GoogleVisionClient, error) {
	client := &GoogleVisionClient{timeout: upstreamTimeout(cfg), logger: logger}
	apiKey := strings.TrimSpace(cfg.VisionAPIKey)
	if apiKey == "" && len(extra) == 0 {
		return client, nil
	}

	opts := make([]option.ClientOption, 0, len(extra)+2)
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if endpoint := strings.TrimSpace(cfg.VisionEndpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	opts = append(opts, extra...)

	service, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision service: %w", err)
	}
	client.service = service
	return client, nil
}

func (c *GoogleVisionClient) Annotate(ctx context.Context, imageBase64 string, features ...VisionFeature) (VisionResult, error) {
	if c.service == nil {
		return VisionResult{}, fmt.Errorf("%w: GOOGLE_VISION_API_KEY", errNotConfigured)
	}
	if len(features) == 0 {
		features = []VisionFeature{FeatureText}
	}
	requested := make([]*vision.Feature, 0, len(features))
	for _, feature := range features {
		item := &vision.Feature{Type: string(feature)}
		if feature == FeatureLabels {
			item.MaxResults = maxVisionLabels
		}
		requested = append(requested, item)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.service.Images.Annotate(&vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: imageBase64},
			Features: requested,
		}},
	}).Context(ctx).Do()
	if err != nil {
		return VisionResult{}, &upstreamError{Service: "vision", Err: err}
	}
	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return VisionResult{}, &upstreamError{Service: "vision", Err: errors.New("no responses field")}
	}
	first := resp.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return VisionResult{}, &upstreamError{Service: "vision", Err: errors.New(first.Error.Message)}
	}

	result := VisionResult{Labels: make([]string, 0, len(first.LabelAnnotations))}
	for _, label := range first.LabelAnnotations {
		if label == nil {
			continue
		}
		if description := strings.TrimSpace(label.Description); description != "" {
			result.Labels = append(result.Labels, description)
		}
	}
	switch {
	case first.FullTextAnnotation != nil:
		result.Text = strings.TrimSpace(first.FullTextAnnotation.Text)
	case len(first.TextAnnotations) > 0 && first.TextAnnotations[0] != nil:
		result.Text = strings.TrimSpace(first.TextAnnotations[0].Description)
	}

	c.logger.Debug("vision annotate completed",
		zap.Int("label_count", len(result.Labels)),
		zap.Int("text_length", len(result.Text)),
	)
	return result, nil
}
