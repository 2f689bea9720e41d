package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apppayment "github.com/minimart/backend/internal/application/payment"
)

const defaultEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// GoogleVisionExtractor extracts text from images using the Google Cloud
// Vision REST API with an API key.
type GoogleVisionExtractor struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// Option configures a GoogleVisionExtractor
type Option func(*GoogleVisionExtractor)

// WithEndpoint overrides the Vision API endpoint (used in tests)
func WithEndpoint(endpoint string) Option {
	return func(e *GoogleVisionExtractor) {
		e.endpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(e *GoogleVisionExtractor) {
		e.client = client
	}
}

// NewGoogleVisionExtractor creates a new GoogleVisionExtractor
func NewGoogleVisionExtractor(apiKey string, timeout time.Duration, opts ...Option) *GoogleVisionExtractor {
	e := &GoogleVisionExtractor{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type annotateRequest struct {
	Requests []annotateRequestEntry `json:"requests"`
}

type annotateRequestEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// ExtractText runs TEXT_DETECTION on the image and returns the full detected
// text. Returns ErrNoTextDetected when the API finds nothing.
func (e *GoogleVisionExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	payload := annotateRequest{
		Requests: []annotateRequestEntry{
			{
				Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
				Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"?key="+url.QueryEscape(e.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("vision API returned status %d: %s", resp.StatusCode, snippet)
	}

	var decoded annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode vision response: %w", err)
	}

	if len(decoded.Responses) == 0 {
		return "", apppayment.ErrNoTextDetected
	}

	first := decoded.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("vision API error %d: %s", first.Error.Code, first.Error.Message)
	}
	if first.FullTextAnnotation != nil && first.FullTextAnnotation.Text != "" {
		return first.FullTextAnnotation.Text, nil
	}
	if len(first.TextAnnotations) > 0 && first.TextAnnotations[0].Description != "" {
		return first.TextAnnotations[0].Description, nil
	}
	return "", apppayment.ErrNoTextDetected
}

// Ensure GoogleVisionExtractor implements TextExtractor
var _ apppayment.TextExtractor = (*GoogleVisionExtractor)(nil)
