// Package detector wraps the hosted image-classification service that
// verifies a submitted photo depicts a real reported issue.
package detector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"grievance-processor/metrics"
	"grievance-processor/models"
)

// Client handles communication with the hosted inference service.
type Client struct {
	baseURL       string
	apiKey        string
	modelID       string
	modelVersion  string
	minConfidence int
	httpClient    *http.Client
}

// inferenceResponse is the prediction list returned by the service, ordered
// by its own ranking (highest confidence first). An empty list is a valid
// "no detection" response, not an error.
type inferenceResponse struct {
	Predictions []prediction `json:"predictions"`
}

type prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// NewClient creates a new inference client. minConfidence (percent) is
// applied service-side: predictions below it never reach this adapter.
func NewClient(baseURL, apiKey, modelID, modelVersion string, minConfidence int, timeout time.Duration) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		modelID:       modelID,
		modelVersion:  modelVersion,
		minConfidence: minConfidence,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Detect classifies the image at imagePath. It never returns an error: an
// empty prediction list yields {false, "none", 0.0} and any service or
// transport failure yields {false, "error", 0.0}.
func (c *Client) Detect(ctx context.Context, imagePath string) models.ClassificationResult {
	result, err := c.infer(ctx, imagePath)
	if err != nil {
		log.Errorf("Image classification failed for %s: %v", imagePath, err)
		metrics.DetectionFailureTotal.Inc()
		return models.ClassificationResult{Detected: false, Label: "error", Confidence: 0.0}
	}

	if len(result.Predictions) == 0 {
		log.Infof("No detection in %s", imagePath)
		return models.ClassificationResult{Detected: false, Label: "none", Confidence: 0.0}
	}

	top := result.Predictions[0]
	log.Infof("Detected %q in %s with confidence %.2f", top.Class, imagePath, top.Confidence)
	return models.ClassificationResult{
		Detected:   true,
		Label:      top.Class,
		Confidence: top.Confidence,
	}
}

func (c *Client) infer(ctx context.Context, imagePath string) (*inferenceResponse, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	base64Image := base64.StdEncoding.EncodeToString(imageData)

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("confidence", strconv.Itoa(c.minConfidence))
	inferURL := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.modelID, c.modelVersion, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inferURL, strings.NewReader(base64Image))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference service returned status %d", resp.StatusCode)
	}

	var response inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}
