package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

const (
	detectTimeout    = 5 * time.Minute
	detectRetryCount = 2
	detectRetryDelay = 2 * time.Second
	uploadQuality    = 95
)

// ZeroShotClient обращается к развёрнутой zero-shot модели (Grounding-DINO и т.п.)
// через HTTP API задачи zero-shot-object-detection.
type ZeroShotClient struct {
	*resty.Client
}

type zeroShotRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters zeroShotParams `json:"parameters"`
}

type zeroShotParams struct {
	CandidateLabels []string `json:"candidate_labels"`
	BoxThreshold    float64  `json:"box_threshold"`
	TextThreshold   float64  `json:"text_threshold"`
}

type zeroShotResult struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
	Box   struct {
		XMin float64 `json:"xmin"`
		YMin float64 `json:"ymin"`
		XMax float64 `json:"xmax"`
		YMax float64 `json:"ymax"`
	} `json:"box"`
}

// NewZeroShotClient создаёт клиента; hc может быть nil.
func NewZeroShotClient(baseURL, token string, hc *http.Client) *ZeroShotClient {
	if hc == nil {
		hc = &http.Client{}
	}

	r := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(detectTimeout).
		SetRetryCount(detectRetryCount).
		SetRetryWaitTime(detectRetryDelay).
		SetHeader("Accept", "application/json")
	if token != "" {
		r.SetAuthToken(token)
	}

	return &ZeroShotClient{Client: r}
}

// Detect отправляет изображение и текстовый запрос, возвращает прямоугольники
// с оценкой выше порога.
func (c *ZeroShotClient) Detect(ctx context.Context, img image.Image, query entity.DetectionQuery) ([]entity.Detection, error) {
	if query.ModelID == "" {
		return nil, errors.New("model id is required")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: uploadQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	body := zeroShotRequest{
		Inputs: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Parameters: zeroShotParams{
			CandidateLabels: []string{query.Prompt},
			BoxThreshold:    query.BoxThreshold,
			TextThreshold:   query.TextThreshold,
		},
	}

	var results []zeroShotResult
	resp, err := c.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&results).
		Post("/" + query.ModelID)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect with detector: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("detector returned %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}

	detections := make([]entity.Detection, 0, len(results))
	for _, r := range results {
		if r.Score <= query.BoxThreshold {
			continue
		}
		detections = append(detections, entity.Detection{
			Box:   entity.Box{XMin: r.Box.XMin, YMin: r.Box.YMin, XMax: r.Box.XMax, YMax: r.Box.YMax},
			Score: r.Score,
			Label: r.Label,
		})
	}

	return detections, nil
}

var _ port.ZeroShotDetector = (*ZeroShotClient)(nil)
