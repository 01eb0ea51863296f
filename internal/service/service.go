// Package service talks to the external review-state service.
//
// The contract is a single endpoint: GET with a file_name query parameter
// returns the file's review state, POST with a JSON body updates a line
// range. Non-2xx responses are mapped to ErrUnexpectedStatus so callers can
// use errors.Is.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sokinpui/linereview/model"
)

//go:generate mockgen -source=service.go -destination=../mock/review_service_mock.go -package=mock

var ErrUnexpectedStatus = errors.New("unexpected status from review service")

// RequestIDHeader carries the task request ID to the service.
const RequestIDHeader = "X-Request-ID"

// ReviewService is the review-state service as seen by the annotator.
type ReviewService interface {
	// FetchState returns the review state of fileName.
	FetchState(ctx context.Context, fileName string) (model.ReviewState, error)
	// UpdateState applies an action to a line range. The response body is
	// not consumed.
	UpdateState(ctx context.Context, req model.UpdateRequest) error
}

// HTTPConfig configures the HTTP review service client.
type HTTPConfig struct {
	// URL is the full reviews endpoint, suffix included.
	URL     string
	Timeout time.Duration
}

type httpReviewService struct {
	client *resty.Client
	url    string
}

// NewHTTPReviewService returns a ReviewService backed by resty.
func NewHTTPReviewService(cfg HTTPConfig) ReviewService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &httpReviewService{client: cli, url: cfg.URL}
}

func (h *httpReviewService) FetchState(ctx context.Context, fileName string) (model.ReviewState, error) {
	resp, err := h.request(ctx).
		SetQueryParam("file_name", fileName).
		Get(h.url)
	if err != nil {
		return model.ReviewState{}, fmt.Errorf("get review state request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return model.ReviewState{}, err
	}

	var state model.ReviewState
	if err = json.Unmarshal(resp.Body(), &state); err != nil {
		return model.ReviewState{}, fmt.Errorf("decode review state response: %w", err)
	}
	return state, nil
}

func (h *httpReviewService) UpdateState(ctx context.Context, req model.UpdateRequest) error {
	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(h.url)
	if err != nil {
		return fmt.Errorf("update review state request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpReviewService) request(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if id := RequestIDFromContext(ctx); id != "" {
		req.SetHeader(RequestIDHeader, id)
	}
	return req
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("%w: http %d: %s", ErrUnexpectedStatus, resp.StatusCode(), body)
}

type requestIDKey struct{}

// WithRequestID attaches a request ID that is sent with every request made
// under ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID attached to ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
