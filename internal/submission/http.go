package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	httpclient "social-support-wizard/internal/common/http"
	"social-support-wizard/internal/models"
)

// HTTPSubmitter posts the payload to {baseURL}/api/applications.
type HTTPSubmitter struct {
	baseURL string
	client  *httpclient.Client
	timeout time.Duration
}

func NewHTTPSubmitter(baseURL string, client *httpclient.Client, timeout time.Duration) *HTTPSubmitter {
	if client == nil {
		client = httpclient.NewClient(0)
	}
	return &HTTPSubmitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		timeout: timeout,
	}
}

func (h *HTTPSubmitter) Name() string { return "http" }

func (h *HTTPSubmitter) Submit(ctx context.Context, payload *models.ApplicationPayload) (*models.SubmissionResult, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp, err := h.client.PostJSON(ctx, h.baseURL+"/api/applications", nil, payload)
	if err != nil {
		return nil, apperrors.Normalize(err).WithProvider(h.Name())
	}

	if !resp.OK() {
		return nil, classifySubmitStatus(resp.StatusCode, resp.Body).WithProvider(h.Name())
	}

	var result models.SubmissionResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidResponse, err).WithProvider(h.Name())
	}
	if result.ApplicationID == "" {
		return nil, apperrors.New(apperrors.KindInvalidResponse).WithProvider(h.Name())
	}
	if result.Status == "" {
		result.Status = models.StatusSubmitted
	}
	if result.Message == "" {
		result.Message = ConfirmationMessage
	}
	return &result, nil
}

func classifySubmitStatus(status int, body []byte) *apperrors.Error {
	switch status {
	case http.StatusBadRequest:
		return apperrors.New(apperrors.KindValidationError)
	case http.StatusUnauthorized:
		return apperrors.New(apperrors.KindUnauthorized)
	case http.StatusInternalServerError:
		return apperrors.New(apperrors.KindServerError)
	default:
		return apperrors.NewAPIError(status, bodyMessage(body))
	}
}

// bodyMessage pulls a "message" or "error" string out of a JSON error body.
func bodyMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Error
}
