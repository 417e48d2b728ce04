// internal/suggestion/classify.go
package suggestion

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "social-support-wizard/internal/common/errors"
)

// classifyStatus maps a non-2xx provider reply to exactly one taxonomy value.
func classifyStatus(status int, body []byte) *apperrors.Error {
	switch status {
	case http.StatusUnauthorized:
		return apperrors.New(apperrors.KindAPIKeyInvalid)
	case http.StatusTooManyRequests:
		if mentionsQuota(body) {
			return apperrors.New(apperrors.KindRateLimitExceeded)
		}
		return apperrors.New(apperrors.KindRateLimit)
	case http.StatusInternalServerError:
		return apperrors.New(apperrors.KindServerError)
	case http.StatusServiceUnavailable:
		return apperrors.New(apperrors.KindServiceUnavailable)
	default:
		return apperrors.NewAPIError(status, providerMessage(body))
	}
}

// mentionsQuota looks for quota or rate-limit-exceeded phrasing in the provider's error.
func mentionsQuota(body []byte) bool {
	text := providerMessage(body)
	var parsed errorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		text += " " + parsed.Error.Type
		if code, ok := parsed.Error.Code.(string); ok {
			text += " " + code
		}
	} else if text == "" {
		text = string(body)
	}
	text = strings.ToLower(text)
	return strings.Contains(text, "rate_limit_exceeded") || strings.Contains(text, "quota")
}

// providerMessage extracts the human-readable error message, "" when there is none.
func providerMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return strings.TrimSpace(parsed.Error.Message)
	}
	return strings.TrimSpace(parsed.Message)
}
