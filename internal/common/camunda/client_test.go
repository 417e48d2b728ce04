package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "social-support-wizard/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(retries int) *Client {
	return &Client{config: &ClientConfig{
		RetryConfig: &RetryConfig{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}}
}

func TestExecuteWithRetry_RetriesTransientFailures(t *testing.T) {
	c := testClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return int64(42), nil
	}, "create-instance")

	require.NoError(t, err)
	assert.Equal(t, int64(42), result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	c := testClient(1)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("connection reset by peer")
	}, "create-instance")

	assert.Equal(t, 2, calls)
	assert.Equal(t, apperrors.KindServerError, apperrors.KindOf(err))
}

func TestExecuteWithRetry_DoesNotRetryPermanentFailures(t *testing.T) {
	c := testClient(3)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("rpc error: code = NotFound desc = process not found")
	}, "create-instance")

	assert.Equal(t, 1, calls)
	assert.Equal(t, apperrors.KindServerError, apperrors.KindOf(err))
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		err  error
		want apperrors.Kind
	}{
		{context.DeadlineExceeded, apperrors.KindTimeout},
		{errors.New("rpc error: code = DeadlineExceeded desc = context deadline exceeded"), apperrors.KindTimeout},
		{errors.New("rpc error: code = Unauthenticated desc = bad token"), apperrors.KindUnauthorized},
		{errors.New("rpc error: code = Internal desc = boom"), apperrors.KindServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := mapZeebeError(tt.err, "create-instance", 0)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
