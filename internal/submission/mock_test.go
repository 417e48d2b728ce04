package submission

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "social-support-wizard/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSubmitter_Success(t *testing.T) {
	m := NewMockSubmitter(5*time.Millisecond, 10*time.Millisecond, 0)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	start := time.Now()
	res, err := m.Submit(context.Background(), validPayload(t))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	assert.Equal(t, "APP-1709287200000", res.ApplicationID)
	assert.True(t, strings.HasPrefix(res.ApplicationID, "APP-"))
	assert.Equal(t, "submitted", res.Status)
	assert.Equal(t, ConfirmationMessage, res.Message)
}

func TestMockSubmitter_AlwaysFails(t *testing.T) {
	m := NewMockSubmitter(0, 0, 1)
	_, err := m.Submit(context.Background(), validPayload(t))
	assert.Equal(t, apperrors.KindServerError, apperrors.KindOf(err))
}

func TestMockSubmitter_DelayWithinBounds(t *testing.T) {
	m := NewMockSubmitter(10*time.Millisecond, 20*time.Millisecond, 0)
	for i := 0; i < 50; i++ {
		d, fail := m.roll()
		assert.False(t, fail)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.LessOrEqual(t, d, 20*time.Millisecond)
	}
}

func TestMockSubmitter_ContextDeadline(t *testing.T) {
	m := NewMockSubmitter(time.Second, time.Second, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Submit(ctx, validPayload(t))
	assert.Equal(t, apperrors.KindTimeout, apperrors.KindOf(err))
}
