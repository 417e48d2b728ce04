package submission

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/models"
)

// MockSubmitter simulates a backend: it waits a random delay and fails at a configured rate.
type MockSubmitter struct {
	minDelay    time.Duration
	maxDelay    time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewMockSubmitter(minDelay, maxDelay time.Duration, failureRate float64) *MockSubmitter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &MockSubmitter{
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

func (m *MockSubmitter) Name() string { return "mock" }

func (m *MockSubmitter) Submit(ctx context.Context, _ *models.ApplicationPayload) (*models.SubmissionResult, error) {
	delay, fail := m.roll()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, apperrors.Normalize(ctx.Err())
	}

	if fail {
		return nil, apperrors.New(apperrors.KindServerError).WithProvider(m.Name())
	}

	now := m.now()
	return newResult(fmt.Sprintf("APP-%d", now.UnixMilli()), now), nil
}

func (m *MockSubmitter) roll() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delay := m.minDelay
	if span := m.maxDelay - m.minDelay; span > 0 {
		delay += time.Duration(m.rng.Int63n(int64(span) + 1))
	}
	return delay, m.rng.Float64() < m.failureRate
}
