package persistence

import (
	"context"
	"errors"
	"testing"

	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/metrics"
	"social-support-wizard/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingBackend struct{ err error }

func (f failingBackend) Name() string { return "failing" }
func (f failingBackend) Put(context.Context, string, []byte) error {
	return f.err
}
func (f failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, f.err
}
func (f failingBackend) Delete(context.Context, string) error {
	return f.err
}

func TestAdapter_RoundTrip(t *testing.T) {
	a := NewAdapter(NewMemoryBackend(), logger.NewTestLogger(t))
	ctx := context.Background()

	state := models.InitialFormState()
	state.Step1["name"] = "Ann"
	state.CurrentStep = 2
	a.Save(ctx, "socialSupportFormData", state)

	got, ok := a.LoadForm(ctx, "socialSupportFormData")
	require.True(t, ok)
	assert.True(t, state.Equal(got))

	a.Clear(ctx, "socialSupportFormData")
	_, ok = a.LoadForm(ctx, "socialSupportFormData")
	assert.False(t, ok)
}

func TestAdapter_SwallowsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := NewAdapter(failingBackend{err: errors.New("quota exceeded")}, logger.NewZapAdapter(zap.New(core)))
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.DraftOperations.WithLabelValues("failing", "save", "error"))

	assert.NotPanics(t, func() {
		a.Save(ctx, "k", map[string]string{"a": "b"})
		var out map[string]string
		assert.False(t, a.Load(ctx, "k", &out))
		a.Clear(ctx, "k")
	})

	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, "draft save failed", logs.All()[0].Message)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DraftOperations.WithLabelValues("failing", "save", "error")))
}

func TestAdapter_CorruptDraft(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(context.Background(), "k", []byte("not json")))

	a := NewAdapter(backend, nil)
	_, ok := a.LoadForm(context.Background(), "k")
	assert.False(t, ok)
}

func TestAdapter_NormalizesLoadedDraft(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(context.Background(), "k", []byte(`{"step1":{"name":"Ann"},"currentStep":9}`)))

	got, ok := NewAdapter(backend, nil).LoadForm(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, 3, got.CurrentStep)
	assert.Equal(t, "Ann", got.Step1["name"])
	assert.NotNil(t, got.Step2)
}
