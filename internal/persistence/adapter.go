package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/metrics"
	"social-support-wizard/internal/models"
)

const defaultOpTimeout = 3 * time.Second

// Adapter is the save/load/clear surface the wizard uses. Failures are logged and counted,
// never returned.
type Adapter struct {
	backend Backend
	log     logger.Logger
	timeout time.Duration
}

func NewAdapter(backend Backend, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Adapter{
		backend: backend,
		log:     log.WithFields(map[string]interface{}{"component": "persistence", "backend": backend.Name()}),
		timeout: defaultOpTimeout,
	}
}

// Save stores value as JSON under key.
func (a *Adapter) Save(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		a.fail("save", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.backend.Put(ctx, key, data); err != nil {
		a.fail("save", key, err)
		return
	}
	a.ok("save")
}

// Load decodes the value under key into out and reports whether one was found.
func (a *Adapter) Load(ctx context.Context, key string, out interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	data, err := a.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		a.ok("load")
		return false
	}
	if err != nil {
		a.fail("load", key, err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		a.fail("load", key, err)
		return false
	}
	a.ok("load")
	return true
}

// LoadForm returns the stored aggregate, normalized, if any.
func (a *Adapter) LoadForm(ctx context.Context, key string) (models.FormState, bool) {
	var state models.FormState
	if !a.Load(ctx, key, &state) {
		return models.FormState{}, false
	}
	return state.Normalize(), true
}

// Clear removes key.
func (a *Adapter) Clear(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.backend.Delete(ctx, key); err != nil {
		a.fail("clear", key, err)
		return
	}
	a.ok("clear")
}

func (a *Adapter) ok(op string) {
	metrics.DraftOperations.WithLabelValues(a.backend.Name(), op, "ok").Inc()
}

func (a *Adapter) fail(op, key string, err error) {
	metrics.DraftOperations.WithLabelValues(a.backend.Name(), op, "error").Inc()
	classified := apperrors.Normalize(err)
	a.log.Warn("draft "+op+" failed", map[string]interface{}{
		"key":   key,
		"kind":  string(classified.Kind),
		"error": err,
	})
}
