// Package store holds the wizard's two state containers: the canonical form aggregate and the
// transient UI state around suggestions and submission.
package store

import (
	"sync"

	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/models"
)

// Origin tags who caused a change so listeners can skip their own writes.
type Origin int

const (
	OriginUser Origin = iota
	OriginBinding
	OriginSystem
)

func (o Origin) String() string {
	switch o {
	case OriginBinding:
		return "binding"
	case OriginSystem:
		return "system"
	default:
		return "user"
	}
}

// ChangeKind says which reducer produced a change.
type ChangeKind int

const (
	ChangeUpdate ChangeKind = iota
	ChangeStep
	ChangeReset
	ChangeHydrate
)

// Change is delivered to listeners after every mutation.
type Change struct {
	Kind       ChangeKind
	Origin     Origin
	Step       int // group touched by ChangeUpdate
	Prev       models.FormState
	Next       models.FormState
	Generation uint64
}

// Reset reports a wholesale replacement of the aggregate.
func (c Change) Reset() bool {
	return c.Kind == ChangeReset || c.Kind == ChangeHydrate
}

// StepChanged reports whether the active step differs between Prev and Next.
func (c Change) StepChanged() bool {
	return c.Prev.CurrentStep != c.Next.CurrentStep
}

// reduceUpdateStep shallow-merges partial into group n.
func reduceUpdateStep(s models.FormState, n int, partial models.StepData) models.FormState {
	return s.WithGroup(n, s.Group(n).Merge(partial))
}

// reduceSetStep moves to step n, clamped into [1,3].
func reduceSetStep(s models.FormState, n int) models.FormState {
	out := s.Clone()
	out.CurrentStep = models.ClampStep(n)
	return out
}

func reduceReset() models.FormState {
	return models.InitialFormState()
}

// FormStore is the single source of truth for the three step groups and the active step.
type FormStore struct {
	mu         sync.RWMutex
	state      models.FormState
	generation uint64
	changes    hub[Change]
	log        logger.Logger
}

func NewFormStore(log logger.Logger) *FormStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &FormStore{
		state: models.InitialFormState(),
		log:   log.WithFields(map[string]interface{}{"component": "form_store"}),
	}
}

// State returns a deep copy of the aggregate.
func (s *FormStore) State() models.FormState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *FormStore) CurrentStep() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentStep
}

// Generation increases on every reset and hydrate; results computed against an older
// generation are stale.
func (s *FormStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Subscribe registers fn for every subsequent change.
func (s *FormStore) Subscribe(fn func(Change)) (unsubscribe func()) {
	return s.changes.subscribe(fn)
}

func (s *FormStore) UpdateStep1(partial models.StepData) { s.UpdateStep(1, partial, OriginUser) }
func (s *FormStore) UpdateStep2(partial models.StepData) { s.UpdateStep(2, partial, OriginUser) }
func (s *FormStore) UpdateStep3(partial models.StepData) { s.UpdateStep(3, partial, OriginUser) }

// UpdateStep merges partial into group n. Keys not in partial keep their values.
func (s *FormStore) UpdateStep(n int, partial models.StepData, origin Origin) {
	if n < models.MinStep || n > models.MaxStep {
		s.log.Warn("update for unknown step ignored", map[string]interface{}{"step": n})
		return
	}
	s.apply(ChangeUpdate, origin, n, func(cur models.FormState) models.FormState {
		return reduceUpdateStep(cur, n, partial)
	})
}

// SetCurrentStep moves to step n; values outside [1,3] are clamped.
func (s *FormStore) SetCurrentStep(n int) {
	s.apply(ChangeStep, OriginUser, 0, func(cur models.FormState) models.FormState {
		return reduceSetStep(cur, n)
	})
}

// ResetForm restores the initial all-empty state on step 1.
func (s *FormStore) ResetForm() {
	s.apply(ChangeReset, OriginUser, 0, func(models.FormState) models.FormState {
		return reduceReset()
	})
}

// Hydrate replaces the aggregate wholesale, e.g. with a resumed draft.
func (s *FormStore) Hydrate(state models.FormState) {
	s.apply(ChangeHydrate, OriginSystem, 0, func(models.FormState) models.FormState {
		return state.Normalize()
	})
}

func (s *FormStore) apply(kind ChangeKind, origin Origin, step int, reduce func(models.FormState) models.FormState) {
	s.mu.Lock()
	prev := s.state
	next := reduce(prev)
	s.state = next
	if kind == ChangeReset || kind == ChangeHydrate {
		s.generation++
	}
	change := Change{
		Kind:       kind,
		Origin:     origin,
		Step:       step,
		Prev:       prev.Clone(),
		Next:       next.Clone(),
		Generation: s.generation,
	}
	s.mu.Unlock()

	s.changes.publish(change)
}
