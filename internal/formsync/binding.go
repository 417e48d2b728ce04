// Package formsync keeps the editable field layer and the form store in agreement.
package formsync

import (
	"sort"
	"sync"

	"social-support-wizard/internal/common/validation"
	"social-support-wizard/internal/models"
)

// Binding holds the values the user is editing for the active step, with per-field dirty flags
// and validation errors.
type Binding struct {
	mu       sync.Mutex
	values   models.StepData
	dirty    map[string]bool
	errors   map[string]validation.ValidationError
	nextID   int
	watchers map[int]func(field, value string)
}

func NewBinding() *Binding {
	return &Binding{
		values:   models.StepData{},
		dirty:    map[string]bool{},
		errors:   map[string]validation.ValidationError{},
		watchers: map[int]func(string, string){},
	}
}

// Set records a user edit and notifies watchers.
func (b *Binding) Set(field, value string) {
	b.mu.Lock()
	b.values[field] = value
	b.dirty[field] = true
	watchers := b.snapshotWatchers()
	b.mu.Unlock()

	for _, fn := range watchers {
		fn(field, value)
	}
}

// Apply overwrites every value with values. It does not notify watchers, does not mark fields
// dirty and does not validate.
func (b *Binding) Apply(values models.StepData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = values.Clone()
	b.dirty = map[string]bool{}
}

func (b *Binding) Values() models.StepData {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values.Clone()
}

func (b *Binding) Get(field string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values[field]
}

func (b *Binding) Dirty(field string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty[field]
}

// SetErrors replaces the error set.
func (b *Binding) SetErrors(errs []validation.ValidationError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = make(map[string]validation.ValidationError, len(errs))
	for _, e := range errs {
		if _, seen := b.errors[e.Field]; !seen {
			b.errors[e.Field] = e
		}
	}
}

func (b *Binding) Errors() map[string]validation.ValidationError {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]validation.ValidationError, len(b.errors))
	for k, v := range b.errors {
		out[k] = v
	}
	return out
}

func (b *Binding) ClearErrors() {
	b.SetErrors(nil)
}

// Watch registers fn for user edits.
func (b *Binding) Watch(fn func(field, value string)) (unwatch func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.watchers[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.watchers, id)
	}
}

func (b *Binding) snapshotWatchers() []func(string, string) {
	ids := make([]int, 0, len(b.watchers))
	for id := range b.watchers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(string, string), 0, len(ids))
	for _, id := range ids {
		out = append(out, b.watchers[id])
	}
	return out
}
