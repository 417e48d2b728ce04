package store

import (
	"sync"

	"social-support-wizard/internal/models"
)

// UIStore holds language, suggestion and submission state. Every method keeps
// AISuggestion, AIField and ShowAIModal in agreement.
type UIStore struct {
	mu      sync.RWMutex
	state   models.UIState
	changes hub[models.UIState]
}

func NewUIStore(lang models.Language) *UIStore {
	return &UIStore{state: models.InitialUIState(lang)}
}

func (u *UIStore) State() models.UIState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state.Clone()
}

func (u *UIStore) Language() models.Language {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state.Language
}

// Subscribe registers fn for every subsequent state.
func (u *UIStore) Subscribe(fn func(models.UIState)) (unsubscribe func()) {
	return u.changes.subscribe(fn)
}

func (u *UIStore) SetLanguage(lang models.Language) {
	u.update(func(s *models.UIState) bool {
		s.Language = lang
		return true
	})
}

func (u *UIStore) SetLoading(loading bool) {
	u.update(func(s *models.UIState) bool {
		s.IsLoading = loading
		return true
	})
}

// SetAISuggestion publishes a suggestion for field and opens the modal. An empty text or field
// closes the modal instead.
func (u *UIStore) SetAISuggestion(field, text string) {
	u.update(func(s *models.UIState) bool {
		if field == "" || text == "" {
			closeModal(s)
			return true
		}
		s.AISuggestion = text
		s.AIField = field
		s.ShowAIModal = true
		return true
	})
}

func (u *UIStore) CloseAIModal() {
	u.update(func(s *models.UIState) bool {
		closeModal(s)
		return true
	})
}

func closeModal(s *models.UIState) {
	s.ShowAIModal = false
	s.AISuggestion = ""
	s.AIField = ""
}

func (u *UIStore) SetSubmitting(submitting bool) {
	u.update(func(s *models.UIState) bool {
		s.IsSubmitting = submitting
		return true
	})
}

// SetSubmissionError stores msg; an empty msg clears it.
func (u *UIStore) SetSubmissionError(msg string) {
	u.update(func(s *models.UIState) bool {
		s.SubmissionError = msg
		return true
	})
}

func (u *UIStore) ResetSubmissionState() {
	u.update(func(s *models.UIState) bool {
		s.IsSubmitting = false
		s.SubmissionError = ""
		return true
	})
}

// BeginSuggestion marks field as pending on provider. It refuses when the field already has a
// pending request from any provider.
func (u *UIStore) BeginSuggestion(field, provider string) bool {
	ok := false
	u.update(func(s *models.UIState) bool {
		if _, busy := s.Pending[field]; busy {
			return false
		}
		s.Pending[field] = provider
		s.IsLoading = true
		ok = true
		return true
	})
	return ok
}

// EndSuggestion clears the pending marker set by BeginSuggestion for the same provider.
func (u *UIStore) EndSuggestion(field, provider string) {
	u.update(func(s *models.UIState) bool {
		if s.Pending[field] != provider {
			return false
		}
		delete(s.Pending, field)
		s.IsLoading = len(s.Pending) > 0
		return true
	})
}

// PendingProvider returns the provider working on field, or "".
func (u *UIStore) PendingProvider(field string) string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state.Pending[field]
}

func (u *UIStore) SetAlert(msg string) {
	u.update(func(s *models.UIState) bool {
		s.Alert = msg
		return true
	})
}

func (u *UIStore) ClearAlert() { u.SetAlert("") }

func (u *UIStore) SetConfirmation(res *models.SubmissionResult) {
	u.update(func(s *models.UIState) bool {
		if res == nil {
			s.Confirmation = nil
			return true
		}
		c := *res
		s.Confirmation = &c
		return true
	})
}

func (u *UIStore) ClearConfirmation() { u.SetConfirmation(nil) }

func (u *UIStore) update(mutate func(*models.UIState) bool) {
	u.mu.Lock()
	if !mutate(&u.state) {
		u.mu.Unlock()
		return
	}
	snapshot := u.state.Clone()
	u.mu.Unlock()

	u.changes.publish(snapshot)
}
