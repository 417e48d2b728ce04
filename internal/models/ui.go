// internal/models/ui.go
package models

// Language is the active locale.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// Direction is "rtl" for Arabic and "ltr" otherwise.
func (l Language) Direction() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Toggle flips between English and Arabic.
func (l Language) Toggle() Language {
	if l == Arabic {
		return English
	}
	return Arabic
}

// ParseLanguage accepts "en" or "ar" and falls back to English.
func ParseLanguage(s string) Language {
	if Language(s) == Arabic {
		return Arabic
	}
	return English
}

// UIState is the sibling aggregate holding transient interface state.
// AISuggestion, AIField and ShowAIModal are set and cleared together.
type UIState struct {
	Language        Language          `json:"language"`
	IsLoading       bool              `json:"isLoading"`
	AISuggestion    string            `json:"aiSuggestion,omitempty"`
	AIField         string            `json:"aiField,omitempty"`
	ShowAIModal     bool              `json:"showAIModal"`
	IsSubmitting    bool              `json:"isSubmitting"`
	SubmissionError string            `json:"submissionError,omitempty"`
	Pending         map[string]string `json:"pending,omitempty"` // field -> provider
	Alert           string            `json:"alert,omitempty"`
	Confirmation    *SubmissionResult `json:"confirmation,omitempty"`
}

func InitialUIState(lang Language) UIState {
	return UIState{
		Language: lang,
		Pending:  map[string]string{},
	}
}

func (u UIState) Clone() UIState {
	out := u
	out.Pending = make(map[string]string, len(u.Pending))
	for k, v := range u.Pending {
		out.Pending[k] = v
	}
	if u.Confirmation != nil {
		c := *u.Confirmation
		out.Confirmation = &c
	}
	return out
}

// ModalConsistent reports whether the suggestion, target field and modal flag agree.
func (u UIState) ModalConsistent() bool {
	hasSuggestion := u.AISuggestion != ""
	hasField := u.AIField != ""
	return u.ShowAIModal == hasSuggestion && hasSuggestion == hasField
}
