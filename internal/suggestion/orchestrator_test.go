package suggestion

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/i18n"
	"social-support-wizard/internal/models"
	"social-support-wizard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSuggester struct {
	name    string
	display string
	text    string
	err     error
	calls   int32
	onCall  func()
}

func (s *stubSuggester) Name() string        { return s.name }
func (s *stubSuggester) DisplayName() string { return s.display }

func (s *stubSuggester) Suggest(ctx context.Context, field, userContext string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func failing(name, display string, kind apperrors.Kind) *stubSuggester {
	return &stubSuggester{name: name, display: display, err: apperrors.New(kind)}
}

func succeeding(name, display, text string) *stubSuggester {
	return &stubSuggester{name: name, display: display, text: text}
}

func newOrchestrator(t *testing.T, primary, secondary Suggester, policy Policy) (*Orchestrator, *store.UIStore, *i18n.Catalog) {
	ui := store.NewUIStore(models.English)
	catalog := i18n.MustLoad()
	return NewOrchestrator(primary, secondary, policy, ui, catalog, logger.NewTestLogger(t)), ui, catalog
}

func TestFallback_PrimaryRateLimitedSecondarySucceeds(t *testing.T) {
	primary := failing("mistral", "Mistral AI", apperrors.KindRateLimit)
	secondary := succeeding("openai", "OpenAI", "I need support because...")
	o, ui, _ := newOrchestrator(t, primary, secondary, PolicyFallback)

	out, err := o.Request(context.Background(), Request{Field: models.FieldReasonForApplying, Context: "ctx"})
	require.NoError(t, err)

	st := ui.State()
	assert.Equal(t, "I need support because...", st.AISuggestion)
	assert.Equal(t, models.FieldReasonForApplying, st.AIField)
	assert.True(t, st.ShowAIModal)
	assert.Empty(t, st.Alert)
	assert.False(t, st.IsLoading)

	assert.Equal(t, "openai", out.Provider)
	assert.Empty(t, out.Message)
	assert.Equal(t, apperrors.KindRateLimit, out.Errors["mistral"].Kind)
}

func TestFallback_PrimarySuccessSkipsSecondary(t *testing.T) {
	primary := succeeding("mistral", "Mistral AI", "draft")
	secondary := succeeding("openai", "OpenAI", "other")
	o, ui, _ := newOrchestrator(t, primary, secondary, PolicyFallback)

	_, err := o.Request(context.Background(), Request{Field: "employmentCircumstances"})
	require.NoError(t, err)

	assert.Equal(t, int32(0), atomic.LoadInt32(&secondary.calls))
	assert.Equal(t, "draft", ui.State().AISuggestion)
}

func TestFallback_LoadingDuringAndClearedAfter(t *testing.T) {
	ui := store.NewUIStore(models.English)
	var loadingSeen []bool
	primary := failing("mistral", "Mistral AI", apperrors.KindTimeout)
	primary.onCall = func() { loadingSeen = append(loadingSeen, ui.State().IsLoading) }
	secondary := failing("openai", "OpenAI", apperrors.KindServerError)
	secondary.onCall = func() { loadingSeen = append(loadingSeen, ui.State().IsLoading) }

	o := NewOrchestrator(primary, secondary, PolicyFallback, ui, i18n.MustLoad(), nil)
	_, err := o.Request(context.Background(), Request{Field: "reasonForApplying"})
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true}, loadingSeen)
	assert.False(t, ui.State().IsLoading)
}

func TestFallback_CombinedMessages(t *testing.T) {
	tests := []struct {
		name      string
		primary   apperrors.Kind
		secondary apperrors.Kind
		want      string
	}{
		{
			name:      "both keys missing",
			primary:   apperrors.KindAPIKeyMissing,
			secondary: apperrors.KindAPIKeyMissing,
			want:      "Both Mistral AI and OpenAI API keys are not configured. Please set MISTRAL_API_KEY or OPENAI_API_KEY in your environment and restart the wizard.",
		},
		{
			name:      "both rate limited",
			primary:   apperrors.KindRateLimit,
			secondary: apperrors.KindRateLimitExceeded,
			want:      "Rate limit exceeded for both Mistral AI and OpenAI. Please wait a few minutes before trying again.",
		},
		{
			name:      "one key missing",
			primary:   apperrors.KindAPIKeyMissing,
			secondary: apperrors.KindTimeout,
			want:      "Both AI services failed. Mistral AI: api_key_missing. OpenAI: timeout. Please try again later.",
		},
		{
			name:      "primary rate limited only",
			primary:   apperrors.KindRateLimitExceeded,
			secondary: apperrors.KindAPIKeyInvalid,
			want:      "Mistral AI rate limit exceeded. OpenAI also failed: api_key_invalid. Please try again later.",
		},
		{
			name:      "primary rate limited secondary timed out",
			primary:   apperrors.KindRateLimit,
			secondary: apperrors.KindTimeout,
			want:      "Mistral AI rate limit exceeded. OpenAI also failed: timeout. Please try again later.",
		},
		{
			name:      "secondary rate limited only",
			primary:   apperrors.KindTimeout,
			secondary: apperrors.KindRateLimit,
			want:      "Both AI services failed. Mistral AI: timeout. OpenAI: rate_limit. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ui, _ := newOrchestrator(t,
				failing("mistral", "Mistral AI", tt.primary),
				failing("openai", "OpenAI", tt.secondary),
				PolicyFallback)

			out, err := o.Request(context.Background(), Request{Field: "reasonForApplying"})
			require.NoError(t, err)

			assert.Equal(t, tt.want, out.Message)
			st := ui.State()
			assert.Equal(t, tt.want, st.Alert)
			assert.False(t, st.ShowAIModal)
			assert.Empty(t, st.AISuggestion)
			assert.False(t, st.IsLoading)
		})
	}
}

func TestFallback_ForeignErrorsBecomeUnknown(t *testing.T) {
	o, _, _ := newOrchestrator(t,
		&stubSuggester{name: "mistral", display: "Mistral AI", err: errors.New("boom")},
		failing("openai", "OpenAI", apperrors.KindServerError),
		PolicyFallback)

	out, err := o.Request(context.Background(), Request{Field: "reasonForApplying"})
	require.NoError(t, err)
	assert.Contains(t, out.Message, "Mistral AI: unknown_error")
}

func TestFallback_ArabicMessage(t *testing.T) {
	o, ui, catalog := newOrchestrator(t,
		failing("mistral", "Mistral AI", apperrors.KindAPIKeyMissing),
		failing("openai", "OpenAI", apperrors.KindAPIKeyMissing),
		PolicyFallback)
	ui.SetLanguage(models.Arabic)

	out, err := o.Request(context.Background(), Request{Field: "reasonForApplying"})
	require.NoError(t, err)
	assert.Equal(t, catalog.Format(models.Arabic, "ai.bothKeysMissing", map[string]string{
		"primary": "Mistral AI", "secondary": "OpenAI",
	}), out.Message)
}

func TestFallback_StaleResultDropped(t *testing.T) {
	var valid atomic.Bool
	valid.Store(true)

	primary := succeeding("mistral", "Mistral AI", "late text")
	primary.onCall = func() { valid.Store(false) }
	o, ui, _ := newOrchestrator(t, primary, succeeding("openai", "OpenAI", "x"), PolicyFallback)

	out, err := o.Request(context.Background(), Request{Field: "reasonForApplying", Valid: valid.Load})
	require.NoError(t, err)

	assert.True(t, out.Stale)
	assert.False(t, ui.State().ShowAIModal)
	assert.False(t, ui.State().IsLoading)
}

func TestFallback_StaleFailureSkipsSecondary(t *testing.T) {
	var valid atomic.Bool
	valid.Store(true)

	primary := failing("mistral", "Mistral AI", apperrors.KindTimeout)
	primary.onCall = func() { valid.Store(false) }
	secondary := succeeding("openai", "OpenAI", "x")
	o, ui, _ := newOrchestrator(t, primary, secondary, PolicyFallback)

	out, err := o.Request(context.Background(), Request{Field: "reasonForApplying", Valid: valid.Load})
	require.NoError(t, err)

	assert.True(t, out.Stale)
	assert.Equal(t, int32(0), atomic.LoadInt32(&secondary.calls))
	assert.Empty(t, ui.State().Alert)
}

func TestIndependent_RefusesSecondProviderForSameField(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	primary := succeeding("mistral", "Mistral AI", "from mistral")
	primary.onCall = func() {
		close(started)
		<-release
	}
	secondary := succeeding("openai", "OpenAI", "from openai")
	o, ui, _ := newOrchestrator(t, primary, secondary, PolicyIndependent)

	done := make(chan error, 1)
	go func() {
		_, err := o.RequestFrom(context.Background(), "mistral", Request{Field: "reasonForApplying"})
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("primary never called")
	}

	_, err := o.RequestFrom(context.Background(), "openai", Request{Field: "reasonForApplying"})
	assert.ErrorIs(t, err, ErrSuggestionPending)
	assert.Equal(t, "mistral", ui.PendingProvider("reasonForApplying"))

	out, err := o.RequestFrom(context.Background(), "openai", Request{Field: "employmentCircumstances"})
	require.NoError(t, err)
	assert.Equal(t, "openai", out.Provider)

	close(release)
	require.NoError(t, <-done)

	st := ui.State()
	assert.Equal(t, "from mistral", st.AISuggestion)
	assert.Equal(t, "reasonForApplying", st.AIField)
	assert.Empty(t, ui.PendingProvider("reasonForApplying"))
	assert.False(t, st.IsLoading)
}

func TestIndependent_FailureAlertsWithoutFallback(t *testing.T) {
	secondary := succeeding("openai", "OpenAI", "unused")
	o, ui, _ := newOrchestrator(t, failing("mistral", "Mistral AI", apperrors.KindServiceUnavailable), secondary, PolicyIndependent)

	out, err := o.Request(context.Background(), Request{Field: "reasonForApplying"})
	require.NoError(t, err)

	assert.Equal(t, int32(0), atomic.LoadInt32(&secondary.calls))
	assert.Equal(t, "Mistral AI could not generate a suggestion: service_unavailable. Please try again later.", out.Message)
	assert.Equal(t, out.Message, ui.State().Alert)
}

func TestIndependent_UnknownProvider(t *testing.T) {
	o, _, _ := newOrchestrator(t, succeeding("mistral", "Mistral AI", "a"), succeeding("openai", "OpenAI", "b"), PolicyIndependent)

	_, err := o.RequestFrom(context.Background(), "claude", Request{Field: "reasonForApplying"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestPolicyFromConfig(t *testing.T) {
	assert.Equal(t, PolicyFallback, PolicyFromConfig(true))
	assert.Equal(t, PolicyIndependent, PolicyFromConfig(false))
	assert.Equal(t, "independent", PolicyIndependent.String())
}
