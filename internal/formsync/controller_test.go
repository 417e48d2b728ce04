package formsync

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/validation"
	"social-support-wizard/internal/models"
	"social-support-wizard/internal/persistence"
	"social-support-wizard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draftKey = "socialSupportFormData"

func setup(t *testing.T) (*store.FormStore, *Binding, *persistence.Adapter, *Controller) {
	log := logger.NewTestLogger(t)
	form := store.NewFormStore(log)
	binding := NewBinding()
	drafts := persistence.NewAdapter(persistence.NewMemoryBackend(), log)
	c := NewController(form, binding, drafts, draftKey, log)
	c.Start()
	t.Cleanup(c.Stop)
	return form, binding, drafts, c
}

func TestController_OutboundEditReachesStoreAndDraft(t *testing.T) {
	form, binding, drafts, c := setup(t)

	var origins []store.Origin
	form.Subscribe(func(ch store.Change) { origins = append(origins, ch.Origin) })

	binding.Set(models.FieldName, "Ann")

	assert.Equal(t, "Ann", form.State().Step1[models.FieldName])
	assert.Equal(t, []store.Origin{store.OriginBinding}, origins)

	c.WaitDrafts()
	draft, ok := drafts.LoadForm(context.Background(), draftKey)
	require.True(t, ok)
	assert.Equal(t, "Ann", draft.Step1[models.FieldName])
	assert.Equal(t, 1, draft.CurrentStep)
}

func TestController_OnlyChangedFieldsAreMerged(t *testing.T) {
	form, binding, _, _ := setup(t)

	var updates []models.FormState
	form.Subscribe(func(ch store.Change) { updates = append(updates, ch.Next) })

	binding.Set(models.FieldName, "Ann")
	binding.Set(models.FieldName, "Ann")

	assert.Len(t, updates, 1, "an unchanged value produces no store update")
}

func TestController_StepChangeLoadsGroup(t *testing.T) {
	form, binding, _, _ := setup(t)
	form.UpdateStep2(models.StepData{models.FieldDependents: "3"})
	binding.SetErrors([]validation.ValidationError{{Field: models.FieldName, Code: validation.CodeRequired}})

	form.SetCurrentStep(2)

	assert.Equal(t, "3", binding.Get(models.FieldDependents))
	assert.Empty(t, binding.Get(models.FieldName))
	assert.Empty(t, binding.Errors())
}

func TestController_ExternalUpdateOfActiveStepIsApplied(t *testing.T) {
	form, binding, _, _ := setup(t)
	form.SetCurrentStep(3)

	form.UpdateStep(3, models.StepData{models.FieldReasonForApplying: "accepted text"}, store.OriginSystem)

	assert.Equal(t, "accepted text", binding.Get(models.FieldReasonForApplying))
	assert.False(t, binding.Dirty(models.FieldReasonForApplying))
}

func TestController_ResetClearsBindingAndSkipsDraft(t *testing.T) {
	form, binding, drafts, c := setup(t)
	binding.Set(models.FieldName, "Ann")
	c.ClearDraft()

	form.ResetForm()

	assert.Empty(t, binding.Get(models.FieldName))
	c.WaitDrafts()
	_, ok := drafts.LoadForm(context.Background(), draftKey)
	assert.False(t, ok)
}

func TestController_HydrateAppliesResumedStep(t *testing.T) {
	form, binding, _, _ := setup(t)
	resumed := models.InitialFormState()
	resumed.CurrentStep = 2
	resumed.Step2[models.FieldHousingStatus] = "rented"

	form.Hydrate(resumed)

	assert.Equal(t, "rented", binding.Get(models.FieldHousingStatus))
}

func TestController_StopDetaches(t *testing.T) {
	form, binding, _, c := setup(t)
	c.Stop()
	c.Stop()

	binding.Set(models.FieldName, "Ann")
	assert.Empty(t, form.State().Step1[models.FieldName])
}

// After any interleaving of edits, external writes, navigation and resets, the binding shows
// exactly the store's active group and the draft mirrors the store.
func TestController_StaysInSync(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		t.Run(fmt.Sprintf("run%d", run), func(t *testing.T) {
			form, binding, drafts, c := setup(t)

			for i := 0; i < 60; i++ {
				step := form.CurrentStep()
				fields := models.FieldsForStep(step)
				field := fields[rng.Intn(len(fields))]
				value := fmt.Sprintf("v%d", rng.Intn(5))

				switch rng.Intn(6) {
				case 0, 1:
					binding.Set(field, value)
				case 2:
					target := models.MinStep + rng.Intn(models.MaxStep)
					form.UpdateStep(target, models.StepData{models.FieldsForStep(target)[0]: value}, store.OriginSystem)
				case 3:
					form.SetCurrentStep(step + 1)
				case 4:
					form.SetCurrentStep(step - 1)
				case 5:
					if rng.Intn(4) == 0 {
						form.ResetForm()
					} else {
						binding.Set(field, value)
					}
				}

				state := form.State()
				require.True(t, state.Group(state.CurrentStep).Equal(binding.Values()),
					"op %d: binding %v, store %v", i, binding.Values(), state.Group(state.CurrentStep))
			}

			binding.Set(models.FieldsForStep(form.CurrentStep())[0], "final")
			c.WaitDrafts()
			draft, ok := drafts.LoadForm(context.Background(), draftKey)
			require.True(t, ok)
			assert.True(t, form.State().Equal(draft))
		})
	}
}

// stalledBackend holds every Put until release is closed or the caller gives up.
type stalledBackend struct {
	*persistence.MemoryBackend
	release chan struct{}
	puts    int32
}

func newStalledBackend() *stalledBackend {
	return &stalledBackend{MemoryBackend: persistence.NewMemoryBackend(), release: make(chan struct{})}
}

func (b *stalledBackend) Put(ctx context.Context, key string, value []byte) error {
	atomic.AddInt32(&b.puts, 1)
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.MemoryBackend.Put(ctx, key, value)
}

func stalledSetup(t *testing.T) (*store.FormStore, *Binding, *persistence.Adapter, *Controller, *stalledBackend) {
	log := logger.NewTestLogger(t)
	backend := newStalledBackend()
	form := store.NewFormStore(log)
	binding := NewBinding()
	drafts := persistence.NewAdapter(backend, log)
	c := NewController(form, binding, drafts, draftKey, log)
	c.Start()
	t.Cleanup(func() {
		select {
		case <-backend.release:
		default:
			close(backend.release)
		}
		c.Stop()
	})
	return form, binding, drafts, c, backend
}

func TestController_StalledBackendDoesNotBlockEdits(t *testing.T) {
	form, binding, _, _, _ := stalledSetup(t)

	start := time.Now()
	binding.Set(models.FieldName, "A")
	binding.Set(models.FieldName, "An")
	form.SetCurrentStep(2)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, "An", form.State().Step1[models.FieldName])
	assert.Equal(t, 2, form.CurrentStep())
}

func TestController_ClearIsNotOverwrittenByQueuedSave(t *testing.T) {
	_, binding, drafts, c, backend := stalledSetup(t)

	binding.Set(models.FieldName, "A")
	binding.Set(models.FieldName, "B")
	binding.Set(models.FieldName, "C")
	c.ClearDraft()

	close(backend.release)
	c.WaitDrafts()

	_, ok := drafts.LoadForm(context.Background(), draftKey)
	assert.False(t, ok)
	assert.LessOrEqual(t, atomic.LoadInt32(&backend.puts), int32(1), "queued saves are coalesced")
}

func TestController_SaveAfterClearWins(t *testing.T) {
	_, binding, drafts, c := setup(t)

	binding.Set(models.FieldName, "Ann")
	c.ClearDraft()
	binding.Set(models.FieldCity, "X")
	c.WaitDrafts()

	draft, ok := drafts.LoadForm(context.Background(), draftKey)
	require.True(t, ok)
	assert.Equal(t, "Ann", draft.Step1[models.FieldName])
	assert.Equal(t, "X", draft.Step1[models.FieldCity])
}

func TestController_StopFlushesQueuedSave(t *testing.T) {
	_, binding, drafts, c := setup(t)

	binding.Set(models.FieldName, "Ann")
	c.Stop()

	draft, ok := drafts.LoadForm(context.Background(), draftKey)
	require.True(t, ok)
	assert.Equal(t, "Ann", draft.Step1[models.FieldName])
}
