package formsync

import (
	"context"
	"sync"

	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/models"
	"social-support-wizard/internal/persistence"
	"social-support-wizard/internal/store"
)

// Controller mirrors binding edits into the store and the draft, and store changes made by
// anyone else back into the binding. Writes tagged OriginBinding are never echoed, which is what
// keeps the two directions from feeding each other.
type Controller struct {
	form    *store.FormStore
	binding *Binding
	drafts  *persistence.Adapter
	key     string
	log     logger.Logger

	mu     sync.Mutex
	stops  []func()
	writer *draftWriter
}

// NewController wires form and binding. drafts may be nil, in which case nothing is persisted.
// Draft writes happen on a background goroutine owned by the controller between Start and Stop.
func NewController(form *store.FormStore, binding *Binding, drafts *persistence.Adapter, draftKey string, log logger.Logger) *Controller {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Controller{
		form:    form,
		binding: binding,
		drafts:  drafts,
		key:     draftKey,
		log:     log.WithFields(map[string]interface{}{"component": "formsync"}),
	}
}

// Start subscribes both directions and loads the active step into the binding.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stops) > 0 {
		return
	}

	if c.drafts != nil {
		c.writer = newDraftWriter(c.drafts, c.key)
	}

	state := c.form.State()
	c.binding.Apply(state.Group(state.CurrentStep))

	c.stops = append(c.stops,
		c.binding.Watch(c.outbound),
		c.form.Subscribe(c.inbound),
	)
}

// Stop detaches the controller and waits for queued draft writes. It is safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	stops, writer := c.stops, c.writer
	c.stops, c.writer = nil, nil
	c.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	if writer != nil {
		writer.close()
	}
}

// ClearDraft removes the persisted draft after any save still queued, so an older snapshot can
// never land on top of the clear.
func (c *Controller) ClearDraft() {
	if w := c.draftWriter(); w != nil {
		w.submit(draftOp{clear: true})
		return
	}
	if c.drafts != nil {
		c.drafts.Clear(context.Background(), c.key)
	}
}

// WaitDrafts blocks until queued draft writes have reached the backend.
func (c *Controller) WaitDrafts() {
	if w := c.draftWriter(); w != nil {
		w.wait()
	}
}

func (c *Controller) draftWriter() *draftWriter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writer
}

// Flush pushes any binding values that differ from the store, e.g. before validation.
func (c *Controller) Flush() {
	c.outbound("", "")
}

func (c *Controller) outbound(string, string) {
	state := c.form.State()
	step := state.CurrentStep
	changed := state.Group(step).Diff(c.binding.Values())
	if len(changed) == 0 {
		return
	}
	c.form.UpdateStep(step, changed, store.OriginBinding)
}

func (c *Controller) inbound(ch store.Change) {
	if ch.Kind != store.ChangeReset {
		c.persist(ch.Next)
	}
	if ch.Origin == store.OriginBinding {
		return
	}

	step := ch.Next.CurrentStep
	switch {
	case ch.Reset(), ch.StepChanged():
		c.binding.Apply(ch.Next.Group(step))
		c.binding.ClearErrors()
	case ch.Kind == store.ChangeUpdate && ch.Step == step:
		c.binding.Apply(ch.Next.Group(step))
	}
}

// persist queues state for the draft and never waits on the backend.
func (c *Controller) persist(state models.FormState) {
	if w := c.draftWriter(); w != nil {
		w.submit(draftOp{state: state})
	}
}
