package formsync

import (
	"context"
	"sync"

	"social-support-wizard/internal/models"
	"social-support-wizard/internal/persistence"
)

// draftOp is either a save of state or a clear of the draft key.
type draftOp struct {
	clear bool
	state models.FormState
}

// draftWriter applies draft operations on its own goroutine. Only the latest queued operation is
// kept: a save queued after a clear replaces it and a clear queued after a save drops the save,
// which leaves the stored draft where the last caller wanted it.
type draftWriter struct {
	drafts *persistence.Adapter
	key    string

	mu      sync.Mutex
	idle    *sync.Cond
	pending *draftOp
	busy    bool
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newDraftWriter(drafts *persistence.Adapter, key string) *draftWriter {
	w := &draftWriter{
		drafts: drafts,
		key:    key,
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// submit queues op and returns immediately.
func (w *draftWriter) submit(op draftOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = &op
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// wait blocks until every queued operation has been applied.
func (w *draftWriter) wait() {
	w.mu.Lock()
	for w.pending != nil || w.busy {
		w.idle.Wait()
	}
	w.mu.Unlock()
}

// close applies whatever is still queued and stops the goroutine.
func (w *draftWriter) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.quit)
	<-w.done
}

func (w *draftWriter) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *draftWriter) drain() {
	for {
		w.mu.Lock()
		op := w.pending
		w.pending = nil
		if op == nil {
			w.busy = false
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		w.busy = true
		w.mu.Unlock()

		if op.clear {
			w.drafts.Clear(context.Background(), w.key)
		} else {
			w.drafts.Save(context.Background(), w.key, op.state)
		}
	}
}
