package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/logging"
)

// ErrSuperseded is returned to a caller whose queued push was replaced by a
// newer one before it started. The newer state reaches the remote instead.
var ErrSuperseded = errors.New("sync superseded by a newer change")

// Remote is the part of the CV record API the pusher drives.
type Remote interface {
	Save(ctx context.Context, rec models.CvRecord) (*models.CvRecord, error)
	Remove(ctx context.Context) error
}

type job struct {
	ctx    context.Context
	action Action
	rec    models.CvRecord
	docID  string
	done   chan error
}

// Pusher serializes remote writes for one user: one call in flight, and at
// most one waiting behind it. A new push replaces the waiting one.
type Pusher struct {
	remote Remote
	logger logging.Logger

	mu      sync.Mutex
	running bool
	pending *job
}

func NewPusher(remote Remote, logger logging.Logger) *Pusher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pusher{remote: remote, logger: logger}
}

// Push sends t to the remote and waits for the outcome of that call. Skip
// targets return immediately. The wait ends early if ctx is done.
func (p *Pusher) Push(ctx context.Context, t Target) error {
	j := &job{ctx: ctx, action: t.Action, done: make(chan error, 1)}

	switch t.Action {
	case Skip:
		return nil
	case Save:
		if t.Document == nil {
			return fmt.Errorf("save target without document")
		}
		j.rec = Project(*t.Document)
		j.docID = t.Document.ID
		if err := Validate(j.rec); err != nil {
			return err
		}
	case Remove:
	default:
		return fmt.Errorf("unknown sync action %d", t.Action)
	}

	p.mu.Lock()
	if p.pending != nil {
		p.pending.done <- ErrSuperseded
	}
	p.pending = j
	if !p.running {
		p.running = true
		go p.loop()
	}
	p.mu.Unlock()

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pusher) loop() {
	for {
		p.mu.Lock()
		j := p.pending
		if j == nil {
			p.running = false
			p.mu.Unlock()
			return
		}
		p.pending = nil
		p.mu.Unlock()

		j.done <- p.apply(j)
	}
}

func (p *Pusher) apply(j *job) error {
	if err := j.ctx.Err(); err != nil {
		return err
	}

	switch j.action {
	case Save:
		if _, err := p.remote.Save(j.ctx, j.rec); err != nil {
			p.logger.Warn(j.ctx, "cv sync failed", "action", j.action, "id", j.docID, "error", err)
			return fmt.Errorf("save remote cv: %w", err)
		}
	case Remove:
		if err := p.remote.Remove(j.ctx); err != nil {
			p.logger.Warn(j.ctx, "cv sync failed", "action", j.action, "error", err)
			return fmt.Errorf("remove remote cv: %w", err)
		}
	}
	p.logger.Debug(j.ctx, "cv synced", "action", j.action, "id", j.docID)
	return nil
}
