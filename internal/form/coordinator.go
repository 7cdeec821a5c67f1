// Package form coordinates a single create or edit session for one resource kind and
// reconciles its outcome into the page's entity store.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/internal/store"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

// Mode is the state of the coordinator.
type Mode string

const (
	Closed   Mode = "closed"
	Creating Mode = "creating"
	Editing  Mode = "editing"
)

// Persister saves entities through the gateway.
type Persister[E models.Entity, F any] interface {
	Kind() models.Kind
	Add(ctx context.Context, in F) (E, error)
	Update(ctx context.Context, e E) (E, error)
}

// Options configures a Coordinator.
type Options[E models.Entity, F any] struct {
	// Seed derives the working copy from the entity being edited.
	Seed func(E) F
	// Build returns the entity to persist for an edit of id.
	Build func(id int64, in F) E
	// Defaults, when set, seeds the working copy of a new create session.
	Defaults  func() F
	Validator *validator.Validate
	Logger    *zap.Logger
}

// State is a point-in-time view of the coordinator.
type State[E models.Entity, F any] struct {
	Mode       Mode   `json:"mode"`
	Editing    *E     `json:"editing,omitempty"`
	Working    F      `json:"working"`
	Submitting bool   `json:"submitting"`
	Error      string `json:"error,omitempty"`
}

// Coordinator is the Closed / Creating / Editing state machine behind an entity form.
type Coordinator[E models.Entity, F any] struct {
	persister Persister[E, F]
	store     *store.Store[E]
	opts      Options[E, F]

	mu         sync.Mutex
	mode       Mode
	editing    E
	working    F
	inFlight   bool
	generation uint64
	lastErr    error
}

// NewCoordinator constructs a closed coordinator committing into st.
func NewCoordinator[E models.Entity, F any](persister Persister[E, F], st *store.Store[E], opts Options[E, F]) *Coordinator[E, F] {
	if opts.Validator == nil {
		opts.Validator = NewValidator()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Coordinator[E, F]{persister: persister, store: st, opts: opts, mode: Closed}
}

// OpenForCreate starts a create session, discarding any session in progress.
func (c *Coordinator[E, F]) OpenForCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(Creating)
	if c.opts.Defaults != nil {
		c.working = c.opts.Defaults()
	}
}

// OpenForEdit starts an edit session on a snapshot of e.
func (c *Coordinator[E, F]) OpenForEdit(e E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(Editing)
	c.editing = e
	if c.opts.Seed != nil {
		c.working = c.opts.Seed(e)
	}
}

// Close discards the session without touching the gateway or the store.
func (c *Coordinator[E, F]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(Closed)
}

// State returns the current session state.
func (c *Coordinator[E, F]) State() State[E, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State[E, F]{Mode: c.mode, Working: c.working, Submitting: c.inFlight}
	if c.mode == Editing {
		editing := c.editing
		st.Editing = &editing
	}
	if c.lastErr != nil {
		st.Error = c.lastErr.Error()
	}
	return st
}

// LastError returns the validation or save error of the last submit, if any.
func (c *Coordinator[E, F]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submit validates fields and saves them. It is a no-op returning ErrSubmitInFlight
// while an earlier submit of the same session is pending. On failure the session stays
// open with fields as its working copy.
func (c *Coordinator[E, F]) Submit(ctx context.Context, fields F) (E, error) {
	var zero E

	c.mu.Lock()
	if c.mode == Closed {
		c.mu.Unlock()
		return zero, appErrors.ErrFormClosed
	}
	if c.inFlight {
		c.mu.Unlock()
		return zero, appErrors.ErrSubmitInFlight
	}
	c.working = fields
	if err := c.opts.Validator.Struct(fields); err != nil {
		c.lastErr = toValidationError(err)
		c.mu.Unlock()
		return zero, c.lastErr
	}
	c.inFlight = true
	c.lastErr = nil
	generation := c.generation
	mode := c.mode
	editing := c.editing
	slot := c.store.Reserve()
	c.mu.Unlock()

	var (
		saved E
		err   error
	)
	if mode == Creating {
		saved, err = c.persister.Add(ctx, fields)
	} else {
		saved, err = c.persister.Update(ctx, c.opts.Build(editing.EntityID(), fields))
	}

	if err != nil {
		slot.Release()
		saveErr := &SaveError{Kind: c.persister.Kind(), Err: err}
		c.mu.Lock()
		if generation == c.generation {
			c.inFlight = false
			c.lastErr = saveErr
		}
		c.mu.Unlock()
		c.opts.Logger.Warn("form submit failed", zap.String("kind", string(c.persister.Kind())), zap.String("mode", string(mode)), zap.Error(err))
		return zero, saveErr
	}

	// The gateway has persisted the change, so the local echo must land even if the
	// caller has gone away.
	commitCtx := context.WithoutCancel(ctx)
	var commitErr error
	if mode == Creating {
		commitErr = slot.Insert(commitCtx, saved)
		if errors.Is(commitErr, appErrors.ErrDuplicateKey) {
			// A reload reserved earlier already brought the new entity in from the gateway.
			c.opts.Logger.Debug("created entity already loaded", zap.String("kind", string(c.persister.Kind())), zap.Int64("id", saved.EntityID()))
			commitErr = nil
		}
	} else {
		commitErr = slot.Upsert(commitCtx, saved)
	}
	if commitErr != nil {
		c.opts.Logger.Error("form commit rejected by store", zap.String("kind", string(c.persister.Kind())), zap.Int64("id", saved.EntityID()), zap.Error(commitErr))
	}

	c.mu.Lock()
	if generation == c.generation {
		c.reset(Closed)
	}
	c.mu.Unlock()
	return saved, commitErr
}

// reset must be called with mu held.
func (c *Coordinator[E, F]) reset(mode Mode) {
	var (
		zeroE E
		zeroF F
	)
	c.generation++
	c.mode = mode
	c.editing = zeroE
	c.working = zeroF
	c.inFlight = false
	c.lastErr = nil
}

// SaveError is reported when the gateway refused or never answered a submit.
type SaveError struct {
	Kind models.Kind
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Kind, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Message is the text shown inline in the form.
func (e *SaveError) Message() string {
	return fmt.Sprintf("failed to save %s", e.Kind)
}

// AppError maps the failure onto the API error taxonomy.
func (e *SaveError) AppError() *appErrors.Error {
	return appErrors.Wrap(e.Err, appErrors.ErrSave.Code, appErrors.ErrSave.Status, e.Message())
}
