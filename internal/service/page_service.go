package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/internal/form"
	"github.com/noah-isme/campus-portal/internal/models"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
	"github.com/noah-isme/campus-portal/pkg/export"
	"github.com/noah-isme/campus-portal/pkg/jobs"
)

var errPageNotFound = appErrors.Clone(appErrors.ErrNotFound, "page session not found")

// PageGateways supplies one gateway resource per kind.
type PageGateways struct {
	Students     EntityGateway[models.Student, models.StudentInput]
	Courses      EntityGateway[models.Course, models.CourseInput]
	Universities EntityGateway[models.University, models.UniversityInput]
}

// PageConfig configures session lifetime.
type PageConfig struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

// FormRequest opens a create or edit form on a page.
type FormRequest struct {
	Mode string `json:"mode" validate:"required,oneof=create edit"`
	ID   int64  `json:"id" validate:"required_if=Mode edit"`
}

type pageOptions struct {
	validator *validator.Validate
	logger    *zap.Logger
}

type session struct {
	id       string
	page     page
	lastSeen atomic.Int64
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// PageService owns the mounted page sessions. Each session has its own stores and form
// coordinator and shares nothing with other sessions.
type PageService struct {
	gateways  PageGateways
	cfg       PageConfig
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	janitor   *jobs.Periodic
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewPageService constructs the page service.
func NewPageService(gateways PageGateways, cfg PageConfig, metrics *MetricsService, logger *zap.Logger) *PageService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PageService{
		gateways:  gateways,
		cfg:       cfg,
		validator: form.NewValidator(),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
	s.janitor = jobs.NewPeriodic("page-janitor", func(_ context.Context, now time.Time) {
		s.Sweep(now)
	}, jobs.PeriodicConfig{Interval: cfg.SweepInterval, Logger: logger})
	return s
}

// Start launches the idle session janitor.
func (s *PageService) Start(ctx context.Context) { s.janitor.Start(ctx) }

// Stop halts the janitor.
func (s *PageService) Stop() { s.janitor.Stop() }

// Mount creates a session for kind and loads it. The session is kept even when the load
// fails so the caller can render the error and reload.
func (s *PageService) Mount(ctx context.Context, rawKind string) (PageView, error) {
	kind, ok := models.ParseKind(rawKind)
	if !ok {
		return PageView{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown page kind %q", rawKind))
	}

	p := s.newPage(kind)
	sess := &session{id: uuid.NewString(), page: p}
	sess.touch(s.now())

	s.mu.Lock()
	s.sessions[sess.id] = sess
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)

	if err := p.Load(ctx); err != nil {
		s.logger.Warn("page mount load failed", zap.String("page_id", sess.id), zap.String("kind", string(kind)), zap.Error(err))
	}
	s.logger.Debug("page mounted", zap.String("page_id", sess.id), zap.String("kind", string(kind)))

	view := p.View("")
	view.ID = sess.id
	return view, nil
}

func (s *PageService) newPage(kind models.Kind) page {
	opts := pageOptions{validator: s.validator, logger: s.logger}
	switch kind {
	case models.KindStudent:
		return newStudentPage(s.gateways.Students, s.gateways.Universities, opts)
	case models.KindCourse:
		return newCoursePage(s.gateways.Courses, opts)
	default:
		return newUniversityPage(s.gateways.Universities, opts)
	}
}

// View renders the session filtered by term.
func (s *PageService) View(id, term string) (PageView, error) {
	sess, err := s.session(id)
	if err != nil {
		return PageView{}, err
	}
	view := sess.page.View(term)
	view.ID = sess.id
	return view, nil
}

// Reload refetches the session's collections.
func (s *PageService) Reload(ctx context.Context, id string) (PageView, error) {
	sess, err := s.session(id)
	if err != nil {
		return PageView{}, err
	}
	if err := sess.page.Load(ctx); err != nil {
		s.logger.Warn("page reload failed", zap.String("page_id", id), zap.Error(err))
	}
	view := sess.page.View("")
	view.ID = sess.id
	return view, nil
}

// Unmount discards the session.
func (s *PageService) Unmount(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return errPageNotFound
	}
	s.metrics.SetActiveSessions(active)
	return nil
}

// OpenForm starts a create or edit session on the page form.
func (s *PageService) OpenForm(id string, req FormRequest) (PageView, error) {
	if err := form.Check(s.validator, req); err != nil {
		return PageView{}, err
	}
	sess, err := s.session(id)
	if err != nil {
		return PageView{}, err
	}
	if req.Mode == "edit" {
		if err := sess.page.OpenEdit(req.ID); err != nil {
			return PageView{}, err
		}
	} else {
		sess.page.OpenCreate()
	}
	view := sess.page.View("")
	view.ID = sess.id
	return view, nil
}

// SubmitForm saves the open form with the given field values.
func (s *PageService) SubmitForm(ctx context.Context, id string, fields json.RawMessage) (interface{}, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sess.page.Submit(ctx, fields)
}

// CloseForm discards the open form.
func (s *PageService) CloseForm(id string) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.page.CloseForm()
	return nil
}

// DeleteEntity deletes through the gateway and removes the entity once confirmed.
func (s *PageService) DeleteEntity(ctx context.Context, id string, entityID int64) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	return sess.page.Delete(ctx, entityID)
}

// Export writes the filtered list in format.
func (s *PageService) Export(w io.Writer, id, term, format string) error {
	renderer, err := s.Renderer(format)
	if err != nil {
		return err
	}
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	return renderer.Write(w, sess.page.Export(term))
}

// Renderer resolves the export renderer for format.
func (s *PageService) Renderer(format string) (export.Renderer, error) {
	renderer, ok := export.ForFormat(format)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	return renderer, nil
}

// Kind returns the resource kind of a session.
func (s *PageService) Kind(id string) (models.Kind, error) {
	sess, err := s.session(id)
	if err != nil {
		return "", err
	}
	return sess.page.Kind(), nil
}

// Sweep evicts sessions idle since before now minus the TTL.
func (s *PageService) Sweep(now time.Time) int {
	cutoff := now.Add(-s.cfg.SessionTTL).UnixNano()
	s.mu.Lock()
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			delete(s.sessions, id)
			evicted++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()
	if evicted > 0 {
		s.logger.Info("evicted idle page sessions", zap.Int("evicted", evicted), zap.Int("active", active))
		s.metrics.SetActiveSessions(active)
	}
	return evicted
}

// Active returns the number of mounted sessions.
func (s *PageService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *PageService) session(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errPageNotFound
	}
	sess.touch(s.now())
	return sess, nil
}
