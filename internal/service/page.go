package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-portal/internal/form"
	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/internal/projection"
	"github.com/noah-isme/campus-portal/internal/store"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
	"github.com/noah-isme/campus-portal/pkg/export"
)

const loadFailedMessage = "Failed to load data. Please make sure the API gateway is running and properly configured."

// EntityGateway is the part of the gateway client a list page needs for one kind.
type EntityGateway[E models.Entity, F any] interface {
	Kind() models.Kind
	List(ctx context.Context) ([]E, error)
	Add(ctx context.Context, in F) (E, error)
	Update(ctx context.Context, e E) (E, error)
	Delete(ctx context.Context, id int64) error
}

// PageView is the rendered state of a mounted list page.
type PageView struct {
	ID         string                 `json:"id"`
	Kind       models.Kind            `json:"kind"`
	State      store.LoadState        `json:"state"`
	Error      string                 `json:"error,omitempty"`
	Term       string                 `json:"term"`
	Items      interface{}            `json:"items"`
	PendingIDs []int64                `json:"pending_ids"`
	Total      int                    `json:"total"`
	Form       interface{}            `json:"form"`
	Options    map[string]interface{} `json:"options,omitempty"`
}

type page interface {
	Kind() models.Kind
	Load(ctx context.Context) error
	View(term string) PageView
	OpenCreate()
	OpenEdit(id int64) error
	Submit(ctx context.Context, raw json.RawMessage) (interface{}, error)
	CloseForm()
	Delete(ctx context.Context, id int64) error
	Export(term string) export.Dataset
}

// listPage binds one store, its form coordinator and its projection.
type listPage[E models.Entity, F any] struct {
	gw      EntityGateway[E, F]
	store   *store.Store[E]
	form    *form.Coordinator[E, F]
	fields  projection.FieldSet[E]
	columns []string
	record  func(E) []string
	row     func(E) interface{}
	logger  *zap.Logger

	// companion loads alongside the main store; its failure does not fail the page.
	companion func(ctx context.Context) error
	// loaded runs once both the main store and the companion have settled.
	loaded func()
	// normalize fills derived fields of a submitted form before validation.
	normalize func(F) F
	// options adds page specific data to the view.
	options func() map[string]interface{}

	mu        sync.Mutex
	actionErr string
}

func (p *listPage[E, F]) Kind() models.Kind { return p.store.Kind() }

func (p *listPage[E, F]) Load(ctx context.Context) error {
	var g errgroup.Group
	var mainErr error
	g.Go(func() error {
		mainErr = p.store.Load(ctx, p.gw.List)
		return mainErr
	})
	if p.companion != nil {
		g.Go(func() error {
			if err := p.companion(ctx); err != nil {
				p.logger.Warn("companion load failed", zap.String("kind", string(p.Kind())), zap.Error(err))
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
	if p.loaded != nil {
		p.loaded()
	}

	p.mu.Lock()
	p.actionErr = ""
	p.mu.Unlock()

	if mainErr != nil {
		p.logger.Warn("page load failed", zap.String("kind", string(p.Kind())), zap.Error(mainErr))
		return mainErr
	}
	return nil
}

func (p *listPage[E, F]) View(term string) PageView {
	state := p.store.State()
	view := PageView{
		Kind:       p.Kind(),
		State:      state,
		Term:       term,
		PendingIDs: p.store.PendingIDs(),
		Form:       p.form.State(),
	}
	if p.options != nil {
		view.Options = p.options()
	}

	p.mu.Lock()
	view.Error = p.actionErr
	p.mu.Unlock()

	if state.Status == store.Failed {
		view.Error = loadFailedMessage
		view.Items = []interface{}{}
		return view
	}

	all := p.store.Snapshot()
	visible := projection.Filter(all, term, p.fields)
	rows := make([]interface{}, 0, len(visible))
	for _, e := range visible {
		rows = append(rows, p.row(e))
	}
	view.Items = rows
	view.Total = len(all)
	return view
}

func (p *listPage[E, F]) OpenCreate() { p.form.OpenForCreate() }

func (p *listPage[E, F]) OpenEdit(id int64) error {
	e, ok := p.store.Get(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d not found", p.Kind(), id))
	}
	p.form.OpenForEdit(e)
	return nil
}

func (p *listPage[E, F]) Submit(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var fields F
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload")
		}
	}
	if p.normalize != nil {
		fields = p.normalize(fields)
	}
	saved, err := p.form.Submit(ctx, fields)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (p *listPage[E, F]) CloseForm() { p.form.Close() }

// Delete removes the entity only after the gateway confirms.
func (p *listPage[E, F]) Delete(ctx context.Context, id int64) error {
	if _, ok := p.store.Get(id); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d not found", p.Kind(), id))
	}
	pending := p.store.BeginRemove(id)
	if err := p.gw.Delete(ctx, id); err != nil {
		if rbErr := pending.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			p.logger.Error("delete rollback failed", zap.String("kind", string(p.Kind())), zap.Int64("id", id), zap.Error(rbErr))
		}
		p.mu.Lock()
		p.actionErr = fmt.Sprintf("Failed to delete %s.", p.Kind())
		p.mu.Unlock()
		return err
	}
	if err := pending.Commit(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	p.mu.Lock()
	p.actionErr = ""
	p.mu.Unlock()
	return nil
}

func (p *listPage[E, F]) Export(term string) export.Dataset {
	visible := projection.Filter(p.store.Snapshot(), term, p.fields)
	rows := make([][]string, 0, len(visible))
	for _, e := range visible {
		rows = append(rows, p.record(e))
	}
	return export.Dataset{Title: p.Kind().Plural(), Headers: p.columns, Rows: rows}
}

// StudentRow is a student list row with its university name resolved.
type StudentRow struct {
	models.Student
	UniversityName string `json:"university_name"`
}

// universityNames keeps the id to name lookup built after a students page load.
type universityNames struct {
	gw    EntityGateway[models.University, models.UniversityInput]
	store *store.Store[models.University]

	mu    sync.RWMutex
	names map[int64]string
}

func (u *universityNames) load(ctx context.Context) error {
	return u.store.Load(ctx, u.gw.List)
}

func (u *universityNames) rebuild() {
	names := make(map[int64]string)
	for _, uni := range u.store.Snapshot() {
		names[uni.ID] = uni.Name
	}
	u.mu.Lock()
	u.names = names
	u.mu.Unlock()
}

func (u *universityNames) name(s models.Student) string {
	u.mu.RLock()
	name, ok := u.names[s.University.ID]
	u.mu.RUnlock()
	if ok && name != "" {
		return name
	}
	if s.University.Name != "" {
		return s.University.Name
	}
	return "Unknown"
}

func (u *universityNames) fill(in models.StudentInput) models.StudentInput {
	if in.University.ID <= 0 {
		return in
	}
	if uni, ok := u.store.Get(in.University.ID); ok {
		in.University = uni
	}
	return in
}

func (u *universityNames) first() (models.University, bool) {
	all := u.store.Snapshot()
	if len(all) == 0 {
		return models.University{}, false
	}
	return all[0], true
}

func newStudentPage(students EntityGateway[models.Student, models.StudentInput], universities EntityGateway[models.University, models.UniversityInput], opts pageOptions) *listPage[models.Student, models.StudentInput] {
	st := store.New[models.Student](models.KindStudent)
	names := &universityNames{gw: universities, store: store.New[models.University](models.KindUniversity)}
	p := &listPage[models.Student, models.StudentInput]{
		gw:     students,
		store:  st,
		fields: projection.StudentFields,
		logger: opts.logger,
		form: form.NewCoordinator[models.Student, models.StudentInput](students, st, form.Options[models.Student, models.StudentInput]{
			Seed:  models.Student.Input,
			Build: func(id int64, in models.StudentInput) models.Student { return in.Build(id) },
			Defaults: func() models.StudentInput {
				in := models.StudentInput{}
				if uni, ok := names.first(); ok {
					in.University = uni
				}
				return in
			},
			Validator: opts.validator,
			Logger:    opts.logger,
		}),
		columns:   []string{"ID", "Name", "Address", "University"},
		companion: names.load,
		loaded:    names.rebuild,
		normalize: names.fill,
	}
	p.row = func(s models.Student) interface{} {
		return StudentRow{Student: s, UniversityName: names.name(s)}
	}
	p.record = func(s models.Student) []string {
		return []string{strconv.FormatInt(s.ID, 10), s.Name, s.Address, names.name(s)}
	}
	p.options = func() map[string]interface{} {
		return map[string]interface{}{"universities": names.store.Snapshot()}
	}
	return p
}

func newCoursePage(courses EntityGateway[models.Course, models.CourseInput], opts pageOptions) *listPage[models.Course, models.CourseInput] {
	st := store.New[models.Course](models.KindCourse)
	return &listPage[models.Course, models.CourseInput]{
		gw:     courses,
		store:  st,
		fields: projection.CourseFields,
		logger: opts.logger,
		form: form.NewCoordinator[models.Course, models.CourseInput](courses, st, form.Options[models.Course, models.CourseInput]{
			Seed:      models.Course.Input,
			Build:     func(id int64, in models.CourseInput) models.Course { return in.Build(id) },
			Validator: opts.validator,
			Logger:    opts.logger,
		}),
		columns: []string{"ID", "Name", "Description", "Category", "Schedule"},
		row:     func(c models.Course) interface{} { return c },
		record: func(c models.Course) []string {
			return []string{strconv.FormatInt(c.ID, 10), c.Name, c.Description, c.Category, c.Schedule}
		},
	}
}

func newUniversityPage(universities EntityGateway[models.University, models.UniversityInput], opts pageOptions) *listPage[models.University, models.UniversityInput] {
	st := store.New[models.University](models.KindUniversity)
	return &listPage[models.University, models.UniversityInput]{
		gw:     universities,
		store:  st,
		fields: projection.UniversityFields,
		logger: opts.logger,
		form: form.NewCoordinator[models.University, models.UniversityInput](universities, st, form.Options[models.University, models.UniversityInput]{
			Seed:      models.University.Input,
			Build:     func(id int64, in models.UniversityInput) models.University { return in.Build(id) },
			Validator: opts.validator,
			Logger:    opts.logger,
		}),
		columns: []string{"ID", "Name"},
		row:     func(u models.University) interface{} { return u },
		record: func(u models.University) []string {
			return []string{strconv.FormatInt(u.ID, 10), u.Name}
		},
	}
}
