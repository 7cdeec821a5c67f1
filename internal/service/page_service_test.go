package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/internal/form"
	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/internal/store"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

type fakeResource[E models.Entity, F any] struct {
	kind  models.Kind
	build func(int64, F) E

	mu        sync.Mutex
	items     []E
	nextID    int64
	listErr   error
	addErr    error
	deleteErr error
	lists     int
	deletes   []int64
}

func (f *fakeResource[E, F]) Kind() models.Kind { return f.kind }

func (f *fakeResource[E, F]) List(context.Context) ([]E, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]E(nil), f.items...), nil
}

func (f *fakeResource[E, F]) Add(_ context.Context, in F) (E, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero E
	if f.addErr != nil {
		return zero, f.addErr
	}
	f.nextID++
	e := f.build(f.nextID, in)
	f.items = append(f.items, e)
	return e, nil
}

func (f *fakeResource[E, F]) Update(_ context.Context, e E) (E, error) {
	return e, nil
}

func (f *fakeResource[E, F]) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

type fakeGateways struct {
	students     *fakeResource[models.Student, models.StudentInput]
	courses      *fakeResource[models.Course, models.CourseInput]
	universities *fakeResource[models.University, models.UniversityInput]
}

func newFakeGateways() *fakeGateways {
	return &fakeGateways{
		students: &fakeResource[models.Student, models.StudentInput]{
			kind:   models.KindStudent,
			build:  func(id int64, in models.StudentInput) models.Student { return in.Build(id) },
			nextID: 100,
		},
		courses: &fakeResource[models.Course, models.CourseInput]{
			kind:   models.KindCourse,
			build:  func(id int64, in models.CourseInput) models.Course { return in.Build(id) },
			nextID: 200,
		},
		universities: &fakeResource[models.University, models.UniversityInput]{
			kind:  models.KindUniversity,
			build: func(id int64, in models.UniversityInput) models.University { return in.Build(id) },
		},
	}
}

func (g *fakeGateways) service() *PageService {
	return NewPageService(PageGateways{
		Students:     g.students,
		Courses:      g.courses,
		Universities: g.universities,
	}, PageConfig{SessionTTL: time.Minute}, nil, zap.NewNop())
}

func studentRows(t *testing.T, view PageView) []StudentRow {
	t.Helper()
	items, ok := view.Items.([]interface{})
	require.True(t, ok)
	rows := make([]StudentRow, 0, len(items))
	for _, item := range items {
		row, ok := item.(StudentRow)
		require.True(t, ok)
		rows = append(rows, row)
	}
	return rows
}

func TestMountStudentsResolvesUniversityNames(t *testing.T) {
	g := newFakeGateways()
	g.universities.items = []models.University{{ID: 1, Name: "Fresh"}, {ID: 2, Name: "Second"}}
	g.students.items = []models.Student{
		{ID: 1, Name: "Amina", University: models.University{ID: 1, Name: "Old"}},
		{ID: 2, Name: "Karim", University: models.University{ID: 9, Name: "Embedded"}},
		{ID: 3, Name: "Lina"},
	}
	svc := g.service()

	view, err := svc.Mount(context.Background(), "students")
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, models.KindStudent, view.Kind)
	assert.Equal(t, store.Ready, view.State.Status)
	assert.Equal(t, 3, view.Total)

	rows := studentRows(t, view)
	require.Len(t, rows, 3)
	assert.Equal(t, "Fresh", rows[0].UniversityName)
	assert.Equal(t, "Embedded", rows[1].UniversityName)
	assert.Equal(t, "Unknown", rows[2].UniversityName)
	assert.Equal(t, 1, g.universities.lists)
	assert.Equal(t, 1, svc.Active())
}

func TestMountFailureKeepsSessionForReload(t *testing.T) {
	g := newFakeGateways()
	g.courses.listErr = errors.New("gateway down")
	svc := g.service()

	view, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)
	assert.Equal(t, store.Failed, view.State.Status)
	assert.Equal(t, loadFailedMessage, view.Error)
	assert.Empty(t, view.Items)

	g.courses.listErr = nil
	g.courses.items = []models.Course{{ID: 7, Name: "Go"}}
	view, err = svc.Reload(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, store.Ready, view.State.Status)
	assert.Empty(t, view.Error)
	assert.Equal(t, 1, view.Total)
}

func TestMountUnknownKind(t *testing.T) {
	_, err := newFakeGateways().service().Mount(context.Background(), "faculties")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestViewFiltersBySearchTerm(t *testing.T) {
	g := newFakeGateways()
	g.courses.items = []models.Course{
		{ID: 1, Name: "Data Science", Description: "numbers"},
		{ID: 2, Name: "Microservices", Description: "distributed data"},
		{ID: 3, Name: "Design"},
	}
	svc := g.service()
	mounted, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)

	view, err := svc.View(mounted.ID, "  DATA ")
	require.NoError(t, err)
	items := view.Items.([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].(models.Course).ID)
	assert.Equal(t, int64(2), items[1].(models.Course).ID)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, "  DATA ", view.Term)
}

func TestFormCreateFlow(t *testing.T) {
	g := newFakeGateways()
	g.universities.items = []models.University{{ID: 4, Name: "USTHB"}}
	svc := g.service()
	mounted, err := svc.Mount(context.Background(), "students")
	require.NoError(t, err)

	view, err := svc.OpenForm(mounted.ID, FormRequest{Mode: "create"})
	require.NoError(t, err)
	state := view.Form.(form.State[models.Student, models.StudentInput])
	assert.Equal(t, form.Creating, state.Mode)
	assert.Equal(t, int64(4), state.Working.University.ID, "first university is preselected")

	saved, err := svc.SubmitForm(context.Background(), mounted.ID, json.RawMessage(`{"name":"Nour","address":"Algiers","university":{"id":4}}`))
	require.NoError(t, err)
	student := saved.(models.Student)
	assert.Equal(t, int64(101), student.ID)
	assert.Equal(t, "USTHB", student.University.Name, "university filled from the lookup")

	view, err = svc.View(mounted.ID, "")
	require.NoError(t, err)
	rows := studentRows(t, view)
	require.Len(t, rows, 1)
	assert.Equal(t, "Nour", rows[0].Name)
	assert.Equal(t, form.Closed, view.Form.(form.State[models.Student, models.StudentInput]).Mode)
}

func TestFormSubmitValidationError(t *testing.T) {
	g := newFakeGateways()
	svc := g.service()
	mounted, err := svc.Mount(context.Background(), "universities")
	require.NoError(t, err)

	_, err = svc.OpenForm(mounted.ID, FormRequest{Mode: "create"})
	require.NoError(t, err)
	_, err = svc.SubmitForm(context.Background(), mounted.ID, json.RawMessage(`{"name":"   "}`))
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"name": "is required"}, verr.Fields)
}

func TestOpenFormValidation(t *testing.T) {
	g := newFakeGateways()
	svc := g.service()
	mounted, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)

	_, err = svc.OpenForm(mounted.ID, FormRequest{Mode: "edit"})
	var verr *form.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["id"])

	_, err = svc.OpenForm(mounted.ID, FormRequest{Mode: "edit", ID: 99})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDeleteKeepsEntityOnGatewayFailure(t *testing.T) {
	g := newFakeGateways()
	g.courses.items = []models.Course{{ID: 7, Name: "Go"}}
	g.courses.deleteErr = errors.New("boom")
	svc := g.service()
	mounted, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)

	err = svc.DeleteEntity(context.Background(), mounted.ID, 7)
	require.Error(t, err)

	view, err := svc.View(mounted.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Total)
	assert.Empty(t, view.PendingIDs)
	assert.Equal(t, "Failed to delete course.", view.Error)

	g.courses.deleteErr = nil
	require.NoError(t, svc.DeleteEntity(context.Background(), mounted.ID, 7))
	view, err = svc.View(mounted.ID, "")
	require.NoError(t, err)
	assert.Zero(t, view.Total)
	assert.Empty(t, view.Error)
	assert.Equal(t, []int64{7, 7}, g.courses.deletes)
}

func TestDeleteUnknownEntity(t *testing.T) {
	g := newFakeGateways()
	svc := g.service()
	mounted, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteEntity(context.Background(), mounted.ID, 1), appErrors.ErrNotFound)
	assert.Empty(t, g.courses.deletes)
}

func TestExportWritesFilteredRows(t *testing.T) {
	g := newFakeGateways()
	g.universities.items = []models.University{{ID: 1, Name: "Algiers 1"}, {ID: 2, Name: "Oran"}}
	svc := g.service()
	mounted, err := svc.Mount(context.Background(), "universities")
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, svc.Export(buf, mounted.ID, "alg", "csv"))
	assert.Equal(t, "ID,Name\n1,Algiers 1\n", buf.String())

	assert.ErrorIs(t, svc.Export(buf, mounted.ID, "", "xlsx"), appErrors.ErrValidation)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	g := newFakeGateways()
	svc := g.service()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	idle, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)
	now = now.Add(50 * time.Second)
	fresh, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)

	assert.Equal(t, 1, svc.Sweep(now.Add(30*time.Second)))
	_, err = svc.View(idle.ID, "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.View(fresh.ID, "")
	assert.NoError(t, err)
}

func TestUnmount(t *testing.T) {
	svc := newFakeGateways().service()
	mounted, err := svc.Mount(context.Background(), "universities")
	require.NoError(t, err)
	require.NoError(t, svc.Unmount(mounted.ID))
	assert.ErrorIs(t, svc.Unmount(mounted.ID), appErrors.ErrNotFound)
	assert.Zero(t, svc.Active())
}

func TestSessionsAreIndependent(t *testing.T) {
	g := newFakeGateways()
	g.courses.items = []models.Course{{ID: 1, Name: "Go"}}
	svc := g.service()
	first, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)
	second, err := svc.Mount(context.Background(), "courses")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntity(context.Background(), first.ID, 1))
	view, err := svc.View(second.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Total)
	assert.Equal(t, 2, g.courses.lists)
}
