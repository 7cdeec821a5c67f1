package gateway

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/noah-isme/campus-portal/internal/models"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

// Resource issues CRUD calls for one kind. E is the persisted entity, F the input
// accepted on create.
//
// Routes: GET /api/{plural}/getAll, GET /api/{plural}/{id}, POST /api/{plural}/add,
// PUT /api/{plural}/update/{id}, DELETE /api/{plural}/delete/{id}.
type Resource[E models.Entity, F any] struct {
	client *Client
	kind   models.Kind
}

// Kind returns the resource kind.
func (r Resource[E, F]) Kind() models.Kind { return r.kind }

// List returns every entity in server order.
func (r Resource[E, F]) List(ctx context.Context) ([]E, error) {
	var out []E
	if err := r.client.do(ctx, r.kind, OpList, http.MethodGet, r.client.route(r.kind, "getAll"), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []E{}
	}
	return out, nil
}

// Get returns the entity under id. A 404 is reported as found=false with a nil error.
func (r Resource[E, F]) Get(ctx context.Context, id int64) (E, bool, error) {
	var out E
	err := r.client.do(ctx, r.kind, OpGet, http.MethodGet, r.client.route(r.kind, strconv.FormatInt(id, 10)), nil, &out)
	if err != nil {
		var zero E
		if IsNotFound(err) {
			return zero, false, nil
		}
		return zero, false, err
	}
	return out, true, nil
}

// Add creates an entity and returns it with its server-assigned id.
func (r Resource[E, F]) Add(ctx context.Context, in F) (E, error) {
	var out E
	if err := r.client.do(ctx, r.kind, OpAdd, http.MethodPost, r.client.route(r.kind, "add"), in, &out); err != nil {
		var zero E
		return zero, err
	}
	if out.EntityID() <= 0 {
		var zero E
		return zero, &Error{Kind: r.kind, Op: OpAdd, Status: http.StatusOK, Err: errors.New("response carries no id")}
	}
	return out, nil
}

// Update persists e, which must carry the id of an existing entity.
func (r Resource[E, F]) Update(ctx context.Context, e E) (E, error) {
	var out E
	id := e.EntityID()
	if id <= 0 {
		var zero E
		return zero, appErrors.Clone(appErrors.ErrValidation, "update requires an id")
	}
	if err := r.client.do(ctx, r.kind, OpUpdate, http.MethodPut, r.client.route(r.kind, "update", strconv.FormatInt(id, 10)), e, &out); err != nil {
		var zero E
		return zero, err
	}
	if out.EntityID() != id {
		var zero E
		return zero, &Error{Kind: r.kind, Op: OpUpdate, Status: http.StatusOK, Err: errors.New("response id does not match")}
	}
	return out, nil
}

// Delete removes the entity under id.
func (r Resource[E, F]) Delete(ctx context.Context, id int64) error {
	return r.client.do(ctx, r.kind, OpDelete, http.MethodDelete, r.client.route(r.kind, "delete", strconv.FormatInt(id, 10)), nil, nil)
}
