package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/noah-isme/campus-portal/internal/models"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

// Error is returned by every failed gateway call. Status is zero when no response arrived.
type Error struct {
	Kind   models.Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	target := string(e.Kind)
	if target == "" {
		target = "graphql"
	}
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("gateway %s %s: status %d: %v", target, e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("gateway %s %s: status %d", target, e.Op, e.Status)
	default:
		return fmt.Sprintf("gateway %s %s: %v", target, e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Transport reports whether the call failed before any response was received.
func (e *Error) Transport() bool { return e.Status == 0 }

// Timeout reports whether the per-call deadline expired.
func (e *Error) Timeout() bool { return errors.Is(e.Err, context.DeadlineExceeded) }

// AppError maps the failure onto the API error taxonomy.
func (e *Error) AppError() *appErrors.Error {
	switch {
	case e.Timeout():
		return appErrors.Wrap(e, appErrors.ErrGatewayTimeout.Code, appErrors.ErrGatewayTimeout.Status, appErrors.ErrGatewayTimeout.Message)
	case e.Transport():
		return appErrors.Wrap(e, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	case e.Status == http.StatusNotFound:
		return appErrors.Wrap(e, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, fmt.Sprintf("%s not found", e.Kind))
	default:
		return appErrors.Wrap(e, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, fmt.Sprintf("failed to %s %s", e.Op, e.Kind))
	}
}

// IsNotFound reports whether err is a gateway 404.
func IsNotFound(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Status == http.StatusNotFound
}
