package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-portal/internal/models"
	"github.com/noah-isme/campus-portal/internal/service"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
	"github.com/noah-isme/campus-portal/pkg/export"
	"github.com/noah-isme/campus-portal/pkg/response"
)

type pageService interface {
	Mount(ctx context.Context, kind string) (service.PageView, error)
	View(id, term string) (service.PageView, error)
	Reload(ctx context.Context, id string) (service.PageView, error)
	Unmount(id string) error
	OpenForm(id string, req service.FormRequest) (service.PageView, error)
	SubmitForm(ctx context.Context, id string, fields json.RawMessage) (interface{}, error)
	CloseForm(id string) error
	DeleteEntity(ctx context.Context, id string, entityID int64) error
	Export(w io.Writer, id, term, format string) error
	Renderer(format string) (export.Renderer, error)
	Kind(id string) (models.Kind, error)
}

// PageHandler exposes mounted list pages.
type PageHandler struct {
	pages pageService
}

// NewPageHandler constructs PageHandler.
func NewPageHandler(pages pageService) *PageHandler {
	return &PageHandler{pages: pages}
}

// Mount godoc
// @Summary Mount a list page
// @Tags Pages
// @Produce json
// @Param kind path string true "students, courses or universities"
// @Success 201 {object} response.Envelope
// @Router /pages/{kind} [post]
func (h *PageHandler) Mount(c *gin.Context) {
	// Mount shares the /pages/:id route shape; on POST the segment carries the kind.
	view, err := h.pages.Mount(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// View godoc
// @Summary Render a mounted page
// @Tags Pages
// @Produce json
// @Param id path string true "Page ID"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /pages/{id} [get]
func (h *PageHandler) View(c *gin.Context) {
	view, err := h.pages.View(c.Param("id"), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Reload godoc
// @Summary Refetch a page from the gateway
// @Tags Pages
// @Produce json
// @Param id path string true "Page ID"
// @Success 200 {object} response.Envelope
// @Router /pages/{id}/reload [post]
func (h *PageHandler) Reload(c *gin.Context) {
	view, err := h.pages.Reload(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Unmount godoc
// @Summary Discard a page
// @Tags Pages
// @Param id path string true "Page ID"
// @Success 204
// @Router /pages/{id} [delete]
func (h *PageHandler) Unmount(c *gin.Context) {
	if err := h.pages.Unmount(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// OpenForm godoc
// @Summary Open the create or edit form
// @Tags Pages
// @Accept json
// @Produce json
// @Param id path string true "Page ID"
// @Param payload body service.FormRequest true "Form mode"
// @Success 200 {object} response.Envelope
// @Router /pages/{id}/form [post]
func (h *PageHandler) OpenForm(c *gin.Context) {
	var req service.FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	view, err := h.pages.OpenForm(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// SubmitForm godoc
// @Summary Save the open form
// @Tags Pages
// @Accept json
// @Produce json
// @Param id path string true "Page ID"
// @Success 200 {object} response.Envelope
// @Router /pages/{id}/form/submit [post]
func (h *PageHandler) SubmitForm(c *gin.Context) {
	var fields json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	saved, err := h.pages.SubmitForm(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved)
}

// CloseForm godoc
// @Summary Discard the open form
// @Tags Pages
// @Param id path string true "Page ID"
// @Success 204
// @Router /pages/{id}/form [delete]
func (h *PageHandler) CloseForm(c *gin.Context) {
	if err := h.pages.CloseForm(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteEntity godoc
// @Summary Delete an entity shown on the page
// @Tags Pages
// @Param id path string true "Page ID"
// @Param entityId path int true "Entity ID"
// @Success 204
// @Router /pages/{id}/entities/{entityId} [delete]
func (h *PageHandler) DeleteEntity(c *gin.Context) {
	entityID, err := strconv.ParseInt(c.Param("entityId"), 10, 64)
	if err != nil || entityID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid entity id"))
		return
	}
	if err := h.pages.DeleteEntity(c.Request.Context(), c.Param("id"), entityID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the filtered list
// @Tags Pages
// @Produce text/csv,application/pdf
// @Param id path string true "Page ID"
// @Param search query string false "Search term"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /pages/{id}/export [get]
func (h *PageHandler) Export(c *gin.Context) {
	id := c.Param("id")
	format := c.DefaultQuery("format", "csv")
	renderer, err := h.pages.Renderer(format)
	if err != nil {
		response.Error(c, err)
		return
	}
	kind, err := h.pages.Kind(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", renderer.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", kind.Plural(), renderer.Extension()))
	c.Status(http.StatusOK)
	if err := h.pages.Export(c.Writer, id, c.Query("search"), format); err != nil {
		_ = c.Error(err)
	}
}
