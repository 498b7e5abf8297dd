package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/service"
	"github.com/LadaVilada/kido-sub000/pkg/response"
)

// ChildHandler handles the child profile endpoints.
type ChildHandler struct {
	childSvc service.ChildService
}

// NewChildHandler creates a ChildHandler.
func NewChildHandler(childSvc service.ChildService) *ChildHandler {
	return &ChildHandler{childSvc: childSvc}
}

// Create adds a child profile.
// POST /api/v1/children
func (h *ChildHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	child, err := h.childSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleChildError(c, err)
		return
	}

	response.Created(c, child)
}

// Get returns one child profile.
// GET /api/v1/children/:id
func (h *ChildHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	child, err := h.childSvc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleChildError(c, err)
		return
	}

	response.OK(c, child)
}

// List returns the caller's children sorted by name.
// GET /api/v1/children
func (h *ChildHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	children, err := h.childSvc.List(c.Request.Context(), userID)
	if err != nil {
		h.handleChildError(c, err)
		return
	}

	response.OK(c, gin.H{"list": children})
}

// Update patches a child profile.
// PUT /api/v1/children/:id
func (h *ChildHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	child, err := h.childSvc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleChildError(c, err)
		return
	}

	response.OK(c, child)
}

// Delete removes a child and its activities.
// DELETE /api/v1/children/:id
func (h *ChildHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.childSvc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleChildError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ChildHandler) handleChildError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChildNotFound):
		response.NotFound(c, 12101, "child not found")
	case errors.Is(err, service.ErrInvalidColor):
		response.BadRequest(c, 12102, "color must be #RRGGBB")
	case errors.Is(err, service.ErrInvalidBirthDate):
		response.BadRequest(c, 12103, "birth_date must be YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
