package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/service"
	"github.com/LadaVilada/kido-sub000/pkg/response"
)

// ActivityHandler handles the recurring activity endpoints.
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// Create adds a weekly recurring activity.
// POST /api/v1/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	activity, err := h.activitySvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.Created(c, activity)
}

// Get returns one activity.
// GET /api/v1/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	activity, err := h.activitySvc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

// List returns the caller's activities, optionally filtered by child.
// GET /api/v1/activities?child_id=xxx&page=1&page_size=20
func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ActivityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	activities, total, err := h.activitySvc.List(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OKPage(c, activities, total, req.GetPage(), req.GetPageSize())
}

// Update patches an activity and re-validates the merged rule.
// PUT /api/v1/activities/:id
func (h *ActivityHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	activity, err := h.activitySvc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

// Delete removes an activity.
// DELETE /api/v1/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.activitySvc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ActivityHandler) handleActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, 13101, "activity not found")
	case errors.Is(err, service.ErrChildNotFound):
		response.NotFound(c, 12101, "child not found")
	case errors.Is(err, service.ErrInvalidClockTime):
		response.BadRequest(c, 13102, "start_time and end_time must be HH:MM")
	case errors.Is(err, service.ErrEndNotAfterStart):
		response.BadRequest(c, 13103, "end_time must be after start_time")
	case errors.Is(err, service.ErrInvalidDayOfWeek):
		response.BadRequest(c, 13104, "days_of_week entries must be 0..6")
	case errors.Is(err, service.ErrInvalidTimezone):
		response.BadRequest(c, 13105, "timezone is not a valid IANA name")
	default:
		response.InternalError(c)
	}
}
