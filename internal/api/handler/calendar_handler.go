package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/service"
	"github.com/LadaVilada/kido-sub000/pkg/response"
)

// CalendarHandler handles the calendar view endpoints.
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// DayView returns the occurrences and layout of one day.
// GET /api/v1/calendar/day?date=YYYY-MM-DD
func (h *CalendarHandler) DayView(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DayViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "date is required")
		return
	}

	view, err := h.calendarSvc.DayView(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, view)
}

// WeekView returns a 7-day window of day views.
// GET /api/v1/calendar/week?start=YYYY-MM-DD
func (h *CalendarHandler) WeekView(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.WeekViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	view, err := h.calendarSvc.WeekView(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, view)
}

// Upcoming returns the next occurrences from now.
// GET /api/v1/calendar/upcoming?limit=N
func (h *CalendarHandler) Upcoming(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpcomingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request parameters")
		return
	}

	result, err := h.calendarSvc.Upcoming(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14101, "date must be YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
