package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/service"
	"github.com/LadaVilada/kido-sub000/pkg/response"
)

const icsContentType = "text/calendar; charset=utf-8"

// ICSHandler handles the iCalendar feed endpoints.
type ICSHandler struct {
	icsSvc service.ICSService
}

// NewICSHandler creates an ICSHandler.
func NewICSHandler(icsSvc service.ICSService) *ICSHandler {
	return &ICSHandler{icsSvc: icsSvc}
}

// ExportCalendar streams the caller's activities as an .ics feed.
// GET /api/v1/export/calendar.ics
func (h *ICSHandler) ExportCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.icsSvc.ExportCalendar(c.Request.Context(), userID)
	if err != nil {
		h.handleICSError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", icsContentType)
	c.Data(http.StatusOK, icsContentType, buf.Bytes())
}

// ImportActivities creates activities for a child from an uploaded .ics
// file. multipart/form-data with field "file" and form value "child_id".
// POST /api/v1/activities/import
func (h *ICSHandler) ImportActivities(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "child_id is required")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "upload an .ics file in field \"file\"")
		return
	}
	defer file.Close()

	result, err := h.icsSvc.ImportActivities(c.Request.Context(), file, req.ChildID, userID)
	if err != nil {
		h.handleICSError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *ICSHandler) handleICSError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChildNotFound):
		response.NotFound(c, 12101, "child not found")
	case errors.Is(err, service.ErrICSParseFail):
		response.BadRequest(c, 16201, "failed to parse ics content")
	case errors.Is(err, service.ErrICSNoEvents):
		response.BadRequest(c, 16202, "no importable events in ics content")
	default:
		response.InternalError(c)
	}
}
