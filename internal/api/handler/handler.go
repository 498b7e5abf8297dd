package handler

import "github.com/LadaVilada/kido-sub000/internal/service"

// Handler is the aggregate entry point for all HTTP handlers.
type Handler struct {
	Auth     *AuthHandler
	Child    *ChildHandler
	Activity *ActivityHandler
	Calendar *CalendarHandler
	Settings *SettingsHandler
	Export   *ExportHandler
	ICS      *ICSHandler
}

// NewHandler creates the Handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Child:    NewChildHandler(svc.Child),
		Activity: NewActivityHandler(svc.Activity),
		Calendar: NewCalendarHandler(svc.Calendar),
		Settings: NewSettingsHandler(svc.Settings),
		Export:   NewExportHandler(svc.Export),
		ICS:      NewICSHandler(svc.ICS),
	}
}
