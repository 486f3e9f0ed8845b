package handler

import (
	"net/http"

	"medibook/internal/doctors/service"
	apperrors "medibook/pkg/errors"
	httputil "medibook/pkg/http"
	"medibook/pkg/logger"
	"medibook/pkg/middleware"
	"medibook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DoctorHandler struct {
	service service.DoctorService
	log     *logger.Logger
}

func NewDoctorHandler(service service.DoctorService, log *logger.Logger) *DoctorHandler {
	return &DoctorHandler{
		service: service,
		log:     log,
	}
}

func (h *DoctorHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "Register")
	if !ok {
		return
	}

	var reg model.DoctorRegistration
	if err := httputil.DecodeJSON(r, &reg); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	profile, err := h.service.Register(r.Context(), actor, &reg)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, profile); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *DoctorHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	profile, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DoctorHandler) GetSchedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "GetSchedule")
	if !ok {
		return
	}

	template, err := h.service.GetSchedule(r.Context(), actor)
	if err != nil {
		h.writeError(w, "GetSchedule", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.ScheduleResponse{AvailableTimeslots: template}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSchedule", "operation", "WriteSuccess", "error", err)
	}
}

// UpdateSchedule reads the raw body because the accepted layouts are
// decided by the service, not by a fixed struct.
func (h *DoctorHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "UpdateSchedule")
	if !ok {
		return
	}

	body, err := httputil.ReadBody(r)
	if err != nil {
		h.writeError(w, "UpdateSchedule", err)
		return
	}

	template, err := h.service.UpdateSchedule(r.Context(), actor, body)
	if err != nil {
		h.writeError(w, "UpdateSchedule", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.ScheduleResponse{AvailableTimeslots: template}); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateSchedule", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DoctorHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/doctors", h.Register)
	router.GET("/api/v1/doctors/id/:id", h.GetByID)
	router.GET("/api/v1/doctors/me/schedule", h.GetSchedule)
	router.PUT("/api/v1/doctors/me/schedule", h.UpdateSchedule)
}

func (h *DoctorHandler) actor(w http.ResponseWriter, r *http.Request, handler string) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
	}
	return actor, ok
}

func (h *DoctorHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
