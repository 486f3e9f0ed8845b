package handler

import (
	"fmt"
	"net/http"
	"time"

	"medibook/internal/appointments/service"
	apperrors "medibook/pkg/errors"
	httputil "medibook/pkg/http"
	"medibook/pkg/logger"
	"medibook/pkg/middleware"
	"medibook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "Create")
	if !ok {
		return
	}

	var req model.AppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	appt, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, appt); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "GetByID")
	if !ok {
		return
	}

	appt, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "List")
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	appointments, total, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, appointments, total, filter.Limit, filter.Offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Update")
	if !ok {
		return
	}

	var update model.AppointmentUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	appt, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "SetStatus")
	if !ok {
		return
	}

	var update model.StatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "SetStatus", err)
		return
	}

	appt, err := h.service.SetStatus(r.Context(), actor, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "SetStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "SetStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Cancel")
	if !ok {
		return
	}

	if _, err := h.service.Cancel(r.Context(), actor, ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, "Appointment cancelled successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *AppointmentHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "Stats")
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), actor)
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.RequiredQuery(r, "date")
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), ps.ByName("id"), date)
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "AvailableSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) CheckSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.RequiredQuery(r, "date")
	if err != nil {
		h.writeError(w, "CheckSlot", err)
		return
	}
	slot, err := httputil.RequiredQuery(r, "time")
	if err != nil {
		h.writeError(w, "CheckSlot", err)
		return
	}

	result, err := h.service.CheckSlot(r.Context(), ps.ByName("id"), date, slot)
	if err != nil {
		h.writeError(w, "CheckSlot", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckSlot", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments", h.List)
	router.GET("/api/v1/appointments/stats", h.Stats)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/id/:id", h.Update)
	router.DELETE("/api/v1/appointments/id/:id", h.Cancel)
	router.PUT("/api/v1/appointments/id/:id/status", h.SetStatus)
	router.GET("/api/v1/doctors/id/:id/slots", h.AvailableSlots)
	router.GET("/api/v1/doctors/id/:id/slots/check", h.CheckSlot)
}

func (h *AppointmentHandler) actor(w http.ResponseWriter, r *http.Request, handler string) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
	}
	return actor, ok
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseFilter(r *http.Request) (model.AppointmentFilter, error) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		return model.AppointmentFilter{}, err
	}

	query := r.URL.Query()
	filter := model.AppointmentFilter{
		Status:   model.AppointmentStatus(query.Get("status")),
		DateFrom: query.Get("date_from"),
		DateTo:   query.Get("date_to"),
		Limit:    limit,
		Offset:   offset,
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return filter, apperrors.InvalidInput(fmt.Sprintf("invalid status parameter: %s", filter.Status))
	}
	for name, value := range map[string]string{"date_from": filter.DateFrom, "date_to": filter.DateTo} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, value); err != nil {
			return filter, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter, must be YYYY-MM-DD: %s", name, value))
		}
	}
	if filter.DateFrom != "" && filter.DateTo != "" && filter.DateFrom > filter.DateTo {
		return filter, apperrors.InvalidInput("date_from must not be after date_to")
	}
	return filter, nil
}
