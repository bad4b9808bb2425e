// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/logging"
	"github.com/rtcamp/appointment-service/internal/service"
	"github.com/rtcamp/appointment-service/pkg/constants"
)

// AppointmentAPI exposes the scheduling services over HTTP.
type AppointmentAPI struct {
	authService    *service.AuthService
	slotService    *service.SlotService
	bookingService *service.BookingService
}

// NewAppointmentAPI creates a new AppointmentAPI.
func NewAppointmentAPI(
	authService *service.AuthService,
	slotService *service.SlotService,
	bookingService *service.BookingService,
) *AppointmentAPI {
	return &AppointmentAPI{
		authService:    authService,
		slotService:    slotService,
		bookingService: bookingService,
	}
}

// ServiceReady checks if the API's services are ready for use.
func (a *AppointmentAPI) ServiceReady() bool {
	return a.authService.ServiceReady() &&
		a.slotService.ServiceReady() &&
		a.bookingService.ServiceReady()
}

// Routes mounts all API routes on the router.
func (a *AppointmentAPI) Routes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/livez", a.Livez)
	router.HandlerFunc(http.MethodGet, "/readyz", a.Readyz)

	router.Handle(http.MethodGet, "/groups/:uid/slots", a.authorized(a.GetSlots))
	router.Handle(http.MethodGet, "/groups/:uid/slots/range", a.authorized(a.GetSlotsRange))
	router.Handle(http.MethodPost, "/bookings", a.authorized(a.BookSlot))
	router.Handle(http.MethodDelete, "/bookings/:uid", a.authorized(a.CancelBooking))
}

// Livez checks if the service is alive.
func (a *AppointmentAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	// This always returns as long as the service is still running. As this
	// endpoint is expected to be used as a Kubernetes liveness check, this
	// service must likewise self-detect non-recoverable errors and
	// self-terminate.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// Readyz checks if the service is able to take inbound requests.
func (a *AppointmentAPI) Readyz(w http.ResponseWriter, r *http.Request) {
	if !a.ServiceReady() {
		writeError(r.Context(), w, domain.NewUnavailableError("service not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// authorized wraps a route with bearer token authentication, placing the
// authenticated principal in the request context.
func (a *AppointmentAPI) authorized(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		ctx := r.Context()

		header := r.Header.Get(constants.AuthorizationHeader)
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(ctx, w, domain.NewValidationError("missing bearer token"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		principal, err := a.authService.ParsePrincipal(ctx, token, slog.Default())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(errorBody{Code: strconv.Itoa(http.StatusUnauthorized), Message: "invalid bearer token"})
			return
		}

		ctx = context.WithValue(ctx, constants.PrincipalContextID, principal)
		ctx = logging.AppendCtx(ctx, slog.String("principal", principal))

		next(w, r.WithContext(ctx), params)
	}
}

// GetSlots serves single-day slot queries.
func (a *AppointmentAPI) GetSlots(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx := r.Context()
	query := r.URL.Query()

	payload := models.GetSlotsRequest{
		GroupUID:              params.ByName("uid"),
		Date:                  query.Get("date"),
		TimezoneOffsetMinutes: parseOffset(query.Get("tz_offset")),
	}

	result, err := a.slotService.GetAvailableSlots(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

// GetSlotsRange serves date-range slot queries.
func (a *AppointmentAPI) GetSlotsRange(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx := r.Context()
	query := r.URL.Query()

	payload := models.GetSlotsRangeRequest{
		GroupUID:              params.ByName("uid"),
		StartDate:             query.Get("start_date"),
		EndDate:               query.Get("end_date"),
		TimezoneOffsetMinutes: parseOffset(query.Get("tz_offset")),
	}

	result, err := a.slotService.GetAvailableSlotsRange(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

// BookSlot serves booking requests, both new bookings and token-bearing
// reschedules.
func (a *AppointmentAPI) BookSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var payload models.BookSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(ctx, w, domain.NewValidationError("invalid booking payload", err))
		return
	}

	response, err := a.bookingService.BookSlot(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if !response.Accepted {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(ctx, w, status, response)
}

// CancelBooking withdraws a booking.
func (a *AppointmentAPI) CancelBooking(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx := r.Context()

	err := a.bookingService.CancelBooking(ctx, params.ByName("uid"), r.URL.Query().Get("reason"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// errorBody is the JSON error payload.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a domain error onto the HTTP status code for its type.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypePolicyRejection:
		status = http.StatusUnprocessableEntity
	case domain.ErrorTypeUpstreamFetch:
		status = http.StatusBadGateway
	case domain.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	writeJSON(ctx, w, status, errorBody{
		Code:    strconv.Itoa(status),
		Message: err.Error(),
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "error encoding response", logging.ErrKey, err)
	}
}

func parseOffset(raw string) int {
	if raw == "" {
		return 0
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return offset
}
