// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

// Package handlers dispatches NATS messages to the scheduling services.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rtcamp/appointment-service/internal/domain"
	"github.com/rtcamp/appointment-service/internal/domain/models"
	"github.com/rtcamp/appointment-service/internal/logging"
	"github.com/rtcamp/appointment-service/internal/service"
)

// AppointmentHandler handles slot and booking messages.
type AppointmentHandler struct {
	slotService    *service.SlotService
	bookingService *service.BookingService
}

func NewAppointmentHandler(
	slotService *service.SlotService,
	bookingService *service.BookingService,
) *AppointmentHandler {
	return &AppointmentHandler{
		slotService:    slotService,
		bookingService: bookingService,
	}
}

func (h *AppointmentHandler) HandlerReady() bool {
	return h.slotService.ServiceReady() && h.bookingService.ServiceReady()
}

// HandleMessage implements domain.MessageHandler interface
func (h *AppointmentHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.GetSlotsSubject:      h.HandleGetSlots,
		models.GetSlotsRangeSubject: h.HandleGetSlotsRange,
		models.BookSlotSubject:      h.HandleBookSlot,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		h.respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message",
			logging.ErrKey, err,
		)
		h.respond(ctx, msg, nil)
		return
	}

	h.respond(ctx, msg, response)
}

func (h *AppointmentHandler) respond(ctx context.Context, msg domain.Message, response []byte) {
	if !msg.HasReply() {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
		return
	}
	if err := msg.Respond(response); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
	}
}

// HandleGetSlots serves single-day slot queries.
func (h *AppointmentHandler) HandleGetSlots(ctx context.Context, msg domain.Message) ([]byte, error) {
	var payload models.GetSlotsRequest
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		return nil, domain.NewValidationError("invalid get_slots payload", err)
	}

	ctx = logging.AppendCtx(ctx,
		slog.String("group_uid", payload.GroupUID),
		slog.String("date", payload.Date),
	)

	result, err := h.slotService.GetAvailableSlots(ctx, &payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}

// HandleGetSlotsRange serves date-range slot queries.
func (h *AppointmentHandler) HandleGetSlotsRange(ctx context.Context, msg domain.Message) ([]byte, error) {
	var payload models.GetSlotsRangeRequest
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		return nil, domain.NewValidationError("invalid get_slots_range payload", err)
	}

	ctx = logging.AppendCtx(ctx,
		slog.String("group_uid", payload.GroupUID),
		slog.String("start_date", payload.StartDate),
		slog.String("end_date", payload.EndDate),
	)

	result, err := h.slotService.GetAvailableSlotsRange(ctx, &payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}

// HandleBookSlot serves booking requests. Policy rejections marshal into a
// non-accepted response with the reason; only infrastructure failures leave
// the requester without a reply.
func (h *AppointmentHandler) HandleBookSlot(ctx context.Context, msg domain.Message) ([]byte, error) {
	var payload models.BookSlotRequest
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		return nil, domain.NewValidationError("invalid book_slot payload", err)
	}

	ctx = logging.AppendCtx(ctx,
		slog.String("group_uid", payload.GroupUID),
		slog.String("date", payload.Date),
	)

	response, err := h.bookingService.BookSlot(ctx, &payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(response)
}
