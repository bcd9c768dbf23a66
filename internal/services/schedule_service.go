package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salaogestor_backend/internal/models"
	"salaogestor_backend/internal/repositories"
	"salaogestor_backend/internal/schedule"
	"salaogestor_backend/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("salaogestor/services")

// ScheduleService builds the weekly appointment board for a caller.
type ScheduleService interface {
	GetWeekView(ctx context.Context, caller models.Identity, offset int) (*schedule.WeekView, error)
}

type scheduleService struct {
	appointmentRepo repositories.AppointmentRepository
	staffRepo       repositories.StaffRepository
	now             func() time.Time
}

// NewScheduleService creates a ScheduleService. now supplies the salon's
// local wall clock; nil means time.Now.
func NewScheduleService(appointmentRepo repositories.AppointmentRepository, staffRepo repositories.StaffRepository, now func() time.Time) ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &scheduleService{appointmentRepo: appointmentRepo, staffRepo: staffRepo, now: now}
}

// GetWeekView resolves the Monday..Friday window for offset, loads the
// caller's profile and role-scoped appointments, and folds them into a grid.
// Admins see every staff member's appointments; employees only their own.
// Store failures are returned whole; there is no partial view.
func (s *scheduleService) GetWeekView(ctx context.Context, caller models.Identity, offset int) (*schedule.WeekView, error) {
	ctx, span := tracer.Start(ctx, "schedule.GetWeekView")
	defer span.End()

	now := s.now()
	start, end := schedule.WeekWindow(now, offset)
	span.SetAttributes(
		attribute.String("caller.role", string(caller.Role)),
		attribute.Int("week.offset", offset),
		attribute.String("week.start", start.Format(DateLayout)),
	)

	email := utils.NormalizeEmail(caller.Email)
	profile, err := s.staffRepo.GetProfileByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "profile lookup failed")
			return nil, fmt.Errorf("failed to load staff profile: %w", err)
		}
		profile = nil
	}

	var staff *string
	if !caller.IsAdmin() {
		staff = &email
	}
	appts, err := s.appointmentRepo.ListInRange(ctx, start, end, staff)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "appointment query failed")
		return nil, fmt.Errorf("failed to load appointments for week: %w", err)
	}

	view := schedule.Build(appts, now, offset)
	view.Profile = profile

	for _, a := range view.Unslotted {
		utils.LogWarn("appointment outside schedule slots", map[string]interface{}{
			"appointment_id": a.ID,
			"date":           a.DateString(),
			"time":           a.TimeString(),
			"staff":          a.Staff,
		})
	}
	span.SetAttributes(
		attribute.Int("totals.booked", view.Totals.Booked),
		attribute.Int("totals.off_grid", view.Totals.OffGrid),
	)
	return &view, nil
}
