package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salaogestor_backend/internal/models"
	"salaogestor_backend/internal/repositories"
	"salaogestor_backend/internal/schedule"
	"salaogestor_backend/pkg/utils"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// --- Custom Service Errors for Appointment ---
var (
	ErrAppointmentNotFound          = errors.New("appointment not found")
	ErrAppointmentValidation        = errors.New("appointment data validation error")
	ErrInvalidDate                  = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrNotWorkingDay                = errors.New("appointments can only be booked Monday to Friday")
	ErrInvalidTimeSlot              = errors.New("time must be one of the schedule slots")
	ErrSlotTaken                    = errors.New("staff member already has an appointment in this slot")
	ErrClientForAppointmentNotFound = errors.New("client specified for appointment not found")
	ErrStaffForAppointmentNotFound  = errors.New("staff member specified for appointment not found")
	ErrAppointmentForbidden         = errors.New("employees can only manage their own appointments")
	ErrAppointmentStatusFinal       = errors.New("appointment is already finished or cancelled")
)

// --- Appointment DTOs ---
type CreateAppointmentRequest struct {
	ClientID int64  `json:"client_id" binding:"required,gt=0"`
	Service  string `json:"service" binding:"required"`
	Staff    string `json:"staff" binding:"omitempty,email"`
	Date     string `json:"date" binding:"required,isodate"`
	Time     string `json:"time" binding:"required,timeslot"`
}

// --- AppointmentService Interface ---
type AppointmentService interface {
	CreateAppointment(ctx context.Context, caller models.Identity, req CreateAppointmentRequest) (*models.Appointment, error)
	GetAppointmentByID(ctx context.Context, caller models.Identity, id int64) (*models.Appointment, error)
	GetAppointments(ctx context.Context, caller models.Identity, filters models.AppointmentFilters) ([]models.Appointment, int, error)
	FinishAppointment(ctx context.Context, caller models.Identity, id int64) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, caller models.Identity, id int64) (*models.Appointment, error)
}

type appointmentService struct {
	appointmentRepo repositories.AppointmentRepository
	clientRepo      repositories.ClientRepository
	authRepo        repositories.AuthRepository
	db              repositories.SQLExecutor
}

// NewAppointmentService creates a new instance of AppointmentService.
func NewAppointmentService(
	appointmentRepo repositories.AppointmentRepository,
	clientRepo repositories.ClientRepository,
	authRepo repositories.AuthRepository,
	db repositories.SQLExecutor,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		clientRepo:      clientRepo,
		authRepo:        authRepo,
		db:              db,
	}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// resolveStaff decides whose calendar the appointment goes on.
// Employees always book for themselves; admins default to themselves.
func resolveStaff(caller models.Identity, requested string) (string, error) {
	requested = utils.NormalizeEmail(requested)
	if caller.IsAdmin() {
		if requested == "" {
			return utils.NormalizeEmail(caller.Email), nil
		}
		return requested, nil
	}
	if requested != "" && requested != utils.NormalizeEmail(caller.Email) {
		return "", ErrAppointmentForbidden
	}
	return utils.NormalizeEmail(caller.Email), nil
}

func (s *appointmentService) CreateAppointment(ctx context.Context, caller models.Identity, req CreateAppointmentRequest) (*models.Appointment, error) {
	service := strings.TrimSpace(req.Service)
	if service == "" {
		return nil, fmt.Errorf("%w: service cannot be empty", ErrAppointmentValidation)
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if _, ok := schedule.WeekdayIndex(date); !ok {
		return nil, ErrNotWorkingDay
	}
	slot := strings.TrimSpace(req.Time)
	if !schedule.IsTimeSlot(slot) {
		return nil, ErrInvalidTimeSlot
	}
	tod, err := time.Parse(TimeLayout, slot)
	if err != nil {
		return nil, ErrInvalidTimeSlot
	}

	staff, err := resolveStaff(caller, req.Staff)
	if err != nil {
		return nil, err
	}
	if _, err := s.authRepo.FindUserByEmail(ctx, staff); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffForAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to look up staff account: %w", err)
	}

	if _, err := s.clientRepo.GetClientByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientForAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	taken, err := s.appointmentRepo.SlotTaken(ctx, staff, date, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	if taken {
		return nil, ErrSlotTaken
	}

	appt := &models.Appointment{
		ClientID: req.ClientID,
		Service:  service,
		Staff:    staff,
		Date:     date,
		Time:     tod,
		Status:   models.AppointmentStatusPending,
	}
	id, err := s.appointmentRepo.CreateAppointment(ctx, s.db, appt)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey) &&
			repositories.ConstraintName(err) == "appointments_staff_slot_key":
			// Lost the race against a concurrent booking.
			return nil, ErrSlotTaken
		case errors.Is(err, repositories.ErrForeignKey):
			return nil, ErrClientForAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to create appointment in repository: %w", err)
	}

	utils.LogInfo("appointment booked", map[string]interface{}{
		"appointment_id": id, "staff": staff, "date": appt.DateString(), "time": slot,
	})
	return s.appointmentRepo.GetAppointmentByID(ctx, id)
}

// GetAppointmentByID hides appointments of other staff from employees.
func (s *appointmentService) GetAppointmentByID(ctx context.Context, caller models.Identity, id int64) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment by ID: %w", err)
	}
	if !caller.IsAdmin() && appt.Staff != utils.NormalizeEmail(caller.Email) {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

func (s *appointmentService) GetAppointments(ctx context.Context, caller models.Identity, filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Status != nil && *filters.Status != "" && !models.IsValidAppointmentStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status '%s'", ErrAppointmentValidation, *filters.Status)
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, 0, fmt.Errorf("%w: date_to is before date_from", ErrAppointmentValidation)
	}
	if !caller.IsAdmin() {
		own := utils.NormalizeEmail(caller.Email)
		filters.Staff = &own
	} else if filters.Staff != nil {
		staff := utils.NormalizeEmail(*filters.Staff)
		filters.Staff = &staff
	}

	appts, total, err := s.appointmentRepo.GetAppointments(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get appointments: %w", err)
	}
	return appts, total, nil
}

func (s *appointmentService) FinishAppointment(ctx context.Context, caller models.Identity, id int64) (*models.Appointment, error) {
	return s.transition(ctx, caller, id, models.AppointmentStatusFinished)
}

func (s *appointmentService) CancelAppointment(ctx context.Context, caller models.Identity, id int64) (*models.Appointment, error) {
	return s.transition(ctx, caller, id, models.AppointmentStatusCancelled)
}

func (s *appointmentService) transition(ctx context.Context, caller models.Identity, id int64, to models.AppointmentStatus) (*models.Appointment, error) {
	appt, err := s.GetAppointmentByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.IsFinal() {
		return nil, ErrAppointmentStatusFinal
	}
	if err := s.appointmentRepo.UpdateStatus(ctx, s.db, id, to); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	appt.Status = to
	return appt, nil
}
