package services

import (
	"context"
	"errors"
	"testing"

	"salaogestor_backend/internal/models"
)

type appointmentFixture struct {
	svc     AppointmentService
	appts   *fakeAppointmentRepo
	clients *fakeClientRepo
	admin   models.Identity
	ana     models.Identity
	bia     models.Identity
	client  *models.Client
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	users := newFakeAuthRepo()
	clients := newFakeClientRepo()
	appts := newFakeAppointmentRepo(clients)

	admin := users.add("admin@salon.com", models.RoleAdmin)
	ana := users.add("ana@salon.com", models.RoleEmployee)
	bia := users.add("bia@salon.com", models.RoleEmployee)

	client := &models.Client{Name: "Carla"}
	if _, err := clients.CreateClient(context.Background(), nil, client); err != nil {
		t.Fatalf("seed client: %v", err)
	}

	return &appointmentFixture{
		svc:     NewAppointmentService(appts, clients, users, nil),
		appts:   appts,
		clients: clients,
		admin:   models.Identity{UserID: admin.ID, Email: admin.Email, Role: admin.Role},
		ana:     models.Identity{UserID: ana.ID, Email: ana.Email, Role: ana.Role},
		bia:     models.Identity{UserID: bia.ID, Email: bia.Email, Role: bia.Role},
		client:  client,
	}
}

func (f *appointmentFixture) request(date, slot string) CreateAppointmentRequest {
	return CreateAppointmentRequest{ClientID: f.client.ID, Service: "Corte", Date: date, Time: slot}
}

func TestCreateAppointmentForSelf(t *testing.T) {
	f := newAppointmentFixture(t)
	appt, err := f.svc.CreateAppointment(context.Background(), f.ana, f.request("2026-10-15", "14:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appt.Staff != "ana@salon.com" {
		t.Fatalf("expected staff to default to caller, got %q", appt.Staff)
	}
	if appt.Status != models.AppointmentStatusPending {
		t.Fatalf("expected pending, got %s", appt.Status)
	}
	if appt.ClientName != "Carla" {
		t.Fatalf("expected joined client name, got %q", appt.ClientName)
	}
	if appt.DateString() != "2026-10-15" || appt.TimeString() != "14:00" {
		t.Fatalf("unexpected date/time %s %s", appt.DateString(), appt.TimeString())
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateAppointmentRequest
		want error
	}{
		{"off-grid time", f.request("2026-10-15", "09:15"), ErrInvalidTimeSlot},
		{"lunch gap", f.request("2026-10-15", "12:00"), ErrInvalidTimeSlot},
		{"saturday", f.request("2026-10-17", "09:00"), ErrNotWorkingDay},
		{"bad date", f.request("15/10/2026", "09:00"), ErrInvalidDate},
		{"unknown client", CreateAppointmentRequest{ClientID: 999, Service: "Corte", Date: "2026-10-15", Time: "09:00"}, ErrClientForAppointmentNotFound},
		{"blank service", CreateAppointmentRequest{ClientID: f.client.ID, Service: " ", Date: "2026-10-15", Time: "09:00"}, ErrAppointmentValidation},
	}
	for _, tc := range cases {
		if _, err := f.svc.CreateAppointment(ctx, f.ana, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreateAppointmentStaffRules(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	req := f.request("2026-10-15", "09:00")
	req.Staff = "bia@salon.com"
	if _, err := f.svc.CreateAppointment(ctx, f.ana, req); !errors.Is(err, ErrAppointmentForbidden) {
		t.Fatalf("employee booking for another: expected ErrAppointmentForbidden, got %v", err)
	}

	appt, err := f.svc.CreateAppointment(ctx, f.admin, req)
	if err != nil {
		t.Fatalf("admin booking for bia: %v", err)
	}
	if appt.Staff != "bia@salon.com" {
		t.Fatalf("expected bia, got %q", appt.Staff)
	}

	req.Staff = "ghost@salon.com"
	if _, err := f.svc.CreateAppointment(ctx, f.admin, req); !errors.Is(err, ErrStaffForAppointmentNotFound) {
		t.Fatalf("unknown staff: expected ErrStaffForAppointmentNotFound, got %v", err)
	}
}

func TestCreateAppointmentRejectsDoubleBooking(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateAppointment(ctx, f.ana, f.request("2026-10-15", "10:00"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.svc.CreateAppointment(ctx, f.ana, f.request("2026-10-15", "10:00")); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Another staff member may use the same slot.
	if _, err := f.svc.CreateAppointment(ctx, f.bia, f.request("2026-10-15", "10:00")); err != nil {
		t.Fatalf("other staff same slot: %v", err)
	}

	// A cancelled appointment frees its slot.
	if _, err := f.svc.CancelAppointment(ctx, f.ana, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.CreateAppointment(ctx, f.ana, f.request("2026-10-15", "10:00")); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestCreateAppointmentMapsUniqueIndexRace(t *testing.T) {
	f := newAppointmentFixture(t)
	f.appts.raceOnCreate = true
	if _, err := f.svc.CreateAppointment(context.Background(), f.ana, f.request("2026-10-15", "11:00")); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestAppointmentVisibilityIsRoleScoped(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	appt, err := f.svc.CreateAppointment(ctx, f.ana, f.request("2026-10-15", "09:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.GetAppointmentByID(ctx, f.ana, appt.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := f.svc.GetAppointmentByID(ctx, f.admin, appt.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := f.svc.GetAppointmentByID(ctx, f.bia, appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("other employee: expected ErrAppointmentNotFound, got %v", err)
	}
	if _, err := f.svc.FinishAppointment(ctx, f.bia, appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("other employee finish: expected ErrAppointmentNotFound, got %v", err)
	}

	list, total, err := f.svc.GetAppointments(ctx, f.bia, models.AppointmentFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 || total != 0 {
		t.Fatalf("expected bia to see nothing, got %d", len(list))
	}
	if f.appts.lastFilters.Staff == nil || *f.appts.lastFilters.Staff != "bia@salon.com" {
		t.Fatalf("expected staff filter forced to caller, got %v", f.appts.lastFilters.Staff)
	}
	if f.appts.lastFilters.PageSize != 20 || f.appts.lastFilters.Page != 1 {
		t.Fatalf("expected default paging, got %d/%d", f.appts.lastFilters.Page, f.appts.lastFilters.PageSize)
	}

	list, _, err = f.svc.GetAppointments(ctx, f.admin, models.AppointmentFilters{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected admin to see 1, got %d", len(list))
	}
}

func TestGetAppointmentsRejectsUnknownStatus(t *testing.T) {
	f := newAppointmentFixture(t)
	status := "archived"
	_, _, err := f.svc.GetAppointments(context.Background(), f.admin, models.AppointmentFilters{Status: &status})
	if !errors.Is(err, ErrAppointmentValidation) {
		t.Fatalf("expected ErrAppointmentValidation, got %v", err)
	}
}

func TestFinishAppointmentIsFinal(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	appt, err := f.svc.CreateAppointment(ctx, f.ana, f.request("2026-10-16", "16:30"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	finished, err := f.svc.FinishAppointment(ctx, f.ana, appt.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished.Status != models.AppointmentStatusFinished {
		t.Fatalf("expected finished, got %s", finished.Status)
	}
	if _, err := f.svc.CancelAppointment(ctx, f.ana, appt.ID); !errors.Is(err, ErrAppointmentStatusFinal) {
		t.Fatalf("expected ErrAppointmentStatusFinal, got %v", err)
	}
	if _, err := f.svc.FinishAppointment(ctx, f.admin, 404); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}
