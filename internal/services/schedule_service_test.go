package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"salaogestor_backend/internal/models"
	"salaogestor_backend/internal/schedule"
	"salaogestor_backend/pkg/utils"
)

// Wednesday.
var fixedNow = time.Date(2026, time.October, 14, 10, 30, 0, 0, time.UTC)

func newScheduleFixture() (ScheduleService, *fakeAppointmentRepo, *fakeStaffRepo) {
	appts := newFakeAppointmentRepo(newFakeClientRepo())
	staff := newFakeStaffRepo()
	svc := NewScheduleService(appts, staff, func() time.Time { return fixedNow })
	return svc, appts, staff
}

var (
	employeeA = models.Identity{UserID: 1, Email: "ana@salon.com", Role: models.RoleEmployee}
	employeeC = models.Identity{UserID: 3, Email: "carol@salon.com", Role: models.RoleEmployee}
	adminB    = models.Identity{UserID: 2, Email: "bruno@salon.com", Role: models.RoleAdmin}
)

func TestWeekViewEndToEnd(t *testing.T) {
	svc, appts, staff := newScheduleFixture()
	staff.profiles["ana@salon.com"] = models.StaffProfile{Email: "ana@salon.com", Name: "Ana"}
	appts.add("Ana", "Corte", "ana@salon.com", "2026-10-15", "14:00", models.AppointmentStatusPending)

	view, err := svc.GetWeekView(context.Background(), employeeA, 0)
	if err != nil {
		t.Fatalf("week view: %v", err)
	}
	cell := view.Grid["14:00"]["thursday"]
	if cell == nil || cell.Client != "Ana" || cell.Service != "Corte" {
		t.Fatalf("unexpected cell: %+v", cell)
	}
	want := schedule.Totals{Booked: 1, Finished: 0, Available: 59}
	if view.Totals != want {
		t.Fatalf("totals = %+v, want %+v", view.Totals, want)
	}
	if view.Profile == nil || view.Profile.Name != "Ana" {
		t.Fatalf("expected profile, got %+v", view.Profile)
	}
	if view.WeekStart != "2026-10-12" || view.WeekEnd != "2026-10-16" {
		t.Fatalf("unexpected window %s..%s", view.WeekStart, view.WeekEnd)
	}
}

func TestWeekViewRoleScoping(t *testing.T) {
	svc, appts, _ := newScheduleFixture()
	appts.add("Dora", "Escova", "ana@salon.com", "2026-10-12", "09:00", models.AppointmentStatusPending)
	ctx := context.Background()

	for _, tc := range []struct {
		caller models.Identity
		sees   bool
	}{
		{employeeA, true},
		{employeeC, false},
		{adminB, true},
	} {
		view, err := svc.GetWeekView(ctx, tc.caller, 0)
		if err != nil {
			t.Fatalf("%s: %v", tc.caller.Email, err)
		}
		got := view.Grid["09:00"]["monday"] != nil
		if got != tc.sees {
			t.Fatalf("%s: sees appointment = %v, want %v", tc.caller.Email, got, tc.sees)
		}
	}
}

func TestWeekViewMissingProfileIsNull(t *testing.T) {
	svc, _, _ := newScheduleFixture()
	view, err := svc.GetWeekView(context.Background(), employeeC, 0)
	if err != nil {
		t.Fatalf("week view: %v", err)
	}
	if view.Profile != nil {
		t.Fatalf("expected nil profile, got %+v", view.Profile)
	}
	if view.Totals.Available != schedule.Capacity() {
		t.Fatalf("expected empty grid, available=%d", view.Totals.Available)
	}
}

func TestWeekViewOffsetWindow(t *testing.T) {
	svc, appts, _ := newScheduleFixture()
	appts.add("Eva", "Manicure", "ana@salon.com", "2026-10-19", "09:30", models.AppointmentStatusFinished)

	current, err := svc.GetWeekView(context.Background(), employeeA, 0)
	if err != nil {
		t.Fatalf("current week: %v", err)
	}
	if current.Totals.Booked != 0 {
		t.Fatalf("next week's appointment leaked into current week")
	}
	next, err := svc.GetWeekView(context.Background(), employeeA, 1)
	if err != nil {
		t.Fatalf("next week: %v", err)
	}
	if next.Grid["09:30"]["monday"] == nil || next.Totals.Finished != 1 {
		t.Fatalf("expected finished appointment next monday, got %+v", next.Totals)
	}
	if next.Offset != 1 {
		t.Fatalf("expected offset 1, got %d", next.Offset)
	}
}

func TestWeekViewExcludesCancelled(t *testing.T) {
	svc, appts, _ := newScheduleFixture()
	appts.add("Fabi", "Corte", "ana@salon.com", "2026-10-13", "15:00", models.AppointmentStatusCancelled)
	view, err := svc.GetWeekView(context.Background(), employeeA, 0)
	if err != nil {
		t.Fatalf("week view: %v", err)
	}
	if view.Totals.Booked != 0 || view.Grid["15:00"]["tuesday"] != nil {
		t.Fatalf("cancelled appointment shown: %+v", view.Totals)
	}
}

func TestWeekViewLogsOffGridAppointments(t *testing.T) {
	var buf bytes.Buffer
	utils.InitLoggerTo(&buf, "debug", false)
	t.Cleanup(func() { utils.InitLoggerTo(&bytes.Buffer{}, "info", false) })

	svc, appts, _ := newScheduleFixture()
	appts.add("Gi", "Corte", "ana@salon.com", "2026-10-12", "09:15", models.AppointmentStatusPending)
	view, err := svc.GetWeekView(context.Background(), employeeA, 0)
	if err != nil {
		t.Fatalf("week view: %v", err)
	}
	if view.Totals.Booked != 1 || view.Totals.OffGrid != 1 || view.Totals.Available != 60 {
		t.Fatalf("unexpected totals %+v", view.Totals)
	}
	if !strings.Contains(buf.String(), "appointment outside schedule slots") {
		t.Fatalf("expected warning log, got %q", buf.String())
	}
}

func TestWeekViewPropagatesStoreErrors(t *testing.T) {
	svc, appts, staff := newScheduleFixture()
	appts.err = errors.New("db down")
	if _, err := svc.GetWeekView(context.Background(), adminB, 0); err == nil {
		t.Fatalf("expected appointment query error")
	}

	appts.err = nil
	staff.err = errors.New("db down")
	if _, err := svc.GetWeekView(context.Background(), adminB, 0); err == nil {
		t.Fatalf("expected profile query error")
	}
}

func TestWeekViewIsIdempotent(t *testing.T) {
	svc, appts, _ := newScheduleFixture()
	appts.add("Ana", "Corte", "ana@salon.com", "2026-10-15", "14:00", models.AppointmentStatusPending)
	appts.add("Bia", "Escova", "bruno@salon.com", "2026-10-12", "09:00", models.AppointmentStatusFinished)

	render := func() []byte {
		view, err := svc.GetWeekView(context.Background(), adminB, 0)
		if err != nil {
			t.Fatalf("week view: %v", err)
		}
		b, err := json.Marshal(view)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return b
	}
	if first, second := render(), render(); !bytes.Equal(first, second) {
		t.Fatalf("outputs differ:\n%s\n%s", first, second)
	}
}
