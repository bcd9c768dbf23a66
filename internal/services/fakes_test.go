package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"salaogestor_backend/internal/models"
	"salaogestor_backend/internal/repositories"

	"github.com/lib/pq"
)

type fakeAuthRepo struct {
	users  map[int64]*models.User
	nextID int64
	err    error
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[int64]*models.User{}}
}

func (r *fakeAuthRepo) add(email string, role models.Role) *models.User {
	r.nextID++
	u := &models.User{ID: r.nextID, Email: email, Role: role, CreatedAt: time.Now()}
	r.users[u.ID] = u
	return u
}

func (r *fakeAuthRepo) CreateUser(_ context.Context, _ repositories.SQLExecutor, user *models.User) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return 0, dupErr("users_email_key")
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return user.ID, nil
}

func (r *fakeAuthRepo) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAuthRepo) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

func (r *fakeAuthRepo) UpdatePasswordHash(_ context.Context, _ repositories.SQLExecutor, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeAuthRepo) CountByRole(_ context.Context, role models.Role) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeClientRepo struct {
	clients map[int64]*models.Client
	inUse   map[int64]bool
	nextID  int64
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[int64]*models.Client{}, inUse: map[int64]bool{}}
}

func (r *fakeClientRepo) emailTaken(email *string, except int64) bool {
	if email == nil {
		return false
	}
	for _, c := range r.clients {
		if c.ID != except && c.Email != nil && *c.Email == *email {
			return true
		}
	}
	return false
}

func (r *fakeClientRepo) CreateClient(_ context.Context, _ repositories.SQLExecutor, client *models.Client) (int64, error) {
	if r.emailTaken(client.Email, 0) {
		return 0, dupErr("clients_email_key")
	}
	r.nextID++
	client.ID = r.nextID
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	cp := *client
	r.clients[client.ID] = &cp
	return client.ID, nil
}

func (r *fakeClientRepo) GetClientByID(_ context.Context, id int64) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) GetClientByEmail(_ context.Context, email string) (*models.Client, error) {
	for _, c := range r.clients {
		if c.Email != nil && *c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeClientRepo) GetClients(_ context.Context, page, pageSize int, _ *string) ([]models.Client, int, error) {
	out := []models.Client{}
	for _, c := range r.clients {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeClientRepo) UpdateClient(_ context.Context, _ repositories.SQLExecutor, client *models.Client) error {
	if _, ok := r.clients[client.ID]; !ok {
		return repositories.ErrNotFound
	}
	if r.emailTaken(client.Email, client.ID) {
		return dupErr("clients_email_key")
	}
	cp := *client
	r.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) DeleteClient(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := r.clients[id]; !ok {
		return repositories.ErrNotFound
	}
	if r.inUse[id] {
		return fmt.Errorf("%w (constraint: appointments_client_id_fkey): %w", repositories.ErrForeignKey,
			&pq.Error{Code: "23503", Constraint: "appointments_client_id_fkey"})
	}
	delete(r.clients, id)
	return nil
}

type fakeStaffRepo struct {
	profiles map[string]models.StaffProfile
	err      error
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{profiles: map[string]models.StaffProfile{}}
}

func (r *fakeStaffRepo) GetProfileByEmail(_ context.Context, email string) (*models.StaffProfile, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.profiles[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *fakeStaffRepo) UpsertProfile(_ context.Context, _ repositories.SQLExecutor, p *models.StaffProfile) error {
	p.UpdatedAt = time.Now()
	r.profiles[p.Email] = *p
	return nil
}

func (r *fakeStaffRepo) ListProfiles(_ context.Context) ([]models.StaffProfile, error) {
	out := []models.StaffProfile{}
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeAppointmentRepo struct {
	appts   []models.Appointment
	clients *fakeClientRepo
	nextID  int64
	err     error
	// raceOnCreate simulates a concurrent insert winning the unique index.
	raceOnCreate bool
	lastFilters  models.AppointmentFilters
}

func newFakeAppointmentRepo(clients *fakeClientRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{clients: clients}
}

func (r *fakeAppointmentRepo) add(clientName, service, staff, date, slot string, status models.AppointmentStatus) models.Appointment {
	d, _ := time.Parse(DateLayout, date)
	t, _ := time.Parse(TimeLayout, slot)
	r.nextID++
	a := models.Appointment{
		ID: r.nextID, ClientName: clientName, Service: service, Staff: staff,
		Date: d, Time: t, Status: status,
	}
	r.appts = append(r.appts, a)
	return a
}

func (r *fakeAppointmentRepo) CreateAppointment(_ context.Context, _ repositories.SQLExecutor, appt *models.Appointment) (int64, error) {
	if r.raceOnCreate {
		return 0, dupErr("appointments_staff_slot_key")
	}
	r.nextID++
	appt.ID = r.nextID
	if c, ok := r.clients.clients[appt.ClientID]; ok {
		appt.ClientName = c.Name
	}
	r.appts = append(r.appts, *appt)
	return appt.ID, nil
}

func (r *fakeAppointmentRepo) GetAppointmentByID(_ context.Context, id int64) (*models.Appointment, error) {
	for _, a := range r.appts {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAppointmentRepo) ListInRange(_ context.Context, start, end time.Time, staff *string) ([]models.Appointment, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []models.Appointment{}
	for _, a := range r.appts {
		if a.Date.Before(start) || a.Date.After(end) || a.Status == models.AppointmentStatusCancelled {
			continue
		}
		if staff != nil && a.Staff != *staff {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.Before(out[j].Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeAppointmentRepo) GetAppointments(_ context.Context, f models.AppointmentFilters) ([]models.Appointment, int, error) {
	r.lastFilters = f
	out := []models.Appointment{}
	for _, a := range r.appts {
		if f.Staff != nil && a.Staff != *f.Staff {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (r *fakeAppointmentRepo) SlotTaken(_ context.Context, staff string, date time.Time, slot string) (bool, error) {
	for _, a := range r.appts {
		if a.Staff == staff && a.Date.Equal(date) && a.TimeString() == slot && a.Status != models.AppointmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int64, status models.AppointmentStatus) error {
	for i := range r.appts {
		if r.appts[i].ID == id {
			r.appts[i].Status = status
			return nil
		}
	}
	return repositories.ErrNotFound
}

func dupErr(constraint string) error {
	return fmt.Errorf("%w (constraint: %s): %w", repositories.ErrDuplicateKey, constraint,
		&pq.Error{Code: "23505", Constraint: constraint})
}
