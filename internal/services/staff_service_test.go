package services

import (
	"context"
	"errors"
	"testing"

	"salaogestor_backend/internal/models"
)

func TestUpsertProfile(t *testing.T) {
	users := newFakeAuthRepo()
	users.add("ana@salon.com", models.RoleEmployee)
	staff := newFakeStaffRepo()
	svc := NewStaffService(staff, users, nil)
	ctx := context.Background()

	p, err := svc.UpsertProfile(ctx, "ANA@salon.com", UpsertStaffProfileRequest{Name: " Ana ", PhotoURL: strPtr("https://cdn.salon.com/ana.jpg")})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.Email != "ana@salon.com" || p.Name != "Ana" {
		t.Fatalf("unexpected profile %+v", p)
	}

	if _, err := svc.UpsertProfile(ctx, "ana@salon.com", UpsertStaffProfileRequest{Name: "Ana Paula"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err := svc.GetProfile(ctx, "ana@salon.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ana Paula" || got.PhotoURL != nil {
		t.Fatalf("profile not replaced: %+v", got)
	}
}

func TestUpsertProfileRequiresAccount(t *testing.T) {
	svc := NewStaffService(newFakeStaffRepo(), newFakeAuthRepo(), nil)
	_, err := svc.UpsertProfile(context.Background(), "ghost@salon.com", UpsertStaffProfileRequest{Name: "Ghost"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc := NewStaffService(newFakeStaffRepo(), newFakeAuthRepo(), nil)
	if _, err := svc.GetProfile(context.Background(), "nobody@salon.com"); !errors.Is(err, ErrStaffProfileNotFound) {
		t.Fatalf("expected ErrStaffProfileNotFound, got %v", err)
	}
}
