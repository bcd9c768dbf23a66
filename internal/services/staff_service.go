package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salaogestor_backend/internal/models"
	"salaogestor_backend/internal/repositories"
	"salaogestor_backend/pkg/utils"
)

var (
	ErrStaffProfileNotFound = errors.New("staff profile not found")
	ErrStaffValidation      = errors.New("staff profile validation error")
)

type UpsertStaffProfileRequest struct {
	Name     string  `json:"name" binding:"required"`
	PhotoURL *string `json:"photo_url" binding:"omitempty,url"`
}

// StaffService manages the display profiles shown on the schedule view.
type StaffService interface {
	GetProfile(ctx context.Context, email string) (*models.StaffProfile, error)
	UpsertProfile(ctx context.Context, email string, req UpsertStaffProfileRequest) (*models.StaffProfile, error)
	ListProfiles(ctx context.Context) ([]models.StaffProfile, error)
}

type staffService struct {
	staffRepo repositories.StaffRepository
	authRepo  repositories.AuthRepository
	db        repositories.SQLExecutor
}

// NewStaffService creates a new instance of StaffService.
func NewStaffService(staffRepo repositories.StaffRepository, authRepo repositories.AuthRepository, db repositories.SQLExecutor) StaffService {
	return &staffService{staffRepo: staffRepo, authRepo: authRepo, db: db}
}

func (s *staffService) GetProfile(ctx context.Context, email string) (*models.StaffProfile, error) {
	profile, err := s.staffRepo.GetProfileByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffProfileNotFound
		}
		return nil, fmt.Errorf("failed to get staff profile: %w", err)
	}
	return profile, nil
}

// UpsertProfile creates or replaces the profile for an existing account.
func (s *staffService) UpsertProfile(ctx context.Context, email string, req UpsertStaffProfileRequest) (*models.StaffProfile, error) {
	email = utils.NormalizeEmail(email)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrStaffValidation)
	}

	if _, err := s.authRepo.FindUserByEmail(ctx, email); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up account for profile: %w", err)
	}

	profile := &models.StaffProfile{
		Email:    email,
		Name:     name,
		PhotoURL: optionalString(req.PhotoURL),
	}
	if err := s.staffRepo.UpsertProfile(ctx, s.db, profile); err != nil {
		return nil, fmt.Errorf("failed to save staff profile: %w", err)
	}
	return profile, nil
}

func (s *staffService) ListProfiles(ctx context.Context) ([]models.StaffProfile, error) {
	profiles, err := s.staffRepo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff profiles: %w", err)
	}
	return profiles, nil
}
