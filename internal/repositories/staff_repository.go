package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salaogestor_backend/internal/models"
)

// StaffRepository defines the interface for staff display profiles.
type StaffRepository interface {
	GetProfileByEmail(ctx context.Context, email string) (*models.StaffProfile, error)
	UpsertProfile(ctx context.Context, executor SQLExecutor, profile *models.StaffProfile) error
	ListProfiles(ctx context.Context) ([]models.StaffProfile, error)
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new instance of StaffRepository.
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

// GetProfileByEmail returns ErrNotFound when the account has no profile yet.
func (r *staffRepository) GetProfileByEmail(ctx context.Context, email string) (*models.StaffProfile, error) {
	profile := &models.StaffProfile{}
	query := `SELECT email, name, photo_url, updated_at FROM staff WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&profile.Email, &profile.Name, &profile.PhotoURL, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting staff profile %s: %v", ErrDatabaseError, email, err)
	}
	return profile, nil
}

func (r *staffRepository) UpsertProfile(ctx context.Context, executor SQLExecutor, profile *models.StaffProfile) error {
	query := `INSERT INTO staff (email, name, photo_url, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (email) DO UPDATE
	          SET name = EXCLUDED.name, photo_url = EXCLUDED.photo_url, updated_at = EXCLUDED.updated_at`

	profile.Email = strings.ToLower(profile.Email)
	profile.UpdatedAt = time.Now()
	if _, err := executor.ExecContext(ctx, query, profile.Email, profile.Name, profile.PhotoURL, profile.UpdatedAt); err != nil {
		return classifyPQError(err, "upserting staff profile "+profile.Email)
	}
	return nil
}

func (r *staffRepository) ListProfiles(ctx context.Context) ([]models.StaffProfile, error) {
	profiles := []models.StaffProfile{}
	rows, err := r.db.QueryContext(ctx, `SELECT email, name, photo_url, updated_at FROM staff ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying staff profiles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.StaffProfile
		if err := rows.Scan(&p.Email, &p.Name, &p.PhotoURL, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning staff profile: %v", ErrDatabaseError, err)
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating staff profile rows: %v", ErrDatabaseError, err)
	}
	return profiles, nil
}
