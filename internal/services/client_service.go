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

// --- Custom Service Errors for Client ---
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrEmailExists      = errors.New("a client with this email already exists")
	ErrClientValidation = errors.New("client data validation error")
	ErrClientInUse      = errors.New("client cannot be deleted as they are referenced by appointments")
)

// --- Client DTOs ---
type CreateClientRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	GetClientByID(ctx context.Context, clientID int64) (*models.Client, error)
	GetClients(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	UpdateClient(ctx context.Context, clientID int64, req UpdateClientRequest) (*models.Client, error)
	DeleteClient(ctx context.Context, clientID int64) error
}

// --- clientService Implementation ---
type clientService struct {
	clientRepo repositories.ClientRepository
	db         repositories.SQLExecutor
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo repositories.ClientRepository, db repositories.SQLExecutor) ClientService {
	return &clientService{
		clientRepo: repo,
		db:         db,
	}
}

// normalizeEmail trims and lower-cases an optional email, returning nil for blank input.
func normalizeEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	em := utils.NormalizeEmail(*email)
	if em == "" {
		return nil, nil
	}
	if !utils.IsValidEmail(em) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrClientValidation)
	}
	return &em, nil
}

func mapClientWriteError(err error, action string) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateKey):
		if repositories.ConstraintName(err) == "clients_email_key" {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to %s client due to duplicate data: %w", action, err)
	case errors.Is(err, repositories.ErrForeignKey):
		return ErrClientInUse
	case errors.Is(err, repositories.ErrNotFound):
		return ErrClientNotFound
	}
	return fmt.Errorf("failed to %s client in repository: %w", action, err)
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrClientValidation)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		Name:    name,
		Email:   email,
		Phone:   optionalString(req.Phone),
		Address: optionalString(req.Address),
	}

	id, err := s.clientRepo.CreateClient(ctx, s.db, client)
	if err != nil {
		return nil, mapClientWriteError(err, "create")
	}
	return s.GetClientByID(ctx, id)
}

func (s *clientService) GetClientByID(ctx context.Context, clientID int64) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client by ID: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClients(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	clients, totalCount, err := s.clientRepo.GetClients(ctx, page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get clients: %w", err)
	}
	return clients, totalCount, nil
}

func (s *clientService) UpdateClient(ctx context.Context, clientID int64, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty if provided", ErrClientValidation)
		}
		client.Name = name
	}
	if req.Email != nil {
		email, err := normalizeEmail(req.Email)
		if err != nil {
			return nil, err
		}
		client.Email = email
	}
	if req.Phone != nil {
		client.Phone = optionalString(req.Phone)
	}
	if req.Address != nil {
		client.Address = optionalString(req.Address)
	}

	if err := s.clientRepo.UpdateClient(ctx, s.db, client); err != nil {
		return nil, mapClientWriteError(err, "update")
	}
	return s.GetClientByID(ctx, clientID)
}

func (s *clientService) DeleteClient(ctx context.Context, clientID int64) error {
	if err := s.clientRepo.DeleteClient(ctx, s.db, clientID); err != nil {
		return mapClientWriteError(err, "delete")
	}
	return nil
}

func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NewNullString(*s)
}
