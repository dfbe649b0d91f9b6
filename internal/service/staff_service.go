package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"
)

type StaffInput struct {
	Username string      `json:"username" binding:"required"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role" binding:"required"`
}

type StaffService struct {
	staffRepo *repository.StaffRepository
	auditRepo *repository.AuditRepository
}

func NewStaffService(staffRepo *repository.StaffRepository, auditRepo *repository.AuditRepository) *StaffService {
	return &StaffService{
		staffRepo: staffRepo,
		auditRepo: auditRepo,
	}
}

// Create registers a staff member (admin only)
func (s *StaffService) Create(ctx context.Context, actor Actor, in StaffInput) (*models.Staff, error) {
	if err := actor.require("create staff", models.RoleAdmin); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, validationf("unknown role %q", in.Role)
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, validationf("username is required")
	}

	staff := &models.Staff{Username: username, FullName: in.FullName, Role: in.Role}
	if err := s.staffRepo.Create(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationf("username %s already taken", username)
		}
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "create", "staff", staff.ID, "Created staff: "+username)
	return staff, nil
}

// Get retrieves a staff member by ID
func (s *StaffService) Get(ctx context.Context, id uint) (*models.Staff, error) {
	return s.staffRepo.GetByID(ctx, id)
}

// List retrieves active staff, optionally of one role
func (s *StaffService) List(ctx context.Context, role models.Role) ([]models.Staff, error) {
	return s.staffRepo.List(ctx, role)
}
