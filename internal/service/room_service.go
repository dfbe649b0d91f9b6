package service

import (
	"context"
	"errors"
	"fmt"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"go.uber.org/zap"
)

// RoomService is the bed capacity ledger consulted by the admission workflow.
type RoomService struct {
	roomRepo  *repository.RoomRepository
	auditRepo *repository.AuditRepository
	log       *zap.Logger
}

func NewRoomService(roomRepo *repository.RoomRepository, auditRepo *repository.AuditRepository, log *zap.Logger) *RoomService {
	return &RoomService{
		roomRepo:  roomRepo,
		auditRepo: auditRepo,
		log:       log,
	}
}

// ReserveBed takes one bed in the room, or fails with ErrRoomFull.
func (s *RoomService) ReserveBed(ctx context.Context, roomID uint) error {
	return reserveBed(ctx, s.roomRepo, roomID)
}

// ReleaseBed frees one bed in the room.
func (s *RoomService) ReleaseBed(ctx context.Context, roomID uint) error {
	return s.roomRepo.ReleaseBed(ctx, roomID)
}

// ListAvailable returns rooms with at least one free bed
func (s *RoomService) ListAvailable(ctx context.Context) ([]models.Room, error) {
	return s.roomRepo.GetAvailableRooms(ctx)
}

// ListRooms returns every room
func (s *RoomService) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.roomRepo.GetAllRooms(ctx)
}

// GetRoom returns one room
func (s *RoomService) GetRoom(ctx context.Context, id uint) (*models.Room, error) {
	return s.roomRepo.GetRoomByID(ctx, id)
}

// CreateRoom registers a new room (admin only)
func (s *RoomService) CreateRoom(ctx context.Context, actor Actor, room *models.Room) error {
	if err := actor.require("create room", models.RoleAdmin); err != nil {
		return err
	}
	if room.RoomNumber == "" {
		return validationf("room_number is required")
	}
	if room.BedCapacity < 1 {
		return validationf("bed_capacity must be at least 1")
	}
	if room.RoomType == "" {
		room.RoomType = "General"
	}
	room.OccupiedBeds = 0

	if err := s.roomRepo.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return validationf("room %s already exists", room.RoomNumber)
		}
		return fmt.Errorf("failed to create room: %w", err)
	}

	details := fmt.Sprintf("Created room %s (%s, %d beds)", room.RoomNumber, room.RoomType, room.BedCapacity)
	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "room_create", "room", room.ID, details)
	s.log.Info("room created", zap.Uint("room_id", room.ID), zap.String("room_number", room.RoomNumber))
	return nil
}

// UpdateRoom changes a room's number, type or capacity (admin only).
// Capacity can never drop below the beds currently occupied.
func (s *RoomService) UpdateRoom(ctx context.Context, actor Actor, room *models.Room) (*models.Room, error) {
	if err := actor.require("update room", models.RoleAdmin); err != nil {
		return nil, err
	}
	if room.BedCapacity < 1 {
		return nil, validationf("bed_capacity must be at least 1")
	}

	existing, err := s.roomRepo.GetRoomByID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if room.RoomNumber == "" {
		room.RoomNumber = existing.RoomNumber
	}
	if room.RoomType == "" {
		room.RoomType = existing.RoomType
	}

	updated, err := s.roomRepo.UpdateRoomDetails(ctx, room)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationf("room %s already exists", room.RoomNumber)
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	current, err := s.roomRepo.GetRoomByID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	// MySQL reports zero affected rows for a no-op update, so re-check the guard instead of trusting the count.
	if !updated && current.OccupiedBeds > room.BedCapacity {
		return nil, validationf("bed_capacity %d is below the %d occupied beds", room.BedCapacity, current.OccupiedBeds)
	}

	details := fmt.Sprintf("Updated room %s (ID: %d, %d beds)", current.RoomNumber, current.ID, current.BedCapacity)
	_ = s.auditRepo.CreateAuditLog(ctx, actor.IDPtr(), "room_update", "room", current.ID, details)
	return current, nil
}

// reserveBed runs the compare-and-increment against whichever connection repo is bound to.
func reserveBed(ctx context.Context, repo *repository.RoomRepository, roomID uint) error {
	reserved, err := repo.ReserveBed(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to reserve bed: %w", err)
	}
	if reserved {
		return nil
	}
	if _, err := repo.GetRoomByID(ctx, roomID); err != nil {
		return err
	}
	return fmt.Errorf("%w: room %d", ErrRoomFull, roomID)
}
