package repository

import (
	"context"

	"hospital-operations-backend/internal/models"

	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// WithTx returns a copy bound to an open transaction
func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{db: tx}
}

// GetAllRooms retrieves all rooms ordered by room number
func (r *RoomRepository) GetAllRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).Order("room_number ASC").Find(&rooms).Error
	return rooms, err
}

// GetAvailableRooms retrieves rooms with at least one free bed
func (r *RoomRepository) GetAvailableRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("occupied_beds < bed_capacity").
		Order("room_number ASC").
		Find(&rooms).Error
	return rooms, err
}

// GetRoomByID retrieves a room by ID
func (r *RoomRepository) GetRoomByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err, "room")
	}
	return &room, nil
}

// CreateRoom creates a new room
func (r *RoomRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Create(room).Error, "room")
}

// UpdateRoomDetails changes the descriptive fields and capacity of a room.
// The capacity guard keeps bed_capacity >= occupied_beds; it reports false when the guard refused the write.
func (r *RoomRepository) UpdateRoomDetails(ctx context.Context, room *models.Room) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND occupied_beds <= ?", room.ID, room.BedCapacity).
		Updates(map[string]interface{}{
			"room_number":  room.RoomNumber,
			"room_type":    room.RoomType,
			"bed_capacity": room.BedCapacity,
		})
	if result.Error != nil {
		return false, translate(result.Error, "room")
	}
	return result.RowsAffected > 0, nil
}

// ReserveBed increments occupied_beds if a bed is free, in a single conditional update.
// It reports false when the room was already full or does not exist.
func (r *RoomRepository) ReserveBed(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND occupied_beds < bed_capacity", id).
		UpdateColumn("occupied_beds", gorm.Expr("occupied_beds + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseBed decrements occupied_beds, never below zero
func (r *RoomRepository) ReleaseBed(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND occupied_beds > 0", id).
		UpdateColumn("occupied_beds", gorm.Expr("occupied_beds - ?", 1)).Error
}

// BedTotals returns total capacity and total occupied beds across all rooms
func (r *RoomRepository) BedTotals(ctx context.Context) (capacity, occupied int64, err error) {
	row := r.db.WithContext(ctx).Model(&models.Room{}).
		Select("COALESCE(SUM(bed_capacity), 0), COALESCE(SUM(occupied_beds), 0)").
		Row()
	err = row.Scan(&capacity, &occupied)
	return capacity, occupied, err
}
