package handler

import (
	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/service"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
	}
}

type roomRequest struct {
	RoomNumber  string `json:"room_number"`
	RoomType    string `json:"room_type"`
	BedCapacity int    `json:"bed_capacity"`
}

// GetAllRooms retrieves every room with its occupancy
func (h *RoomHandler) GetAllRooms(c *gin.Context) {
	rooms, err := h.roomService.ListRooms(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// GetAvailableRooms retrieves rooms with at least one free bed
func (h *RoomHandler) GetAvailableRooms(c *gin.Context) {
	rooms, err := h.roomService.ListAvailable(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// GetRoom retrieves a specific room by ID
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, ok := parseID(c, "id", "room")
	if !ok {
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, room)
}

// CreateRoom creates a new room (admin only)
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}

	room := models.Room{RoomNumber: req.RoomNumber, RoomType: req.RoomType, BedCapacity: req.BedCapacity}
	if err := h.roomService.CreateRoom(c.Request.Context(), actorFromContext(c), &room); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, room)
}

// UpdateRoom updates an existing room (admin only)
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	id, ok := parseID(c, "id", "room")
	if !ok {
		return
	}

	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}

	room := models.Room{ID: id, RoomNumber: req.RoomNumber, RoomType: req.RoomType, BedCapacity: req.BedCapacity}
	updated, err := h.roomService.UpdateRoom(c.Request.Context(), actorFromContext(c), &room)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Room updated successfully",
		"room":    updated,
	})
}
