package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ideascope/ideascope-backend/internal/requestdata"
	"github.com/ideascope/ideascope-backend/internal/services"
)

type RoomHandler struct {
	roomService services.RoomService
}

func NewRoomHandler(roomService services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (rh *RoomHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no authenticated user"))
		return
	}
	room, err := rh.roomService.CreateRoom(c.Request.Context(), rd.UserID, req.Name, req.Description)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":       false,
				"error":         "Missing required fields",
				"missingFields": vErr.Missing,
			})
			return
		}
		RespondError(c, http.StatusInternalServerError, "room_create_failed", err)
		return
	}
	RespondOK(c, gin.H{"room": room})
}

func (rh *RoomHandler) List(c *gin.Context) {
	rooms, err := rh.roomService.ListRooms(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "room_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"rooms": rooms})
}

func (rh *RoomHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid room id"))
		return
	}
	room, err := rh.roomService.GetRoom(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			RespondError(c, http.StatusNotFound, "room_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "room_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"room": room})
}
