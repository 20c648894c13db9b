package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/inklab/sketchroom/internal/app"
	"github.com/inklab/sketchroom/internal/app/orch"
	"github.com/inklab/sketchroom/internal/domain"
	"github.com/inklab/sketchroom/internal/store"
)

// roomHandlers is the CRUD surface next to the realtime engine. Every
// mutation of a room that has live occupants goes through the same
// sequencer the WS path uses.
type roomHandlers struct {
	orch  *orch.Orchestrator
	store store.Store
}

type roomView struct {
	domain.Room
	LiveUsers int `json:"liveUsers"`
}

func (h *roomHandlers) listRooms(c *gin.Context) {
	rooms, err := h.store.ListPublicRooms(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to list rooms")
		return
	}
	data := lo.Map(rooms, func(r domain.Room, _ int) roomView {
		return roomView{Room: r, LiveUsers: len(h.orch.OccupantsOf(r.ID))}
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

type createRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	CreatedBy   string `json:"createdBy" binding:"required"`
	Description string `json:"description"`
	MaxUsers    int    `json:"maxUsers"`
	IsPublic    *bool  `json:"isPublic"`
	Password    string `json:"password"`
}

func (h *roomHandlers) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	room, err := domain.NewRoom(req.Name, req.CreatedBy, req.Description, req.MaxUsers, isPublic, req.Password)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.CreateRoom(c.Request.Context(), room); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		fail(c, http.StatusInternalServerError, "Failed to create room")
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(room.ID)).Str("by", room.CreatedBy).Msg("room created")
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": room})
}

func (h *roomHandlers) getRoom(c *gin.Context) {
	id := domain.RoomID(c.Param("roomId"))
	room, err := h.store.GetActiveRoom(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			fail(c, http.StatusNotFound, "Room not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to fetch room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": room})
}

type updateRoomRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	MaxUsers    *int                 `json:"maxUsers"`
	IsPublic    *bool                `json:"isPublic"`
	Password    *string              `json:"password"`
	Settings    *domain.RoomSettings `json:"settings"`
}

func (h *roomHandlers) updateRoom(c *gin.Context) {
	id := domain.RoomID(c.Param("roomId"))
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	room, err := h.store.GetActiveRoom(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			fail(c, http.StatusNotFound, "Room not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to fetch room")
		return
	}
	if req.Name != nil {
		if len(*req.Name) < domain.MinRoomNameLen || len(*req.Name) > domain.MaxRoomNameLen {
			fail(c, http.StatusBadRequest, domain.ErrRoomNameLength.Error())
			return
		}
		room.Name = *req.Name
	}
	if req.Description != nil {
		if len(*req.Description) > domain.MaxDescLen {
			fail(c, http.StatusBadRequest, domain.ErrDescTooLong.Error())
			return
		}
		room.Description = *req.Description
	}
	if req.MaxUsers != nil {
		if *req.MaxUsers < domain.MinRoomUsers || *req.MaxUsers > domain.MaxRoomUsers {
			fail(c, http.StatusBadRequest, domain.ErrBadCapacity.Error())
			return
		}
		room.MaxUsers = *req.MaxUsers
	}
	if req.IsPublic != nil {
		room.IsPublic = *req.IsPublic
	}
	if req.Password != nil {
		room.Password = *req.Password
	}
	if req.Settings != nil {
		room.Settings = *req.Settings
	}

	err = h.orch.Seq.Do(c.Request.Context(), id, func(*app.Unit) error {
		return h.store.UpdateRoom(c.Request.Context(), room)
	})
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(id)).Msg("update room")
		fail(c, http.StatusInternalServerError, "Failed to update room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": room})
}

func (h *roomHandlers) deleteRoom(c *gin.Context) {
	id := domain.RoomID(c.Param("roomId"))
	err := h.orch.Seq.Do(c.Request.Context(), id, func(*app.Unit) error {
		return h.store.DeactivateRoom(c.Request.Context(), id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			fail(c, http.StatusNotFound, "Room not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to delete room")
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(id)).Msg("room deactivated")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *roomHandlers) getDrawing(c *gin.Context) {
	id := domain.RoomID(c.Param("roomId"))
	if _, err := h.store.GetActiveRoom(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			fail(c, http.StatusNotFound, "Room not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to fetch room")
		return
	}
	history, err := h.store.GetOrCreateLog(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to fetch drawing history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": history})
}

type clearDrawingRequest struct {
	UserID string `json:"userId"`
}

func (h *roomHandlers) clearDrawing(c *gin.Context) {
	id := domain.RoomID(c.Param("roomId"))
	var req clearDrawingRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.orch.ClearLog(c.Request.Context(), id, req.UserID); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to clear drawing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// activeSessions lists rooms that currently have connected occupants.
func (h *roomHandlers) activeSessions(c *gin.Context) {
	sessions := h.orch.Rooms.List()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(sessions), "data": sessions})
}

func (h *roomHandlers) getRoomUsers(c *gin.Context) {
	id := domain.RoomID(c.Param("roomId"))
	users := h.orch.OccupantsOf(id)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(users), "data": users})
}

func fail(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": false, "error": msg})
}
