package protocol

import (
	"encoding/json"
	"time"

	"github.com/inklab/sketchroom/internal/domain"
)

func nowMillis() int64 { return time.Now().UnixMilli() }

type Connected struct {
	Type      string `json:"type"`
	SocketID  string `json:"socketId"`
	Timestamp int64  `json:"timestamp"`
}

func NewConnected(socketID string) Connected {
	return Connected{Type: EvtConnected, SocketID: socketID, Timestamp: nowMillis()}
}

// RoomInfo is the durable room metadata included in a join snapshot.
type RoomInfo struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	MaxUsers     int                 `json:"maxUsers"`
	CurrentUsers int                 `json:"currentUsers"`
	Settings     domain.RoomSettings `json:"settings"`
}

// RoomJoined is the full snapshot sent to the joining connection only.
type RoomJoined struct {
	Type           string            `json:"type"`
	RoomID         string            `json:"roomId"`
	Room           RoomInfo          `json:"room"`
	Users          []domain.Occupant `json:"users"`
	DrawingHistory []domain.Action   `json:"drawingHistory"`
	Timestamp      int64             `json:"timestamp"`
}

func NewRoomJoined(roomID string, info RoomInfo, users []domain.Occupant, history []domain.Action) RoomJoined {
	return RoomJoined{
		Type:           EvtRoomJoined,
		RoomID:         roomID,
		Room:           info,
		Users:          users,
		DrawingHistory: history,
		Timestamp:      nowMillis(),
	}
}

type UserJoined struct {
	Type      string          `json:"type"`
	User      domain.Occupant `json:"user"`
	Timestamp int64           `json:"timestamp"`
}

func NewUserJoined(user domain.Occupant) UserJoined {
	return UserJoined{Type: EvtUserJoined, User: user, Timestamp: nowMillis()}
}

type UserLeft struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

func NewUserLeft(userID, username string) UserLeft {
	return UserLeft{Type: EvtUserLeft, UserID: userID, Username: username, Timestamp: nowMillis()}
}

type UsersUpdate struct {
	Type  string            `json:"type"`
	Users []domain.Occupant `json:"users"`
	Count int               `json:"count"`
}

func NewUsersUpdate(users []domain.Occupant) UsersUpdate {
	return UsersUpdate{Type: EvtUsersUpdate, Users: users, Count: len(users)}
}

// DrawingUpdate carries preview and committed drawing traffic. Phase
// distinguishes start/move/end; Action is set for start and end, the
// bare Coordinates for move.
type DrawingUpdate struct {
	Type        string         `json:"type"`
	Phase       string         `json:"phase"`
	Action      *domain.Action `json:"action,omitempty"`
	Coordinates []domain.Point `json:"coordinates,omitempty"`
	SocketID    string         `json:"socketId"`
	Timestamp   int64          `json:"timestamp"`
}

func NewDrawingUpdate(phase string, socketID string, action *domain.Action) DrawingUpdate {
	return DrawingUpdate{Type: EvtDrawingUpdate, Phase: phase, Action: action, SocketID: socketID, Timestamp: nowMillis()}
}

func NewDrawingMoveUpdate(socketID string, coords []domain.Point) DrawingUpdate {
	return DrawingUpdate{Type: EvtDrawingUpdate, Phase: PhaseMove, Coordinates: coords, SocketID: socketID, Timestamp: nowMillis()}
}

type CanvasCleared struct {
	Type      string `json:"type"`
	ClearedBy string `json:"clearedBy"`
	Timestamp int64  `json:"timestamp"`
}

func NewCanvasCleared(clearedBy string) CanvasCleared {
	return CanvasCleared{Type: EvtCanvasCleared, ClearedBy: clearedBy, Timestamp: nowMillis()}
}

type ActionUndone struct {
	Type      string `json:"type"`
	ActionID  string `json:"actionId"`
	UndoneBy  string `json:"undoneBy"`
	Timestamp int64  `json:"timestamp"`
}

func NewActionUndone(actionID, undoneBy string) ActionUndone {
	return ActionUndone{Type: EvtActionUndone, ActionID: actionID, UndoneBy: undoneBy, Timestamp: nowMillis()}
}

type CursorPosition struct {
	Type        string  `json:"type"`
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	CursorColor string  `json:"cursorColor"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Timestamp   int64   `json:"timestamp"`
}

func NewCursorPosition(occ domain.Occupant, x, y float64) CursorPosition {
	return CursorPosition{
		Type:        EvtCursorPosition,
		UserID:      occ.SocketID,
		Username:    occ.Username,
		CursorColor: occ.CursorColor,
		X:           x,
		Y:           y,
		Timestamp:   nowMillis(),
	}
}

type RoomUsers struct {
	Type      string            `json:"type"`
	RoomID    string            `json:"roomId"`
	Users     []domain.Occupant `json:"users"`
	Count     int               `json:"count"`
	Timestamp int64             `json:"timestamp"`
}

func NewRoomUsers(roomID string, users []domain.Occupant) RoomUsers {
	return RoomUsers{Type: EvtRoomUsers, RoomID: roomID, Users: users, Count: len(users), Timestamp: nowMillis()}
}

type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func NewPong() Pong {
	return Pong{Type: EvtPong, Timestamp: nowMillis()}
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

func NewError(message, cause string) ErrorEvent {
	return ErrorEvent{Type: EvtError, Message: message, Cause: cause}
}

// Encode marshals an outbound event for the wire.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
