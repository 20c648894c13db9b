// Package protocol defines the closed set of events exchanged over a
// signal connection. Every message is a JSON object whose "type" field
// names the event; inbound payloads are validated here before any
// handler sees them.
package protocol

// Inbound event types (client to server).
const (
	EvtJoinRoom     = "join-room"
	EvtLeaveRoom    = "leave-room"
	EvtDrawingStart = "drawing-start"
	EvtDrawingMove  = "drawing-move"
	EvtDrawingEnd   = "drawing-end"
	EvtClearCanvas  = "clear-canvas"
	EvtUndoAction   = "undo-action"
	EvtCursorMove   = "cursor-move"
	EvtGetRoomUsers = "get-room-users"
	EvtPing         = "ping"
)

// Outbound event types (server to client).
const (
	EvtConnected      = "connected"
	EvtRoomJoined     = "room-joined"
	EvtUserJoined     = "user-joined"
	EvtUserLeft       = "user-left"
	EvtUsersUpdate    = "users-update"
	EvtDrawingUpdate  = "drawing-update"
	EvtCanvasCleared  = "canvas-cleared"
	EvtActionUndone   = "action-undone"
	EvtCursorPosition = "cursor-position"
	EvtRoomUsers      = "room-users"
	EvtPong           = "pong"
	EvtError          = "error"
)

// Drawing update phases carried by EvtDrawingUpdate.
const (
	PhaseStart = "start"
	PhaseMove  = "move"
	PhaseEnd   = "end"
)
