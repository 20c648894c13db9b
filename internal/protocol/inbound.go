package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/inklab/sketchroom/internal/domain"
)

var validate = validator.New()

// Envelope carries only the event type; the full payload is decoded by
// the matching Decode call.
type Envelope struct {
	Type string `json:"type"`
}

func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("%w: missing type", domain.ErrInvalidPayload)
	}
	return env, nil
}

type JoinRoom struct {
	RoomID      string `json:"roomId" validate:"required"`
	Username    string `json:"username" validate:"required,max=36"`
	CursorColor string `json:"cursorColor" validate:"omitempty,hexcolor"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

type DrawingAction struct {
	RoomID string        `json:"roomId" validate:"required"`
	Action domain.Action `json:"action"`
}

type DrawingMove struct {
	RoomID      string         `json:"roomId" validate:"required"`
	Coordinates []domain.Point `json:"coordinates" validate:"required,min=1"`
}

type ClearCanvas struct {
	RoomID string `json:"roomId" validate:"required"`
}

type UndoAction struct {
	RoomID   string `json:"roomId" validate:"required"`
	ActionID string `json:"actionId" validate:"required"`
}

type CursorMove struct {
	RoomID string  `json:"roomId" validate:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type GetRoomUsers struct {
	RoomID string `json:"roomId" validate:"required"`
}

// Decode unmarshals and validates an inbound payload into dst. Any
// failure is reported as domain.ErrInvalidPayload.
func Decode(data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if da, ok := dst.(*DrawingAction); ok {
		if err := da.Action.Validate(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
	}
	return nil
}
