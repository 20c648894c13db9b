package domain

import "errors"

const (
	MinLineWidth = 1
	MaxLineWidth = 50
)

var (
	ErrActionIDEmpty = errors.New("action id empty")
	ErrBadActionKind = errors.New("unknown action kind")
	ErrBadTool       = errors.New("unknown tool")
	ErrBadLineWidth  = errors.New("line width out of range")
	ErrNoCoordinates = errors.New("action has no coordinates")
)

type ActionKind string

const (
	KindDraw  ActionKind = "draw"
	KindShape ActionKind = "shape"
	KindText  ActionKind = "text"
	KindErase ActionKind = "erase"
	KindClear ActionKind = "clear"
)

func (k ActionKind) Valid() bool {
	switch k {
	case KindDraw, KindShape, KindText, KindErase, KindClear:
		return true
	}
	return false
}

type Tool string

const (
	ToolPen       Tool = "pen"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolLine      Tool = "line"
	ToolText      Tool = "text"
	ToolEraser    Tool = "eraser"
)

func (t Tool) Valid() bool {
	switch t {
	case ToolPen, ToolRectangle, ToolCircle, ToolLine, ToolText, ToolEraser:
		return true
	}
	return false
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Action is one durable entry in a room's log. ID is chosen by the
// client; Seq is assigned server-side and is strictly increasing per
// room in durable commit order.
type Action struct {
	ID          string     `json:"id"`
	Seq         uint64     `json:"seq"`
	Kind        ActionKind `json:"type"`
	Tool        Tool       `json:"tool"`
	Coordinates []Point    `json:"coordinates"`
	Color       string     `json:"color"`
	LineWidth   int        `json:"lineWidth"`
	Text        string     `json:"text,omitempty"`
	Timestamp   int64      `json:"timestamp"`
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
}

// Validate checks the client-controlled fields. Seq, UserID and
// Username are filled server-side and not checked here.
func (a *Action) Validate() error {
	if a.ID == "" {
		return ErrActionIDEmpty
	}
	if !a.Kind.Valid() {
		return ErrBadActionKind
	}
	if !a.Tool.Valid() {
		return ErrBadTool
	}
	if a.LineWidth < MinLineWidth || a.LineWidth > MaxLineWidth {
		return ErrBadLineWidth
	}
	if len(a.Coordinates) == 0 && a.Kind != KindClear && a.Kind != KindText {
		return ErrNoCoordinates
	}
	return nil
}
