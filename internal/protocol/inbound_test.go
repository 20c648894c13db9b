package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inklab/sketchroom/internal/domain"
)

func TestParseEnvelope(t *testing.T) {
	req := require.New(t)

	env, err := ParseEnvelope([]byte(`{"type":"join-room","roomId":"abc123"}`))
	req.NoError(err)
	req.Equal(EvtJoinRoom, env.Type)

	_, err = ParseEnvelope([]byte(`{"roomId":"abc123"}`))
	req.ErrorIs(err, domain.ErrInvalidPayload)

	_, err = ParseEnvelope([]byte(`{not json`))
	req.ErrorIs(err, domain.ErrInvalidPayload)
}

func TestDecode_JoinRoom(t *testing.T) {
	req := require.New(t)

	var join JoinRoom
	req.NoError(Decode([]byte(`{"roomId":"abc123","username":"alice","cursorColor":"#FF8800"}`), &join))
	req.Equal("abc123", join.RoomID)
	req.Equal("alice", join.Username)
	req.Equal("#FF8800", join.CursorColor)

	// Color is optional.
	join = JoinRoom{}
	req.NoError(Decode([]byte(`{"roomId":"abc123","username":"alice"}`), &join))
	req.Empty(join.CursorColor)

	cases := map[string]string{
		"missing room":  `{"username":"alice"}`,
		"missing name":  `{"roomId":"abc123"}`,
		"bad color":     `{"roomId":"abc123","username":"alice","cursorColor":"reddish"}`,
		"name too long": `{"roomId":"abc123","username":"0123456789012345678901234567890123456789"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var dst JoinRoom
			require.ErrorIs(t, Decode([]byte(payload), &dst), domain.ErrInvalidPayload)
		})
	}
}

func TestDecode_DrawingActionValidatesAction(t *testing.T) {
	req := require.New(t)

	valid := `{
		"roomId": "abc123",
		"action": {
			"id": "a1",
			"type": "draw",
			"tool": "pen",
			"coordinates": [{"x": 0, "y": 0}, {"x": 10, "y": 10}],
			"color": "#000000",
			"lineWidth": 2
		}
	}`
	var da DrawingAction
	req.NoError(Decode([]byte(valid), &da))
	req.Equal("a1", da.Action.ID)
	req.Equal(domain.KindDraw, da.Action.Kind)
	req.Len(da.Action.Coordinates, 2)

	cases := map[string]string{
		"unknown tool": `{"roomId":"r","action":{"id":"a1","type":"draw","tool":"crayon","coordinates":[{"x":1,"y":1}],"lineWidth":2}}`,
		"unknown kind": `{"roomId":"r","action":{"id":"a1","type":"scribble","tool":"pen","coordinates":[{"x":1,"y":1}],"lineWidth":2}}`,
		"no id":        `{"roomId":"r","action":{"type":"draw","tool":"pen","coordinates":[{"x":1,"y":1}],"lineWidth":2}}`,
		"no points":    `{"roomId":"r","action":{"id":"a1","type":"draw","tool":"pen","coordinates":[],"lineWidth":2}}`,
		"width zero":   `{"roomId":"r","action":{"id":"a1","type":"draw","tool":"pen","coordinates":[{"x":1,"y":1}],"lineWidth":0}}`,
		"width huge":   `{"roomId":"r","action":{"id":"a1","type":"draw","tool":"pen","coordinates":[{"x":1,"y":1}],"lineWidth":51}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var dst DrawingAction
			require.ErrorIs(t, Decode([]byte(payload), &dst), domain.ErrInvalidPayload)
		})
	}

	// Text actions carry no stroke, so empty coordinates are fine.
	var text DrawingAction
	textPayload := `{"roomId":"r","action":{"id":"t1","type":"text","tool":"text","text":"hi","lineWidth":2}}`
	req.NoError(Decode([]byte(textPayload), &text))
	req.Equal("hi", text.Action.Text)
}

func TestDecode_DrawingMove(t *testing.T) {
	req := require.New(t)

	var mv DrawingMove
	req.NoError(Decode([]byte(`{"roomId":"r","coordinates":[{"x":1,"y":2}]}`), &mv))
	req.Len(mv.Coordinates, 1)

	mv = DrawingMove{}
	req.ErrorIs(Decode([]byte(`{"roomId":"r","coordinates":[]}`), &mv), domain.ErrInvalidPayload)
}

func TestDecode_UndoAction(t *testing.T) {
	req := require.New(t)

	var undo UndoAction
	req.NoError(Decode([]byte(`{"roomId":"r","actionId":"a1"}`), &undo))
	req.Equal("a1", undo.ActionID)

	undo = UndoAction{}
	req.ErrorIs(Decode([]byte(`{"roomId":"r"}`), &undo), domain.ErrInvalidPayload)
}
