package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/inklab/sketchroom/internal/domain"
)

type roomModel struct {
	RoomID       string `gorm:"primaryKey;size:16"`
	Name         string `gorm:"size:50;not null"`
	CreatedBy    string `gorm:"size:64;index"`
	Description  string `gorm:"size:200"`
	MaxUsers     int    `gorm:"not null"`
	CurrentUsers int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"index"`
	IsPublic     bool   `gorm:"index"`
	Password     string `gorm:"size:128"`
	AllowDrawing bool
	AllowShapes  bool
	AllowText    bool
	AllowErase   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (roomModel) TableName() string { return "rooms" }

type actionModel struct {
	PK          uint   `gorm:"primaryKey"`
	RoomID      string `gorm:"size:16;index;uniqueIndex:idx_room_action"`
	ActionID    string `gorm:"size:64;uniqueIndex:idx_room_action"`
	Seq         uint64 `gorm:"index"`
	Kind        string `gorm:"size:16;not null"`
	Tool        string `gorm:"size:16;not null"`
	Coordinates string `gorm:"type:text"`
	Color       string `gorm:"size:16"`
	LineWidth   int
	Text        string `gorm:"type:text"`
	Timestamp   int64
	UserID      string `gorm:"size:64"`
	Username    string `gorm:"size:36"`
}

func (actionModel) TableName() string { return "actions" }

// Gorm is the relational Store implementation. Per-room append order
// is the caller's responsibility; rows only record it via Seq.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Migrate() error {
	return g.db.AutoMigrate(&roomModel{}, &actionModel{})
}

func (g *Gorm) GetActiveRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var m roomModel
	err := g.db.WithContext(ctx).First(&m, "room_id = ? AND is_active = ?", string(id), true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	room := toRoom(&m)
	return &room, nil
}

func (g *Gorm) ListPublicRooms(ctx context.Context) ([]domain.Room, error) {
	var ms []roomModel
	err := g.db.WithContext(ctx).
		Where("is_active = ? AND is_public = ?", true, true).
		Order("created_at DESC").Limit(50).Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	out := make([]domain.Room, 0, len(ms))
	for i := range ms {
		out = append(out, toRoom(&ms[i]))
	}
	return out, nil
}

func (g *Gorm) CreateRoom(ctx context.Context, room *domain.Room) error {
	m := fromRoom(room)
	if err := g.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (g *Gorm) UpdateRoom(ctx context.Context, room *domain.Room) error {
	m := fromRoom(room)
	res := g.db.WithContext(ctx).Model(&roomModel{}).
		Where("room_id = ? AND is_active = ?", string(room.ID), true).
		Select("name", "description", "max_users", "is_public", "password",
			"allow_drawing", "allow_shapes", "allow_text", "allow_erase").
		Updates(&m)
	if res.Error != nil {
		return fmt.Errorf("update room: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (g *Gorm) DeactivateRoom(ctx context.Context, id domain.RoomID) error {
	res := g.db.WithContext(ctx).Model(&roomModel{}).
		Where("room_id = ?", string(id)).Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate room: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (g *Gorm) IncrementUsers(ctx context.Context, id domain.RoomID) error {
	res := g.db.WithContext(ctx).Model(&roomModel{}).
		Where("room_id = ? AND current_users < max_users", string(id)).
		Update("current_users", gorm.Expr("current_users + 1"))
	if res.Error != nil {
		return fmt.Errorf("increment users: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRoomFull
	}
	return nil
}

func (g *Gorm) DecrementUsers(ctx context.Context, id domain.RoomID) error {
	res := g.db.WithContext(ctx).Model(&roomModel{}).
		Where("room_id = ? AND current_users > 0", string(id)).
		Update("current_users", gorm.Expr("current_users - 1"))
	if res.Error != nil {
		return fmt.Errorf("decrement users: %w", res.Error)
	}
	return nil
}

func (g *Gorm) GetOrCreateLog(ctx context.Context, id domain.RoomID) (*ActionLog, error) {
	var ms []actionModel
	err := g.db.WithContext(ctx).
		Where("room_id = ?", string(id)).Order("seq ASC").Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("load log: %w", err)
	}
	actions := make([]domain.Action, 0, len(ms))
	for i := range ms {
		a, err := toAction(&ms[i])
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	log := &ActionLog{RoomID: id, Actions: actions, TotalActions: len(actions)}
	if n := len(actions); n > 0 {
		log.LastModifiedBy = actions[n-1].UserID
	}
	return log, nil
}

func (g *Gorm) LastSeq(ctx context.Context, id domain.RoomID) (uint64, error) {
	var last uint64
	err := g.db.WithContext(ctx).Model(&actionModel{}).
		Where("room_id = ?", string(id)).
		Select("COALESCE(MAX(seq), 0)").Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return last, nil
}

func (g *Gorm) AppendAction(ctx context.Context, id domain.RoomID, action domain.Action) error {
	m, err := fromAction(id, &action)
	if err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

func (g *Gorm) ClearLog(ctx context.Context, id domain.RoomID, _ string) error {
	err := g.db.WithContext(ctx).
		Where("room_id = ?", string(id)).Delete(&actionModel{}).Error
	if err != nil {
		return fmt.Errorf("clear log: %w", err)
	}
	return nil
}

func (g *Gorm) RemoveAction(ctx context.Context, id domain.RoomID, actionID string) error {
	err := g.db.WithContext(ctx).
		Where("room_id = ? AND action_id = ?", string(id), actionID).
		Delete(&actionModel{}).Error
	if err != nil {
		return fmt.Errorf("remove action: %w", err)
	}
	return nil
}

func toRoom(m *roomModel) domain.Room {
	return domain.Room{
		ID:           domain.RoomID(m.RoomID),
		Name:         m.Name,
		CreatedBy:    m.CreatedBy,
		Description:  m.Description,
		MaxUsers:     m.MaxUsers,
		CurrentUsers: m.CurrentUsers,
		IsActive:     m.IsActive,
		IsPublic:     m.IsPublic,
		Password:     m.Password,
		Settings: domain.RoomSettings{
			AllowDrawing: m.AllowDrawing,
			AllowShapes:  m.AllowShapes,
			AllowText:    m.AllowText,
			AllowErase:   m.AllowErase,
		},
	}
}

func fromRoom(room *domain.Room) roomModel {
	return roomModel{
		RoomID:       string(room.ID),
		Name:         room.Name,
		CreatedBy:    room.CreatedBy,
		Description:  room.Description,
		MaxUsers:     room.MaxUsers,
		CurrentUsers: room.CurrentUsers,
		IsActive:     room.IsActive,
		IsPublic:     room.IsPublic,
		Password:     room.Password,
		AllowDrawing: room.Settings.AllowDrawing,
		AllowShapes:  room.Settings.AllowShapes,
		AllowText:    room.Settings.AllowText,
		AllowErase:   room.Settings.AllowErase,
	}
}

func toAction(m *actionModel) (domain.Action, error) {
	var coords []domain.Point
	if m.Coordinates != "" {
		if err := json.Unmarshal([]byte(m.Coordinates), &coords); err != nil {
			return domain.Action{}, fmt.Errorf("decode coordinates: %w", err)
		}
	}
	return domain.Action{
		ID:          m.ActionID,
		Seq:         m.Seq,
		Kind:        domain.ActionKind(m.Kind),
		Tool:        domain.Tool(m.Tool),
		Coordinates: coords,
		Color:       m.Color,
		LineWidth:   m.LineWidth,
		Text:        m.Text,
		Timestamp:   m.Timestamp,
		UserID:      m.UserID,
		Username:    m.Username,
	}, nil
}

func fromAction(id domain.RoomID, a *domain.Action) (actionModel, error) {
	coords, err := json.Marshal(a.Coordinates)
	if err != nil {
		return actionModel{}, fmt.Errorf("encode coordinates: %w", err)
	}
	return actionModel{
		RoomID:      string(id),
		ActionID:    a.ID,
		Seq:         a.Seq,
		Kind:        string(a.Kind),
		Tool:        string(a.Tool),
		Coordinates: string(coords),
		Color:       a.Color,
		LineWidth:   a.LineWidth,
		Text:        a.Text,
		Timestamp:   a.Timestamp,
		UserID:      a.UserID,
		Username:    a.Username,
	}, nil
}
