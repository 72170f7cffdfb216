package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/repos"
	"github.com/ideascope/ideascope-backend/internal/types"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomService interface {
	CreateRoom(ctx context.Context, userID uuid.UUID, name, description string) (*types.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*types.Room, error)
	ListRooms(ctx context.Context) ([]*types.Room, error)
}

type roomService struct {
	db       *gorm.DB
	log      *logger.Logger
	roomRepo repos.RoomRepo
}

func NewRoomService(db *gorm.DB, log *logger.Logger, roomRepo repos.RoomRepo) RoomService {
	return &roomService{
		db:       db,
		log:      log.With("service", "RoomService"),
		roomRepo: roomRepo,
	}
}

func (rs *roomService) CreateRoom(ctx context.Context, userID uuid.UUID, name, description string) (*types.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Missing: []string{"name"}}
	}
	room := &types.Room{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	created, err := rs.roomRepo.Create(ctx, nil, []*types.Room{room})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return created[0], nil
}

func (rs *roomService) GetRoom(ctx context.Context, id uuid.UUID) (*types.Room, error) {
	rooms, err := rs.roomRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if len(rooms) == 0 {
		return nil, ErrRoomNotFound
	}
	return rooms[0], nil
}

func (rs *roomService) ListRooms(ctx context.Context) ([]*types.Room, error) {
	rooms, err := rs.roomRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}
