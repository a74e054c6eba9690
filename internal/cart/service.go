package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/pkg/db/models"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
)

type roomLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Room, error)
}

// Service exposes cart operations to transports.
type Service interface {
	AddRoom(ctx context.Context, userID string, input AddRoomInput) (*View, error)
	AddLine(ctx context.Context, userID string, line Line) (*View, error)
	Remove(ctx context.Context, userID, roomID string) (*View, error)
	UpdateQuantity(ctx context.Context, userID, roomID string, quantity int) (*View, error)
	Clear(ctx context.Context, userID string) (*View, error)
	View(ctx context.Context, userID string) (*View, error)
}

// AddRoomInput selects a room and, optionally, a stay.
type AddRoomInput struct {
	RoomID   uuid.UUID
	CheckIn  *time.Time
	CheckOut *time.Time
}

// View is a read-only picture of a cart and both of its totals.
type View struct {
	Lines      []Line
	TotalItems int
	TotalPrice decimal.Decimal
	StayTotal  decimal.Decimal
}

type service struct {
	carts *Manager
	rooms roomLoader
}

// NewService builds the cart service.
func NewService(carts *Manager, rooms roomLoader) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart manager required")
	}
	if rooms == nil {
		return nil, fmt.Errorf("room loader required")
	}
	return &service{carts: carts, rooms: rooms}, nil
}

func (s *service) AddRoom(ctx context.Context, userID string, input AddRoomInput) (*View, error) {
	if input.RoomID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "room_id is required")
	}
	if (input.CheckIn == nil) != (input.CheckOut == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "check_in_date and check_out_date must be provided together")
	}

	room, err := s.rooms.Get(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	snapshot := RoomSnapshot{ID: room.ID.String(), Name: room.Name, Price: room.Price}

	line := NewLine(snapshot)
	if input.CheckIn != nil {
		line, err = NewStayLine(snapshot, *input.CheckIn, *input.CheckOut)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Please select a valid date range")
		}
	}
	return s.AddLine(ctx, userID, line)
}

func (s *service) AddLine(ctx context.Context, userID string, line Line) (*View, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := store.Add(line); err != nil {
		if errors.Is(err, ErrLineIDRequired) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "room id is required")
		}
		return nil, err
	}
	return viewOf(store), nil
}

func (s *service) Remove(ctx context.Context, userID, roomID string) (*View, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return nil, err
	}
	store.Remove(strings.TrimSpace(roomID))
	return viewOf(store), nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, roomID string, quantity int) (*View, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return nil, err
	}
	store.UpdateQuantity(strings.TrimSpace(roomID), quantity)
	return viewOf(store), nil
}

func (s *service) Clear(ctx context.Context, userID string) (*View, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return nil, err
	}
	store.Clear()
	return viewOf(store), nil
}

func (s *service) View(ctx context.Context, userID string) (*View, error) {
	store, err := s.store(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(store), nil
}

func (s *service) store(ctx context.Context, userID string) (*Store, error) {
	store, err := s.carts.ForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "user context missing")
	}
	return store, nil
}

func viewOf(store *Store) *View {
	lines := store.Lines()
	view := &View{
		Lines:      lines,
		TotalPrice: decimal.Zero,
		StayTotal:  decimal.Zero,
	}
	for _, line := range lines {
		view.TotalItems += line.Quantity
		view.TotalPrice = view.TotalPrice.Add(line.QuantityTotal())
		view.StayTotal = view.StayTotal.Add(line.LineTotal())
	}
	return view
}
