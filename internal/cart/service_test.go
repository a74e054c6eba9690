package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/pkg/db/models"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
)

type stubRooms struct {
	rooms map[uuid.UUID]*models.Room
}

func (s *stubRooms) Get(_ context.Context, id uuid.UUID) (*models.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
	}
	return room, nil
}

func newTestService(t *testing.T, rooms ...*models.Room) Service {
	t.Helper()
	loader := &stubRooms{rooms: map[uuid.UUID]*models.Room{}}
	for _, room := range rooms {
		loader.rooms[room.ID] = room
	}
	svc, err := NewService(newTestManager(t, newMemorySnapshots()), loader)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceAddRoomWithStay(t *testing.T) {
	room := &models.Room{ID: uuid.New(), Name: "Deluxe", Price: decimal.NewFromInt(100)}
	svc := newTestService(t, room)
	in := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 2)

	view, err := svc.AddRoom(context.Background(), "u1", AddRoomInput{RoomID: room.ID, CheckIn: &in, CheckOut: &out})
	if err != nil {
		t.Fatalf("add room: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].ID != room.ID.String() || view.Lines[0].Name != "Deluxe" {
		t.Fatalf("unexpected lines: %+v", view.Lines)
	}
	if !view.StayTotal.Equal(decimal.NewFromInt(200)) || !view.TotalPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected totals: price=%s stay=%s", view.TotalPrice, view.StayTotal)
	}
}

func TestServiceAddRoomValidation(t *testing.T) {
	room := &models.Room{ID: uuid.New(), Name: "Twin", Price: decimal.NewFromInt(50)}
	svc := newTestService(t, room)
	ctx := context.Background()
	in := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	before := in.AddDate(0, 0, -1)

	cases := []struct {
		name  string
		input AddRoomInput
		code  pkgerrors.Code
	}{
		{name: "missing room", input: AddRoomInput{}, code: pkgerrors.CodeValidation},
		{name: "half a stay", input: AddRoomInput{RoomID: room.ID, CheckIn: &in}, code: pkgerrors.CodeValidation},
		{name: "reversed stay", input: AddRoomInput{RoomID: room.ID, CheckIn: &in, CheckOut: &before}, code: pkgerrors.CodeValidation},
		{name: "unknown room", input: AddRoomInput{RoomID: uuid.New()}, code: pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		_, err := svc.AddRoom(ctx, "u1", tc.input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestServiceQuantityFlow(t *testing.T) {
	room := &models.Room{ID: uuid.New(), Name: "Twin", Price: decimal.NewFromInt(50)}
	svc := newTestService(t, room)
	ctx := context.Background()

	if _, err := svc.AddRoom(ctx, "u1", AddRoomInput{RoomID: room.ID}); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, err := svc.AddRoom(ctx, "u1", AddRoomInput{RoomID: room.ID})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if view.TotalItems != 2 || !view.TotalPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected view: %+v", view)
	}

	view, err = svc.UpdateQuantity(ctx, "u1", room.ID.String(), 5)
	if err != nil || view.TotalItems != 5 {
		t.Fatalf("update quantity: %+v %v", view, err)
	}

	view, err = svc.Remove(ctx, "u1", room.ID.String())
	if err != nil || len(view.Lines) != 0 {
		t.Fatalf("remove: %+v %v", view, err)
	}

	_, _ = svc.AddLine(ctx, "u1", Line{ID: "r9", Price: decimal.NewFromInt(1)})
	view, err = svc.Clear(ctx, "u1")
	if err != nil || len(view.Lines) != 0 || !view.TotalPrice.IsZero() {
		t.Fatalf("clear: %+v %v", view, err)
	}
}

func TestServiceRequiresUser(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.View(context.Background(), "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestNewServiceValidatesDeps(t *testing.T) {
	if _, err := NewService(nil, &stubRooms{}); err == nil {
		t.Fatal("expected error without manager")
	}
	if _, err := NewService(newTestManager(t, newMemorySnapshots()), nil); err == nil {
		t.Fatal("expected error without room loader")
	}
}
