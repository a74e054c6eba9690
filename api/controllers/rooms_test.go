package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/pkg/db/models"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
	"github.com/staybook/staybook-backend/pkg/logger"
)

type stubRoomReader struct {
	rooms []models.Room
	err   error
	limit int
}

func (s *stubRoomReader) Get(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			return &s.rooms[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
}

func (s *stubRoomReader) List(ctx context.Context, limit int) ([]models.Room, error) {
	s.limit = limit
	return s.rooms, s.err
}

func roomRouter(repo RoomReader) http.Handler {
	r := chi.NewRouter()
	r.Get("/rooms", PublicRoomsList(repo, logger.Nop()))
	r.Get("/rooms/{roomId}", PublicRoomDetail(repo, logger.Nop()))
	return r
}

func TestPublicRoomsList(t *testing.T) {
	repo := &stubRoomReader{rooms: []models.Room{{ID: uuid.New(), Name: "Garden Room", Price: decimal.NewFromInt(80), Capacity: 2}}}
	rec := httptest.NewRecorder()
	roomRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms?limit=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if repo.limit != 10 {
		t.Fatalf("expected limit 10 got %d", repo.limit)
	}
	var envelope struct {
		Data []roomResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Garden Room" {
		t.Fatalf("unexpected rooms %+v", envelope.Data)
	}
}

func TestPublicRoomDetail(t *testing.T) {
	id := uuid.New()
	repo := &stubRoomReader{rooms: []models.Room{{ID: id, Name: "Loft", Price: decimal.NewFromInt(150)}}}

	rec := httptest.NewRecorder()
	roomRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/"+id.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	roomRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	roomRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
