package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/api/responses"
	"github.com/staybook/staybook-backend/api/validators"
	"github.com/staybook/staybook-backend/pkg/db/models"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
	"github.com/staybook/staybook-backend/pkg/logger"
	"github.com/staybook/staybook-backend/pkg/pagination"
)

// RoomReader is the read surface the public room endpoints need.
type RoomReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Room, error)
	List(ctx context.Context, limit int) ([]models.Room, error)
}

// PublicRoomsList lists bookable rooms.
func PublicRoomsList(repo RoomReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "room repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rooms, err := repo.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]roomResponse, 0, len(rooms))
		for _, room := range rooms {
			out = append(out, newRoomResponse(room))
		}
		responses.WriteSuccess(w, out)
	}
}

// PublicRoomDetail returns one room.
func PublicRoomDetail(repo RoomReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "room repository unavailable"))
			return
		}

		rawRoomID := strings.TrimSpace(chi.URLParam(r, "roomId"))
		roomID, err := uuid.Parse(rawRoomID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid room id"))
			return
		}

		room, err := repo.Get(r.Context(), roomID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newRoomResponse(*room))
	}
}

type roomResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Capacity    int             `json:"capacity"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newRoomResponse(room models.Room) roomResponse {
	return roomResponse{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		Price:       room.Price,
		Capacity:    room.Capacity,
		ImageURL:    room.ImageURL,
		CreatedAt:   room.CreatedAt,
	}
}
