package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staybook/staybook-backend/api/middleware"
	"github.com/staybook/staybook-backend/api/responses"
	"github.com/staybook/staybook-backend/api/validators"
	"github.com/staybook/staybook-backend/internal/bookings"
	"github.com/staybook/staybook-backend/pkg/db/models"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
	"github.com/staybook/staybook-backend/pkg/logger"
	"github.com/staybook/staybook-backend/pkg/pagination"
)

// BookingReader is the read surface of the bookings repository.
type BookingReader interface {
	ListByUser(ctx context.Context, userID string, params pagination.Params) (*bookings.List, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.Booking, error)
}

type bookingListResponse struct {
	Bookings   []bookingResponse `json:"bookings"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// MyBookings lists the signed-in guest's bookings, newest first.
func MyBookings(repo BookingReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking repository unavailable"))
			return
		}

		userID := strings.TrimSpace(middleware.UserIDFromContext(r.Context()))
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.ListByUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := bookingListResponse{
			Bookings:   make([]bookingResponse, 0, len(list.Bookings)),
			NextCursor: list.NextCursor,
		}
		for _, booking := range list.Bookings {
			resp.Bookings = append(resp.Bookings, newBookingResponse(booking))
		}
		responses.WriteSuccess(w, resp)
	}
}

// MyBookingDetail returns one of the signed-in guest's bookings.
func MyBookingDetail(repo BookingReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking repository unavailable"))
			return
		}

		userID := strings.TrimSpace(middleware.UserIDFromContext(r.Context()))
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		bookingID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "bookingId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}

		booking, err := repo.Get(r.Context(), userID, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(*booking))
	}
}
