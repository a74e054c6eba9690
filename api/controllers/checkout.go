package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/api/middleware"
	"github.com/staybook/staybook-backend/api/responses"
	"github.com/staybook/staybook-backend/api/validators"
	checkoutsvc "github.com/staybook/staybook-backend/internal/checkout"
	pkgcheckout "github.com/staybook/staybook-backend/pkg/checkout"
	"github.com/staybook/staybook-backend/pkg/db/models"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
	"github.com/staybook/staybook-backend/pkg/logger"
)

// Checkout submits the guest's cart and creates one booking per line.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Card and billing rules are enforced by the checkout service.
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), identity, checkoutsvc.Input{
			Payment: payload.Payment,
			Billing: sanitizeBilling(payload.Billing),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

// CheckoutSummary prices the guest's cart and prefills the billing form.
func CheckoutSummary(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		identity, err := identityFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSummaryResponse(summary))
	}
}

func identityFromRequest(r *http.Request) (checkoutsvc.Identity, error) {
	userID := strings.TrimSpace(middleware.UserIDFromContext(r.Context()))
	if userID == "" {
		return checkoutsvc.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return checkoutsvc.Identity{
		UserID: userID,
		Email:  middleware.EmailFromContext(r.Context()),
	}, nil
}

const maxBillingFieldLen = 255

func sanitizeBilling(b pkgcheckout.BillingDetails) pkgcheckout.BillingDetails {
	return pkgcheckout.BillingDetails{
		Name:       validators.SanitizeString(b.Name, maxBillingFieldLen),
		Email:      validators.SanitizeString(b.Email, maxBillingFieldLen),
		Address:    validators.SanitizeString(b.Address, maxBillingFieldLen),
		City:       validators.SanitizeString(b.City, maxBillingFieldLen),
		PostalCode: validators.SanitizeString(b.PostalCode, 32),
		Country:    validators.SanitizeString(b.Country, maxBillingFieldLen),
	}
}

type checkoutRequest struct {
	Payment pkgcheckout.PaymentCard    `json:"payment" validate:"-"`
	Billing pkgcheckout.BillingDetails `json:"billing" validate:"-"`
}

type checkoutResponse struct {
	Message             string            `json:"message"`
	Redirect            string            `json:"redirect"`
	State               string            `json:"state"`
	SucceededBookingIDs []string          `json:"succeeded_booking_ids"`
	Bookings            []bookingResponse `json:"bookings"`
}

type bookingResponse struct {
	ID           uuid.UUID       `json:"id"`
	RoomID       string          `json:"room_id"`
	RoomName     string          `json:"room_name"`
	CheckInDate  *time.Time      `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time      `json:"check_out_date,omitempty"`
	Nights       *int            `json:"nights,omitempty"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	GuestName    string          `json:"guest_name"`
	GuestEmail   string          `json:"guest_email"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newCheckoutResponse(result *checkoutsvc.Result) checkoutResponse {
	resp := checkoutResponse{
		Message:             result.Message,
		Redirect:            result.Redirect,
		State:               result.State.String(),
		SucceededBookingIDs: result.SucceededBookingIDs,
		Bookings:            make([]bookingResponse, 0, len(result.Bookings)),
	}
	for _, booking := range result.Bookings {
		resp.Bookings = append(resp.Bookings, newBookingResponse(booking))
	}
	return resp
}

func newBookingResponse(booking models.Booking) bookingResponse {
	return bookingResponse{
		ID:           booking.ID,
		RoomID:       booking.RoomID,
		RoomName:     booking.RoomName,
		CheckInDate:  booking.CheckInDate,
		CheckOutDate: booking.CheckOutDate,
		Nights:       booking.Nights,
		TotalPrice:   booking.TotalPrice,
		GuestName:    booking.GuestName,
		GuestEmail:   booking.GuestEmail,
		Status:       string(booking.Status),
		CreatedAt:    booking.CreatedAt,
	}
}

type summaryResponse struct {
	Lines    []summaryLineResponse      `json:"lines"`
	Subtotal decimal.Decimal            `json:"subtotal"`
	Tax      decimal.Decimal            `json:"tax"`
	Total    decimal.Decimal            `json:"total"`
	Billing  pkgcheckout.BillingDetails `json:"billing"`
}

type summaryLineResponse struct {
	RoomID       string          `json:"room_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CheckInDate  *time.Time      `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time      `json:"check_out_date,omitempty"`
	Nights       *int            `json:"nights,omitempty"`
	DisplayPrice decimal.Decimal `json:"display_price"`
}

func newSummaryResponse(summary *checkoutsvc.Summary) summaryResponse {
	resp := summaryResponse{
		Lines:    make([]summaryLineResponse, 0, len(summary.Lines)),
		Subtotal: summary.Subtotal,
		Tax:      summary.Tax,
		Total:    summary.Total,
		Billing:  summary.Billing,
	}
	for _, line := range summary.Lines {
		resp.Lines = append(resp.Lines, summaryLineResponse{
			RoomID:       line.RoomID,
			Name:         line.Name,
			Quantity:     line.Quantity,
			CheckInDate:  line.CheckInDate,
			CheckOutDate: line.CheckOutDate,
			Nights:       line.Nights,
			DisplayPrice: line.DisplayPrice,
		})
	}
	return resp
}
