package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/api/middleware"
	checkoutsvc "github.com/staybook/staybook-backend/internal/checkout"
	pkgcheckout "github.com/staybook/staybook-backend/pkg/checkout"
	"github.com/staybook/staybook-backend/pkg/db/models"
	"github.com/staybook/staybook-backend/pkg/enums"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
	"github.com/staybook/staybook-backend/pkg/logger"
)

type stubCheckoutService struct {
	result  *checkoutsvc.Result
	summary *checkoutsvc.Summary
	err     error

	identity checkoutsvc.Identity
	input    checkoutsvc.Input
}

func (s *stubCheckoutService) Execute(ctx context.Context, identity checkoutsvc.Identity, input checkoutsvc.Input) (*checkoutsvc.Result, error) {
	s.identity = identity
	s.input = input
	return s.result, s.err
}

func (s *stubCheckoutService) Summary(ctx context.Context, identity checkoutsvc.Identity) (*checkoutsvc.Summary, error) {
	s.identity = identity
	return s.summary, s.err
}

const checkoutBody = `{
	"payment": {"name": "Ada Guest", "number": "4242 4242 4242 4242", "expiry": "12/30", "cvc": "123"},
	"billing": {"name": "  Ada Guest  ", "email": "ada@example.com", "postal_code": "10001"}
}`

func withIdentity(req *http.Request, userID, email string) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID)
	ctx = middleware.WithEmail(ctx, email)
	return req.WithContext(ctx)
}

func TestCheckoutCreatesBookings(t *testing.T) {
	booking := models.Booking{
		ID:         uuid.New(),
		RoomID:     "room-1",
		RoomName:   "Harbor Suite",
		UserID:     "user-1",
		TotalPrice: decimal.NewFromInt(360),
		GuestName:  "Ada Guest",
		GuestEmail: "ada@example.com",
		Status:     enums.BookingStatusConfirmed,
	}
	svc := &stubCheckoutService{result: &checkoutsvc.Result{
		Bookings:            []models.Booking{booking},
		SucceededBookingIDs: []string{booking.ID.String()},
		Message:             "Successfully created 1 bookings!",
		Redirect:            "/bookings",
		State:               enums.CheckoutStateConfirmed,
	}}

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)), "user-1", "ada@example.com")
	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.identity.UserID != "user-1" || svc.identity.Email != "ada@example.com" {
		t.Fatalf("unexpected identity %+v", svc.identity)
	}
	if svc.input.Billing.PostalCode != "10001" || svc.input.Payment.CVC != "123" {
		t.Fatalf("payload not forwarded: %+v", svc.input)
	}
	if svc.input.Billing.Name != "Ada Guest" {
		t.Fatalf("expected trimmed billing name got %q", svc.input.Billing.Name)
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Redirect != "/bookings" || envelope.Data.State != "confirmed" {
		t.Fatalf("unexpected response %+v", envelope.Data)
	}
	if len(envelope.Data.Bookings) != 1 || envelope.Data.Bookings[0].ID != booking.ID {
		t.Fatalf("unexpected bookings %+v", envelope.Data.Bookings)
	}
}

func TestCheckoutMissingInformation(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, pkgcheckout.MessageMissingInfo).
		WithNotice(pkgcheckout.NoticeMissingInfo)}

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"payment":{},"billing":{}}`)), "user-1", "")
	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, pkgcheckout.MessageMissingInfo) || !strings.Contains(body, pkgcheckout.NoticeMissingInfo) {
		t.Fatalf("expected missing info message and notice, got %s", body)
	}
}

func TestCheckoutFailureReportsSucceededIDs(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeCheckoutFailed, "Failed to complete checkout: room unavailable").
		WithDetails(map[string]any{"succeeded_booking_ids": []string{"b-1"}})}

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)), "user-1", "")
	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Failed to complete checkout: room unavailable") || !strings.Contains(body, "b-1") || !strings.Contains(body, `"notice":"Checkout Failed"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestCheckoutRequiresUser(t *testing.T) {
	svc := &stubCheckoutService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestCheckoutSummaryPrefillsBilling(t *testing.T) {
	svc := &stubCheckoutService{summary: &checkoutsvc.Summary{
		Lines: []checkoutsvc.SummaryLine{{
			RoomID:       "room-1",
			Name:         "Harbor Suite",
			Quantity:     2,
			DisplayPrice: decimal.NewFromInt(240),
		}},
		Subtotal: decimal.NewFromInt(240),
		Tax:      decimal.RequireFromString("24.00"),
		Total:    decimal.RequireFromString("264.00"),
		Billing:  pkgcheckout.BillingDetails{Email: "ada@example.com"},
	}}

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/summary", nil), "user-1", "ada@example.com")
	rec := httptest.NewRecorder()
	CheckoutSummary(svc, logger.Nop()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data summaryResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Billing.Email != "ada@example.com" {
		t.Fatalf("expected prefilled email got %q", envelope.Data.Billing.Email)
	}
	if !envelope.Data.Total.Equal(decimal.NewFromInt(264)) {
		t.Fatalf("expected total 264 got %s", envelope.Data.Total)
	}
	if len(envelope.Data.Lines) != 1 || envelope.Data.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines %+v", envelope.Data.Lines)
	}
}
