package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/staybook/staybook-backend/internal/bookings"
	"github.com/staybook/staybook-backend/internal/cart"
	pkgcheckout "github.com/staybook/staybook-backend/pkg/checkout"
	"github.com/staybook/staybook-backend/pkg/db/models"
	"github.com/staybook/staybook-backend/pkg/enums"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
	"github.com/staybook/staybook-backend/pkg/logger"
	"github.com/staybook/staybook-backend/pkg/metrics"
)

const (
	bookingsRedirect  = "/bookings"
	failedMessagePref = "Failed to complete checkout: "
)

type cartProvider interface {
	ForUser(ctx context.Context, userID string) (*cart.Store, error)
}

type bookingCreator interface {
	Create(ctx context.Context, input bookings.CreateInput) (*models.Booking, error)
}

type checkoutRecorder interface {
	IncAttempt(outcome string)
	AddBookings(n int)
	ObserveSubmit(d time.Duration)
}

// Input is what the guest submits on the checkout form.
type Input struct {
	Payment pkgcheckout.PaymentCard
	Billing pkgcheckout.BillingDetails
}

// Result is the confirmation for a fully successful checkout.
type Result struct {
	Bookings            []models.Booking
	SucceededBookingIDs []string
	Message             string
	Redirect            string
	State               enums.CheckoutState
}

// Service turns a guest's cart into bookings.
type Service interface {
	Execute(ctx context.Context, identity Identity, input Input) (*Result, error)
	Summary(ctx context.Context, identity Identity) (*Summary, error)
}

// ServiceParams groups the collaborators of the checkout service.
type ServiceParams struct {
	Carts    cartProvider
	Bookings bookingCreator
	Guard    submissionGuard
	Metrics  checkoutRecorder
	Logger   *logger.Logger
	TaxRate  decimal.Decimal
	Now      func() time.Time
}

type service struct {
	carts    cartProvider
	bookings bookingCreator
	guard    submissionGuard
	metrics  checkoutRecorder
	logg     *logger.Logger
	taxRate  decimal.Decimal
	now      func() time.Time
}

// NewService builds the checkout orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart provider required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking creator required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("submission guard required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Metrics == nil {
		params.Metrics = (*metrics.CheckoutMetrics)(nil)
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		carts:    params.Carts,
		bookings: params.Bookings,
		guard:    params.Guard,
		metrics:  params.Metrics,
		logg:     params.Logger,
		taxRate:  params.TaxRate,
		now:      params.Now,
	}, nil
}

// Execute validates the submission, creates one booking per cart line
// concurrently and removes the submitted lines only when every booking
// succeeded. Lines added while the bookings were in flight stay in the cart.
// Bookings already created in a failed batch are reported, not rolled back.
func (s *service) Execute(ctx context.Context, identity Identity, input Input) (*Result, error) {
	store, err := s.cartFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithUserID(ctx, identity.UserID)

	lines := store.Lines()
	if err := pkgcheckout.ValidateSubmission(len(lines), input.Payment, input.Billing, s.now()); err != nil {
		s.metrics.IncAttempt(metrics.OutcomeRejected)
		return nil, err
	}

	acquired, err := s.guard.Acquire(ctx, identity.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout guard")
	}
	if !acquired {
		s.metrics.IncAttempt(metrics.OutcomeBusy)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	defer s.release(ctx, identity.UserID)

	start := time.Now()
	created, succeeded, err := s.submit(ctx, identity, input.Billing, lines)
	s.metrics.ObserveSubmit(time.Since(start))
	s.metrics.AddBookings(len(succeeded))

	if err != nil {
		s.metrics.IncAttempt(metrics.OutcomeFailed)
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"state":                 enums.CheckoutStateFailed.String(),
			"succeeded_booking_ids": succeeded,
		})
		s.logg.Error(logCtx, "checkout submission failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeCheckoutFailed, err, failedMessagePref+underlyingMessage(err)).
			WithDetails(map[string]any{"succeeded_booking_ids": succeeded})
	}

	store.Settle(lines)
	if err := store.Flush(ctx); err != nil {
		s.logg.Error(ctx, "settled cart snapshot not persisted", err)
	}
	s.metrics.IncAttempt(metrics.OutcomeConfirmed)
	s.logg.Info(s.logg.WithField(ctx, "bookings", len(created)), "checkout confirmed")

	return &Result{
		Bookings:            created,
		SucceededBookingIDs: succeeded,
		Message:             fmt.Sprintf("Successfully created %d bookings!", len(created)),
		Redirect:            bookingsRedirect,
		State:               enums.CheckoutStateConfirmed,
	}, nil
}

// Summary prices the current cart and prefills billing from the identity.
func (s *service) Summary(ctx context.Context, identity Identity) (*Summary, error) {
	store, err := s.cartFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	summary := Summarize(store.Lines(), s.taxRate)
	summary.Billing = PrefillBilling(identity)
	return &summary, nil
}

// submit fans out one create per line and waits for every request. A failure
// is reported only after all sibling requests have finished, so the returned
// ids are the complete saga of bookings that exist server side.
func (s *service) submit(ctx context.Context, identity Identity, billing pkgcheckout.BillingDetails, lines []cart.Line) ([]models.Booking, []string, error) {
	var (
		g         errgroup.Group
		mu        sync.Mutex
		results   = make([]*models.Booking, len(lines))
		succeeded = make([]string, 0, len(lines))
	)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			booking, err := s.bookings.Create(ctx, bookingInput(identity, billing, line))
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = booking
			succeeded = append(succeeded, booking.ID.String())
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		return nil, succeeded, err
	}

	created := make([]models.Booking, 0, len(results))
	for _, booking := range results {
		created = append(created, *booking)
	}
	return created, succeeded, nil
}

func (s *service) cartFor(ctx context.Context, identity Identity) (*cart.Store, error) {
	if strings.TrimSpace(identity.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	store, err := s.carts.ForUser(ctx, identity.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return store, nil
}

func (s *service) release(ctx context.Context, userID string) {
	if err := s.guard.Release(context.WithoutCancel(ctx), userID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to release checkout guard")
	}
}

func bookingInput(identity Identity, billing pkgcheckout.BillingDetails, line cart.Line) bookings.CreateInput {
	return bookings.CreateInput{
		RoomID:       line.ID,
		RoomName:     line.Name,
		UserID:       identity.UserID,
		CheckInDate:  line.CheckInDate,
		CheckOutDate: line.CheckOutDate,
		Nights:       line.NightsOrComputed(),
		TotalPrice:   line.LineTotal(),
		GuestName:    strings.TrimSpace(billing.Name),
		GuestEmail:   strings.TrimSpace(billing.Email),
	}
}

func underlyingMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return err.Error()
}
