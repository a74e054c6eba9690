package bookings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staybook/staybook-backend/pkg/db"
	"github.com/staybook/staybook-backend/pkg/db/models"
	"github.com/staybook/staybook-backend/pkg/enums"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
	"github.com/staybook/staybook-backend/pkg/pagination"
)

// CreateInput carries the fields of one booking document.
type CreateInput struct {
	RoomID       string
	RoomName     string
	UserID       string
	CheckInDate  *time.Time
	CheckOutDate *time.Time
	Nights       *int
	TotalPrice   decimal.Decimal
	GuestName    string
	GuestEmail   string
}

// List is one page of a guest's bookings.
type List struct {
	Bookings   []models.Booking
	NextCursor string
}

// Repository persists bookings.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx, now: r.now}
}

// Create stores a confirmed booking and returns the stored record.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	now := r.now().UTC()
	booking := &models.Booking{
		RoomID:       strings.TrimSpace(input.RoomID),
		RoomName:     input.RoomName,
		UserID:       strings.TrimSpace(input.UserID),
		CheckInDate:  input.CheckInDate,
		CheckOutDate: input.CheckOutDate,
		Nights:       input.Nights,
		TotalPrice:   input.TotalPrice,
		GuestName:    strings.TrimSpace(input.GuestName),
		GuestEmail:   strings.TrimSpace(input.GuestEmail),
		Status:       enums.BookingStatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "booking already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}
	return booking, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, params pagination.Params) (*List, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Booking{}).Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Booking
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}

	list := &List{Bookings: rows}
	if len(rows) > normalized {
		last := rows[normalized-1]
		list.Bookings = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func validateCreate(input CreateInput) error {
	missing := []string{}
	if strings.TrimSpace(input.RoomID) == "" {
		missing = append(missing, "roomId")
	}
	if strings.TrimSpace(input.UserID) == "" {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(input.GuestName) == "" {
		missing = append(missing, "guestName")
	}
	if strings.TrimSpace(input.GuestEmail) == "" {
		missing = append(missing, "guestEmail")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking is missing "+strings.Join(missing, ", "))
	}
	if input.TotalPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking total must not be negative")
	}
	if input.CheckInDate != nil && input.CheckOutDate != nil && !input.CheckOutDate.After(*input.CheckInDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "check-out date must be after check-in date")
	}
	return nil
}

// Get loads one booking owned by userID.
func (r *Repository) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&booking).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return &booking, nil
}
