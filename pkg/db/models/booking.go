package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staybook/staybook-backend/pkg/enums"
)

// Booking is a persisted reservation created one-per-cart-line at checkout.
type Booking struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	RoomID       string              `gorm:"column:room_id;not null;index"`
	RoomName     string              `gorm:"column:room_name;not null"`
	UserID       string              `gorm:"column:user_id;not null;index"`
	CheckInDate  *time.Time          `gorm:"column:check_in_date"`
	CheckOutDate *time.Time          `gorm:"column:check_out_date"`
	Nights       *int                `gorm:"column:nights"`
	TotalPrice   decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	GuestName    string              `gorm:"column:guest_name;not null"`
	GuestEmail   string              `gorm:"column:guest_email;not null"`
	Status       enums.BookingStatus `gorm:"column:status;not null;default:'confirmed'"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = enums.BookingStatusConfirmed
	}
	return nil
}
