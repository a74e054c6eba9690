package cart

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidStay is returned when a check-out does not follow its check-in.
var ErrInvalidStay = errors.New("check-out date must be after check-in date")

// Line is one room selection in a guest's cart.
type Line struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Price        decimal.Decimal  `json:"price"`
	Quantity     int              `json:"quantity"`
	CheckInDate  *time.Time       `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time       `json:"check_out_date,omitempty"`
	Nights       *int             `json:"nights,omitempty"`
	TotalPrice   *decimal.Decimal `json:"total_price,omitempty"`
}

// RoomSnapshot is the denormalized room data copied into a line.
type RoomSnapshot struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// NewLine builds a quantity based line for the room.
func NewLine(room RoomSnapshot) Line {
	return Line{
		ID:       strings.TrimSpace(room.ID),
		Name:     room.Name,
		Price:    room.Price,
		Quantity: 1,
	}
}

// NewStayLine builds a date based line with nights and total price precomputed.
func NewStayLine(room RoomSnapshot, checkIn, checkOut time.Time) (Line, error) {
	if !checkOut.After(checkIn) {
		return Line{}, ErrInvalidStay
	}
	nights := StayNights(checkIn, checkOut)
	total := room.Price.Mul(decimal.NewFromInt(int64(nights)))
	in, out := checkIn.UTC(), checkOut.UTC()

	line := NewLine(room)
	line.CheckInDate = &in
	line.CheckOutDate = &out
	line.Nights = &nights
	line.TotalPrice = &total
	return line, nil
}

// StayNights is the ceiling of the stay length in days, never less than one.
func StayNights(checkIn, checkOut time.Time) int {
	days := math.Ceil(checkOut.Sub(checkIn).Hours() / 24)
	if days < 1 {
		return 1
	}
	return int(days)
}

// LineTotal is the precomputed stay total when present, else price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	if l.TotalPrice != nil {
		return *l.TotalPrice
	}
	return l.QuantityTotal()
}

// QuantityTotal is price times quantity.
func (l Line) QuantityTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NightsOrComputed returns the stored nights, derives them from the dates, or nil.
func (l Line) NightsOrComputed() *int {
	if l.Nights != nil {
		n := *l.Nights
		return &n
	}
	if l.CheckInDate != nil && l.CheckOutDate != nil {
		n := StayNights(*l.CheckInDate, *l.CheckOutDate)
		return &n
	}
	return nil
}

func (l Line) clone() Line {
	out := l
	if l.CheckInDate != nil {
		v := *l.CheckInDate
		out.CheckInDate = &v
	}
	if l.CheckOutDate != nil {
		v := *l.CheckOutDate
		out.CheckOutDate = &v
	}
	if l.Nights != nil {
		v := *l.Nights
		out.Nights = &v
	}
	if l.TotalPrice != nil {
		v := *l.TotalPrice
		out.TotalPrice = &v
	}
	return out
}
