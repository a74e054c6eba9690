package cart

import (
	"time"

	"github.com/shopspring/decimal"

	cartsvc "github.com/staybook/staybook-backend/internal/cart"
)

type cartResponse struct {
	Items      []cartLineResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	StayTotal  decimal.Decimal    `json:"stay_total"`
}

type cartLineResponse struct {
	RoomID       string          `json:"room_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	CheckInDate  *time.Time      `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time      `json:"check_out_date,omitempty"`
	Nights       *int            `json:"nights,omitempty"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

func newCartResponse(view *cartsvc.View) cartResponse {
	resp := cartResponse{
		Items:      make([]cartLineResponse, 0, len(view.Lines)),
		TotalItems: view.TotalItems,
		TotalPrice: view.TotalPrice,
		StayTotal:  view.StayTotal,
	}
	for _, line := range view.Lines {
		resp.Items = append(resp.Items, cartLineResponse{
			RoomID:       line.ID,
			Name:         line.Name,
			Price:        line.Price,
			Quantity:     line.Quantity,
			CheckInDate:  line.CheckInDate,
			CheckOutDate: line.CheckOutDate,
			Nights:       line.Nights,
			LineTotal:    line.LineTotal(),
		})
	}
	return resp
}
