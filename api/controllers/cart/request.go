package cart

import (
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/staybook/staybook-backend/internal/cart"
)

type addItemRequest struct {
	RoomID       uuid.UUID  `json:"room_id"`
	CheckInDate  *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time `json:"check_out_date,omitempty"`
}

func (r addItemRequest) toInput() cartsvc.AddRoomInput {
	return cartsvc.AddRoomInput{
		RoomID:   r.RoomID,
		CheckIn:  r.CheckInDate,
		CheckOut: r.CheckOutDate,
	}
}

// Quantity is a pointer so an explicit 0 reaches the service and removes the line.
type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}
