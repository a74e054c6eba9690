package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staybook/staybook-backend/internal/rooms"
	"github.com/staybook/staybook-backend/pkg/db"
	"github.com/staybook/staybook-backend/pkg/db/models"
)

type seedRoom struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Capacity    int             `json:"capacity"`
	ImageURL    *string         `json:"image_url"`
}

var defaultRooms = []seedRoom{
	{Name: "Standard Queen", Description: "Queen bed, city view", Price: decimal.NewFromInt(89), Capacity: 2},
	{Name: "Deluxe King", Description: "King bed, balcony", Price: decimal.NewFromInt(129), Capacity: 2},
	{Name: "Family Suite", Description: "Two bedrooms and a kitchenette", Price: decimal.NewFromInt(219), Capacity: 5},
}

// seedRooms inserts the rooms listed in path, or a small default set when path
// is empty. All rooms go in one transaction.
func seedRooms(ctx context.Context, client *db.Client, path string) (int, error) {
	list := defaultRooms
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read seed file: %w", err)
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return 0, fmt.Errorf("parse seed file %s: %w", path, err)
		}
	}

	repo := rooms.NewRepository(client.DB())
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		for _, room := range list {
			if _, err := txRepo.Create(ctx, &models.Room{
				Name:        room.Name,
				Description: room.Description,
				Price:       room.Price,
				Capacity:    room.Capacity,
				ImageURL:    room.ImageURL,
			}); err != nil {
				return fmt.Errorf("seed room %q: %w", room.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(list), nil
}
