package rooms

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/staybook/staybook-backend/pkg/db/models"
	pkgerrors "github.com/staybook/staybook-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(&models.Room{}))
	return conn
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Room{Name: "Deluxe", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Equal(t, 1, created.Capacity)

	loaded, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Deluxe", loaded.Name)
	require.True(t, loaded.Price.Equal(decimal.NewFromInt(100)))
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRepositoryCreateRejectsNegativePrice(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	_, err := repo.Create(context.Background(), &models.Room{Name: "Broken", Price: decimal.NewFromInt(-1)})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRepositoryListOrdersByName(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Suite", "Attic", "Garden"} {
		_, err := repo.Create(ctx, &models.Room{Name: name, Price: decimal.NewFromInt(80)})
		require.NoError(t, err)
	}

	rooms, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, "Attic", rooms[0].Name)
	require.Equal(t, "Garden", rooms[1].Name)
}
