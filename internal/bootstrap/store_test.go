package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshsave/internal/config"
	"freshsave/internal/domain/inventory"
	"freshsave/pkg/logger"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		Store:     config.StoreConfig{Driver: driver, CollectionID: "items"},
		Inventory: config.InventoryConfig{ExpiringWindowDays: 7},
	}
}

func TestOpenEmbeddedStores(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverBadger} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(driver)

			backend, err := OpenStore(ctx, cfg, logger.Nop())
			require.NoError(t, err)
			defer backend.Close()

			assert.Equal(t, driver, backend.Driver)
			require.NoError(t, backend.Store.Ping(ctx))

			repo := NewRepository(backend, cfg, logger.Nop())
			newID, err := repo.AddItem(ctx, inventory.NewItem("Milk", "Dairy & Eggs")).Get()
			require.NoError(t, err)

			items, err := repo.GetAllItems(ctx).Get()
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, newID, items[0].ID)
		})
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), testConfig("floppy"), logger.Nop())
	assert.Error(t, err)
}

func TestOpenAppwriteNeedsEndpoint(t *testing.T) {
	cfg := testConfig(config.DriverAppwrite)
	_, err := OpenStore(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}
