package repositories

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"tokodash/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), uuid.NewString())
	db, err := OpenDatabase(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// itemRepositoryContract runs the same checks against every ItemRepository.
func itemRepositoryContract(t *testing.T, repo ItemRepository) {
	url := "http://cdn/mug.jpg"
	mug := &models.Item{ID: 99, StoreID: "s1", Name: "Mug", Price: 12.5, Quantity: 5, ImageURL: &url}
	require.NoError(t, repo.Create(mug))
	assert.NotEqual(t, int64(99), mug.ID, "identifier is assigned by the repository")

	bowl := &models.Item{StoreID: "s1", Name: "Bowl", Price: 8}
	require.NoError(t, repo.Create(bowl))
	require.NoError(t, repo.Create(&models.Item{StoreID: "s2", Name: "Vase", Price: 30}))

	items, err := repo.ListByStore("s1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mug", items[0].Name)
	assert.Equal(t, "Bowl", items[1].Name)

	got, err := repo.GetByID("s1", mug.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, url, *got.ImageURL)

	_, err = repo.GetByID("s2", mug.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	update := &models.Item{ID: bowl.ID, StoreID: "s1", Name: "Big Bowl", Price: 9, Quantity: 2}
	require.NoError(t, repo.Update(update))
	got, err = repo.GetByID("s1", bowl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Big Bowl", got.Name)
	assert.Equal(t, 2, got.Quantity)
	assert.Nil(t, got.ImageURL)

	err = repo.Update(&models.Item{ID: bowl.ID, StoreID: "s2", Name: "Stolen", Price: 1})
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(repo.Delete("s2", mug.ID), ErrNotFound))
	require.NoError(t, repo.Delete("s1", mug.ID))
	items, err = repo.ListByStore("s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, bowl.ID, items[0].ID)
}

func TestGORMItemRepository(t *testing.T) {
	itemRepositoryContract(t, NewGORMItemRepository(openTestDB(t)))
}

func TestMockItemRepository(t *testing.T) {
	itemRepositoryContract(t, NewMockItemRepository())
}

func TestGORMOrderRepository(t *testing.T) {
	repo := NewGORMOrderRepository(openTestDB(t))

	order := &models.Order{
		StoreID:     "s1",
		CustomerID:  "c1",
		Items:       []models.OrderItem{{ItemID: 1, Quantity: 2, Price: 12.5}},
		TotalAmount: 25,
		Status:      models.OrderStatusPending,
	}
	require.NoError(t, repo.Create(order))
	require.NotEmpty(t, order.ID)

	got, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, got.Items)
	assert.Equal(t, 25.0, got.TotalAmount)

	require.NoError(t, repo.UpdateStatus(order.ID, models.OrderStatusShipped))
	orders, err := repo.ListByStore("s1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusShipped, orders[0].Status)

	_, err = repo.GetByID("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(repo.UpdateStatus("missing", models.OrderStatusShipped), ErrNotFound))
}

func TestGORMUserRepository(t *testing.T) {
	repo := NewGORMUserRepository(openTestDB(t))

	user := &models.User{Username: "clara", Email: "clara@example.com", Password: "hash", StoreName: "Clay Co"}
	require.NoError(t, repo.Create(user))
	require.NotEmpty(t, user.ID)

	got, err := repo.GetByUsername("clara")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByEmail("clara@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Clay Co", got.StoreName)

	_, err = repo.GetByUsername("nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOpenTestDB_FreshDatabaseEachCall(t *testing.T) {
	for i := 0; i < 2; i++ {
		repo := NewGORMUserRepository(openTestDB(t))
		require.NoError(t, repo.Create(&models.User{
			Username:  "clara",
			Email:     "clara@example.com",
			Password:  "hash",
			StoreName: "Clay Co",
		}), "call %d", i)
	}
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, isPostgresDSN("postgres://u:p@localhost/db"))
	assert.True(t, isPostgresDSN("host=127.0.0.1 user=postgres dbname=tokodash"))
	assert.False(t, isPostgresDSN("file:tokodash.db?cache=shared"))
}

func TestMockOrderRepository(t *testing.T) {
	repo := NewMockOrderRepository()

	first := &models.Order{StoreID: "s1", Items: []models.OrderItem{{ItemID: 1, Quantity: 1, Price: 2}}}
	second := &models.Order{StoreID: "s1"}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	require.NoError(t, repo.Create(&models.Order{StoreID: "s2"}))

	orders, err := repo.ListByStore("s1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)

	first.Items[0].Quantity = 99
	got, err := repo.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)

	assert.Error(t, repo.Create(&models.Order{ID: first.ID}))
	require.NoError(t, repo.UpdateStatus(first.ID, models.OrderStatusCancelled))
	got, err = repo.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	empty, err := repo.ListByStore("nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
}
