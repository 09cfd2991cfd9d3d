// Package repositories persists merchants, their items and their orders.
// Each concern has a GORM implementation for the server and an in-memory one
// for tests.
package repositories

import (
	"errors"

	"tokodash/internal/models"
)

// ErrNotFound is returned when the requested record does not exist, or exists
// but belongs to another store.
var ErrNotFound = errors.New("record not found")

// ItemRepository stores the items of every store. Every lookup is scoped to
// the owning store.
type ItemRepository interface {
	ListByStore(storeID string) ([]models.Item, error)
	GetByID(storeID string, id int64) (*models.Item, error)
	Create(item *models.Item) error
	Update(item *models.Item) error
	Delete(storeID string, id int64) error
}

// OrderRepository stores customer orders.
type OrderRepository interface {
	ListByStore(storeID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status string) error
}

// UserRepository stores merchant accounts.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}
