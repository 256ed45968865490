package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrNameRequired  = errors.New("product name is required")
	ErrPriceRequired = errors.New("product price is required")
	ErrPriceNegative = errors.New("product price must not be negative")
	ErrStockNegative = errors.New("product stock must not be negative")
)

const (
	EventsQueue  = "catalog.events"
	EventCreated = "product_created"
	EventUpdated = "product_updated"
	EventDeleted = "product_deleted"
)

type Product struct {
	ID          int64     `json:"id" example:"1"`
	Name        string    `json:"name" example:"Widget"`
	Description string    `json:"description" example:"A very useful widget"`
	Price       float64   `json:"price" example:"9.99"`
	Stock       int       `json:"stock" example:"42"`
	CreatedAt   time.Time `json:"created_at" example:"2026-02-24T12:00:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2026-02-24T12:00:00Z"`
}

// ProductInput carries the client-supplied fields of a create or update.
// Price and Stock are pointers so the service can tell a missing field
// apart from an explicit zero.
type ProductInput struct {
	Name        string   `json:"name" example:"Widget"`
	Description string   `json:"description" example:"A very useful widget"`
	Price       *float64 `json:"price" example:"9.99"`
	Stock       *int     `json:"stock" example:"42"`
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IsValidationError reports whether err is one of the field validation
// sentinels, so the handler layer can map it to a client error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrPriceRequired) ||
		errors.Is(err, ErrPriceNegative) ||
		errors.Is(err, ErrStockNegative)
}
