package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"product-catalog/internal/catalog"

	"github.com/prometheus/client_golang/prometheus"
)

type Repository interface {
	List(ctx context.Context) ([]catalog.Product, error)
	GetByID(ctx context.Context, id int64) (catalog.Product, error)
	Create(ctx context.Context, name, description string, price float64, stock int) (catalog.Product, error)
	Update(ctx context.Context, id int64, name, description string, price float64, stock int) error
	Delete(ctx context.Context, id int64) error
}

type Publisher interface {
	Publish(ctx context.Context, event catalog.ProductEvent) error
}

type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	created   prometheus.Counter
	updated   prometheus.Counter
	deleted   prometheus.Counter
}

func New(repo Repository, publisher Publisher, logger *slog.Logger, created, updated, deleted prometheus.Counter) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		created:   created,
		updated:   updated,
		deleted:   deleted,
	}
}

// validated is a ProductInput with defaults applied: description falls
// back to the empty string, stock to 0. Create and update share the same
// policy, so a full-replace update is validated exactly like a create.
type validated struct {
	name        string
	description string
	price       float64
	stock       int
}

func validateInput(input catalog.ProductInput) (validated, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return validated{}, catalog.ErrNameRequired
	}
	if input.Price == nil {
		return validated{}, catalog.ErrPriceRequired
	}
	if *input.Price < 0 {
		return validated{}, catalog.ErrPriceNegative
	}

	stock := 0
	if input.Stock != nil {
		if *input.Stock < 0 {
			return validated{}, catalog.ErrStockNegative
		}
		stock = *input.Stock
	}

	return validated{
		name:        name,
		description: input.Description,
		price:       *input.Price,
		stock:       stock,
	}, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}
	return items, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("repo get: %w", err)
	}
	return product, nil
}

func (s *Service) CreateProduct(ctx context.Context, input catalog.ProductInput) (catalog.Product, error) {
	v, err := validateInput(input)
	if err != nil {
		return catalog.Product{}, err
	}

	product, err := s.repo.Create(ctx, v.name, v.description, v.price, v.stock)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("repo create: %w", err)
	}

	s.publish(ctx, catalog.EventCreated, product.ID, product.Name)
	s.created.Inc()
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, input catalog.ProductInput) error {
	v, err := validateInput(input)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, v.name, v.description, v.price, v.stock); err != nil {
		return fmt.Errorf("repo update: %w", err)
	}

	s.publish(ctx, catalog.EventUpdated, id, v.name)
	s.updated.Inc()
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	s.publish(ctx, catalog.EventDeleted, id, "")
	s.deleted.Inc()
	return nil
}

// publish emits a catalog event. A publish failure is logged but never
// fails the request: the write already committed.
func (s *Service) publish(ctx context.Context, eventType string, id int64, name string) {
	err := s.publisher.Publish(ctx, catalog.ProductEvent{
		EventType: eventType,
		ProductID: id,
		Name:      name,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("publish catalog event failed",
			"event_type", eventType,
			"product_id", id,
			"error", err,
		)
	}
}

// NopPublisher satisfies Publisher when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, catalog.ProductEvent) error { return nil }
