package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Store defines the persistence operations the service needs.
type Store interface {
	WithTx(tx *gorm.DB) *Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
}

// Service exposes order history reads and cancellation.
type Service interface {
	Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo Store
}

// NewService builds the order service with its required dependencies.
func NewService(repo Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, error) {
	rows, next, err := s.repo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

// Cancel moves a processing order to cancelled. Completed orders stay put.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only processing orders can be cancelled")
	}

	moved, err := s.repo.UpdateStatus(ctx, orderID, enums.OrderStatusProcessing, enums.OrderStatusCancelled)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	order.Status = enums.OrderStatusCancelled
	return order, nil
}

// load fetches the order and enforces ownership. Another user's order reads
// as not found rather than forbidden.
func (s *service) load(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil || order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}
