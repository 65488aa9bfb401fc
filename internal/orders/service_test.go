package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type stubStore struct {
	createFn       func(ctx context.Context, order *models.Order) (*models.Order, error)
	findByIDFn     func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listByUserFn   func(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
}

func (s *stubStore) WithTx(tx *gorm.DB) *Repository { return nil }

func (s *stubStore) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createFn != nil {
		return s.createFn(ctx, order)
	}
	return order, nil
}

func (s *stubStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (s *stubStore) ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, error) {
	if s.listByUserFn != nil {
		return s.listByUserFn(ctx, userID, cursor, limit)
	}
	return nil, "", nil
}

func (s *stubStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, id, from, to)
	}
	return false, nil
}

func newTestService(t *testing.T, store Store) Service {
	t.Helper()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestGetHidesOtherUsersOrders(t *testing.T) {
	owner := uuid.New()
	store := &stubStore{
		findByIDFn: func(_ context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id, UserID: owner, Status: enums.OrderStatusProcessing}, nil
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order got %v", err)
	}
}

func TestCancelRejectsCompletedOrders(t *testing.T) {
	owner := uuid.New()
	store := &stubStore{
		findByIDFn: func(_ context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id, UserID: owner, Status: enums.OrderStatusCompleted}, nil
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Cancel(context.Background(), owner, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestCancelTransitionsProcessingOrder(t *testing.T) {
	owner := uuid.New()
	store := &stubStore{
		findByIDFn: func(_ context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id, UserID: owner, Status: enums.OrderStatusProcessing}, nil
		},
		updateStatusFn: func(_ context.Context, _ uuid.UUID, from, to enums.OrderStatus) (bool, error) {
			if from != enums.OrderStatusProcessing || to != enums.OrderStatusCancelled {
				t.Fatalf("unexpected transition %s -> %s", from, to)
			}
			return true, nil
		},
	}
	svc := newTestService(t, store)

	order, err := svc.Cancel(context.Background(), owner, uuid.New())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status got %s", order.Status)
	}
}

func TestCancelDetectsConcurrentTransition(t *testing.T) {
	owner := uuid.New()
	store := &stubStore{
		findByIDFn: func(_ context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id, UserID: owner, Status: enums.OrderStatusProcessing}, nil
		},
		updateStatusFn: func(context.Context, uuid.UUID, enums.OrderStatus, enums.OrderStatus) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Cancel(context.Background(), owner, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}
