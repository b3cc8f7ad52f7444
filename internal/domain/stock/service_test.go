package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
)

// mockStockRepo keeps stock levels in memory.
type mockStockRepo struct {
	products  map[id.ID]ProductSnapshot
	movements []Movement
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{products: make(map[id.ID]ProductSnapshot)}
}

func (m *mockStockRepo) GetSnapshotForUpdate(ctx context.Context, productID id.ID) (ProductSnapshot, error) {
	snap, ok := m.products[productID]
	if !ok {
		return ProductSnapshot{}, apperror.NewNotFound("product", productID)
	}
	return snap, nil
}

func (m *mockStockRepo) ApplyDelta(ctx context.Context, productID id.ID, delta int64) error {
	snap, ok := m.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	if snap.Available+delta < 0 {
		return ErrStockGuard
	}
	snap.Available += delta
	m.products[productID] = snap
	return nil
}

func (m *mockStockRepo) AppendMovement(ctx context.Context, mv Movement) error {
	m.movements = append(m.movements, mv)
	return nil
}

func (m *mockStockRepo) Movements(ctx context.Context, productID id.ID, filter MovementFilter) ([]Movement, error) {
	var out []Movement
	for _, mv := range m.movements {
		if mv.ProductID == productID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func TestAssertSufficientStock(t *testing.T) {
	repo := newMockStockRepo()
	productID := id.New()
	repo.products[productID] = ProductSnapshot{ID: productID, Name: "Martillo 16oz", Available: 3}

	svc := NewService(repo)
	ctx := context.Background()

	t.Run("insufficient", func(t *testing.T) {
		_, err := svc.AssertSufficientStock(ctx, productID, 5)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
		assert.Equal(t, int64(3), appErr.Details["available"])
		assert.Equal(t, int64(5), appErr.Details["requested"])
		assert.Equal(t, "Martillo 16oz", appErr.Details["product"])
	})

	t.Run("exactly enough", func(t *testing.T) {
		snap, err := svc.AssertSufficientStock(ctx, productID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), snap.Available)
		// The assert itself must not mutate state.
		assert.Equal(t, int64(3), repo.products[productID].Available)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.AssertSufficientStock(ctx, id.New(), 1)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.AssertSufficientStock(ctx, productID, 0)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestApplyStockDelta(t *testing.T) {
	repo := newMockStockRepo()
	productID := id.New()
	repo.products[productID] = ProductSnapshot{ID: productID, Name: "Taladro", Available: 10}

	svc := NewService(repo)
	ctx := context.Background()
	saleID := id.New()

	t.Run("debit", func(t *testing.T) {
		err := svc.ApplyStockDelta(ctx, productID, -5, MovementSale, &saleID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), repo.products[productID].Available)

		require.Len(t, repo.movements, 1)
		mv := repo.movements[0]
		assert.Equal(t, MovementSale, mv.MovementType)
		assert.Equal(t, int64(5), mv.Quantity, "movement stores the absolute quantity")
		assert.Equal(t, int64(-5), mv.Delta)
		assert.Equal(t, saleID, *mv.ReferenceID)
	})

	t.Run("credit", func(t *testing.T) {
		err := svc.ApplyStockDelta(ctx, productID, 5, MovementRentalReturn, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(10), repo.products[productID].Available)

		require.Len(t, repo.movements, 2)
		assert.Equal(t, int64(5), repo.movements[1].Quantity)
		assert.Equal(t, MovementRentalReturn, repo.movements[1].MovementType)
	})

	t.Run("guard maps to insufficient stock", func(t *testing.T) {
		err := svc.ApplyStockDelta(ctx, productID, -100, MovementSale, nil)
		assert.True(t, apperror.IsInsufficientStock(err))
		// No movement row for the rejected delta.
		assert.Len(t, repo.movements, 2)
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		err := svc.ApplyStockDelta(ctx, productID, 0, MovementSale, nil)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("unknown movement type rejected", func(t *testing.T) {
		err := svc.ApplyStockDelta(ctx, productID, 1, MovementType("TELEPORT"), nil)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestAdjust(t *testing.T) {
	repo := newMockStockRepo()
	productID := id.New()
	repo.products[productID] = ProductSnapshot{ID: productID, Name: "Clavos 2in", Available: 4}

	svc := NewService(repo)
	ctx := context.Background()

	err := svc.Adjust(ctx, productID, -4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), repo.products[productID].Available)

	err = svc.Adjust(ctx, productID, -1)
	assert.True(t, apperror.IsInsufficientStock(err))

	err = svc.Adjust(ctx, productID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), repo.products[productID].Available)
	assert.Equal(t, MovementAdjustment, repo.movements[len(repo.movements)-1].MovementType)
}
