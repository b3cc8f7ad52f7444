package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/core/tx"
	"ferreteria/internal/core/types"
	"ferreteria/internal/domain"
	"ferreteria/internal/domain/audit"
	"ferreteria/internal/domain/stock"
)

type mockPurchaseRepo struct {
	purchases map[id.ID]*Purchase
	lines     map[id.ID][]Line
	nextFolio int64
}

func (m *mockPurchaseRepo) Create(ctx context.Context, p *Purchase) error {
	m.nextFolio++
	p.Folio = m.nextFolio
	cp := *p
	cp.Lines = nil
	m.purchases[p.ID] = &cp
	return nil
}

func (m *mockPurchaseRepo) SaveLines(ctx context.Context, purchaseID id.ID, lines []Line) error {
	m.lines[purchaseID] = append([]Line(nil), lines...)
	return nil
}

func (m *mockPurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	p, ok := m.purchases[purchaseID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", purchaseID)
	}
	cp := *p
	return &cp, nil
}

func (m *mockPurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]Line, error) {
	return m.lines[purchaseID], nil
}

func (m *mockPurchaseRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	out := domain.ListResult[*Purchase]{}
	for _, p := range m.purchases {
		cp := *p
		out.Items = append(out.Items, &cp)
	}
	out.TotalCount = int64(len(out.Items))
	return out, nil
}

type mockStockRepo struct {
	products  map[id.ID]stock.ProductSnapshot
	movements []stock.Movement
}

func (m *mockStockRepo) GetSnapshotForUpdate(ctx context.Context, productID id.ID) (stock.ProductSnapshot, error) {
	snap, ok := m.products[productID]
	if !ok {
		return stock.ProductSnapshot{}, apperror.NewNotFound("product", productID)
	}
	return snap, nil
}

func (m *mockStockRepo) ApplyDelta(ctx context.Context, productID id.ID, delta int64) error {
	snap, ok := m.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	if snap.Available+delta < 0 {
		return stock.ErrStockGuard
	}
	snap.Available += delta
	m.products[productID] = snap
	return nil
}

func (m *mockStockRepo) AppendMovement(ctx context.Context, mv stock.Movement) error {
	m.movements = append(m.movements, mv)
	return nil
}

func (m *mockStockRepo) Movements(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]stock.Movement, error) {
	return nil, nil
}

type mockAuditRepo struct {
	appended []audit.Record
}

func (m *mockAuditRepo) Append(ctx context.Context, rec audit.Record) error {
	m.appended = append(m.appended, rec)
	return nil
}

func (m *mockAuditRepo) History(ctx context.Context, tableName, recordID string, limit int) ([]audit.Record, error) {
	return m.appended, nil
}

type passthroughTxManager struct {
	calls int
}

func (p *passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.RunInTransactionWithOptions(ctx, tx.DefaultOptions(), fn)
}

func (p *passthroughTxManager) RunInTransactionWithOptions(ctx context.Context, opts tx.Options, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

func newPurchaseFixture() (*Service, *mockPurchaseRepo, *mockStockRepo, *mockAuditRepo, *passthroughTxManager) {
	repo := &mockPurchaseRepo{purchases: make(map[id.ID]*Purchase), lines: make(map[id.ID][]Line)}
	stockRepo := &mockStockRepo{products: make(map[id.ID]stock.ProductSnapshot)}
	auditRepo := &mockAuditRepo{}
	manager := &passthroughTxManager{}
	svc := NewService(repo, stock.NewService(stockRepo), audit.NewAppender(auditRepo), manager)
	return svc, repo, stockRepo, auditRepo, manager
}

func TestCreate_CreditsStock(t *testing.T) {
	svc, repo, stockRepo, auditRepo, manager := newPurchaseFixture()

	screws := id.New()
	stockRepo.products[screws] = stock.ProductSnapshot{ID: screws, Name: "Tornillos", Available: 10}

	doc := NewPurchase(id.New(), id.New())
	doc.AddLine(screws, 500, types.MustMoney("0.25"))

	err := svc.Create(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, types.MustMoney("125").Equal(doc.Total), "total = %s", doc.Total)
	assert.Equal(t, int64(1), doc.Folio)
	assert.Equal(t, int64(510), stockRepo.products[screws].Available, "stock credited")

	require.Len(t, stockRepo.movements, 1)
	mv := stockRepo.movements[0]
	assert.Equal(t, stock.MovementPurchase, mv.MovementType)
	assert.Equal(t, int64(500), mv.Quantity)
	assert.Equal(t, int64(500), mv.Delta)
	require.NotNil(t, mv.ReferenceID)
	assert.Equal(t, doc.ID, *mv.ReferenceID)

	assert.Equal(t, 1, manager.calls)
	require.Len(t, auditRepo.appended, 1)
	assert.Equal(t, "purchases", auditRepo.appended[0].TableName)

	require.Len(t, repo.lines[doc.ID], 1)
}

func TestCreate_NoAvailabilityCheckForIncomingGoods(t *testing.T) {
	svc, _, stockRepo, _, _ := newPurchaseFixture()

	// Zero on hand: a sale would reject, a purchase must not.
	bolts := id.New()
	stockRepo.products[bolts] = stock.ProductSnapshot{ID: bolts, Name: "Pernos", Available: 0}

	doc := NewPurchase(id.New(), id.New())
	doc.AddLine(bolts, 30, types.MustMoney("1.50"))

	require.NoError(t, svc.Create(context.Background(), doc))
	assert.Equal(t, int64(30), stockRepo.products[bolts].Available)
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc, _, _, _, manager := newPurchaseFixture()

	tests := []struct {
		name string
		doc  *Purchase
	}{
		{"no lines", NewPurchase(id.New(), id.New())},
		{"missing supplier", func() *Purchase {
			d := NewPurchase(id.Nil(), id.New())
			d.AddLine(id.New(), 1, types.MustMoney("10"))
			return d
		}()},
		{"negative cost", func() *Purchase {
			d := NewPurchase(id.New(), id.New())
			d.Lines = []Line{{ID: id.New(), LineNo: 1, ProductID: id.New(), Quantity: 1, UnitCost: types.MustMoney("-5")}}
			return d
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(context.Background(), tt.doc)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}

	assert.Equal(t, 0, manager.calls, "validation failures never open a transaction")
}

func TestCreate_UnknownProductFails(t *testing.T) {
	svc, _, _, _, _ := newPurchaseFixture()

	doc := NewPurchase(id.New(), id.New())
	doc.AddLine(id.New(), 5, types.MustMoney("2"))

	err := svc.Create(context.Background(), doc)
	assert.True(t, apperror.IsNotFound(err))
}
