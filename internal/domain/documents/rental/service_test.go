package rental

import (
	"context"
	"testing"
	"time"

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

type mockRentalRepo struct {
	rentals   map[id.ID]*Rental
	lines     map[id.ID][]Line
	nextFolio int64
}

func newMockRentalRepo() *mockRentalRepo {
	return &mockRentalRepo{rentals: make(map[id.ID]*Rental), lines: make(map[id.ID][]Line)}
}

func (m *mockRentalRepo) Create(ctx context.Context, r *Rental) error {
	m.nextFolio++
	r.Folio = m.nextFolio
	cp := *r
	cp.Lines = nil
	m.rentals[r.ID] = &cp
	return nil
}

func (m *mockRentalRepo) SaveLines(ctx context.Context, rentalID id.ID, lines []Line) error {
	m.lines[rentalID] = append([]Line(nil), lines...)
	return nil
}

func (m *mockRentalRepo) GetByID(ctx context.Context, rentalID id.ID) (*Rental, error) {
	r, ok := m.rentals[rentalID]
	if !ok {
		return nil, apperror.NewNotFound("rental", rentalID)
	}
	cp := *r
	return &cp, nil
}

func (m *mockRentalRepo) GetByIDForUpdate(ctx context.Context, rentalID id.ID) (*Rental, error) {
	return m.GetByID(ctx, rentalID)
}

func (m *mockRentalRepo) GetLines(ctx context.Context, rentalID id.ID) ([]Line, error) {
	return m.lines[rentalID], nil
}

func (m *mockRentalRepo) UpdateStatus(ctx context.Context, r *Rental) error {
	stored, ok := m.rentals[r.ID]
	if !ok {
		return apperror.NewNotFound("rental", r.ID)
	}
	stored.Status = r.Status
	stored.ReturnedAt = r.ReturnedAt
	stored.Version++
	r.Version = stored.Version
	return nil
}

func (m *mockRentalRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Rental], error) {
	out := domain.ListResult[*Rental]{}
	for _, r := range m.rentals {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		cp := *r
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

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) RunInTransactionWithOptions(ctx context.Context, opts tx.Options, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newRentalFixture() (*Service, *mockRentalRepo, *mockStockRepo, *mockAuditRepo) {
	repo := newMockRentalRepo()
	stockRepo := &mockStockRepo{products: make(map[id.ID]stock.ProductSnapshot)}
	auditRepo := &mockAuditRepo{}
	svc := NewService(repo, stock.NewService(stockRepo), audit.NewAppender(auditRepo), passthroughTxManager{})
	return svc, repo, stockRepo, auditRepo
}

func rentalPeriod(days int) (time.Time, time.Time) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, days)
}

func TestCreate_DebitsStock(t *testing.T) {
	svc, _, stockRepo, _ := newRentalFixture()

	mixer := id.New()
	stockRepo.products[mixer] = stock.ProductSnapshot{ID: mixer, Name: "Revolvedora", Available: 2}

	start, due := rentalPeriod(3)
	doc := NewRental(id.New(), id.New(), start, due)
	doc.AddLine(mixer, 1, types.MustMoney("350"))

	require.NoError(t, svc.Create(context.Background(), doc))

	assert.Equal(t, StatusActive, doc.Status)
	assert.True(t, types.MustMoney("1050").Equal(doc.Total), "3 days x 350, got %s", doc.Total)
	assert.Equal(t, int64(1), stockRepo.products[mixer].Available)

	require.Len(t, stockRepo.movements, 1)
	assert.Equal(t, stock.MovementRentalOut, stockRepo.movements[0].MovementType)
	assert.Equal(t, int64(-1), stockRepo.movements[0].Delta)
}

func TestCreate_InsufficientStock(t *testing.T) {
	svc, repo, stockRepo, _ := newRentalFixture()

	mixer := id.New()
	stockRepo.products[mixer] = stock.ProductSnapshot{ID: mixer, Name: "Revolvedora", Available: 0}

	start, due := rentalPeriod(1)
	doc := NewRental(id.New(), id.New(), start, due)
	doc.AddLine(mixer, 1, types.MustMoney("350"))

	err := svc.Create(context.Background(), doc)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Empty(t, repo.rentals)
}

func TestReturn_CreditsStockAndClosesRental(t *testing.T) {
	svc, repo, stockRepo, auditRepo := newRentalFixture()

	returnedAt := time.Date(2026, 3, 5, 17, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return returnedAt }

	mixer := id.New()
	ladder := id.New()
	stockRepo.products[mixer] = stock.ProductSnapshot{ID: mixer, Name: "Revolvedora", Available: 2}
	stockRepo.products[ladder] = stock.ProductSnapshot{ID: ladder, Name: "Escalera", Available: 5}

	start, due := rentalPeriod(3)
	doc := NewRental(id.New(), id.New(), start, due)
	doc.AddLine(mixer, 1, types.MustMoney("350"))
	doc.AddLine(ladder, 2, types.MustMoney("80"))
	require.NoError(t, svc.Create(context.Background(), doc))

	got, err := svc.Return(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusReturned, got.Status)
	require.NotNil(t, got.ReturnedAt)
	assert.Equal(t, returnedAt, *got.ReturnedAt)

	assert.Equal(t, int64(2), stockRepo.products[mixer].Available, "mixer back on shelf")
	assert.Equal(t, int64(5), stockRepo.products[ladder].Available, "ladders back on shelf")

	// 2 debits on create + 2 credits on return.
	require.Len(t, stockRepo.movements, 4)
	assert.Equal(t, stock.MovementRentalReturn, stockRepo.movements[2].MovementType)
	assert.Equal(t, int64(1), stockRepo.movements[2].Delta)
	assert.Equal(t, stock.MovementRentalReturn, stockRepo.movements[3].MovementType)
	assert.Equal(t, int64(2), stockRepo.movements[3].Delta)

	assert.Equal(t, StatusReturned, repo.rentals[doc.ID].Status)
	require.Len(t, auditRepo.appended, 2)
	assert.Equal(t, audit.ActionUpdate, auditRepo.appended[1].Action)
}

func TestReturn_AlreadyReturned(t *testing.T) {
	svc, _, stockRepo, _ := newRentalFixture()

	mixer := id.New()
	stockRepo.products[mixer] = stock.ProductSnapshot{ID: mixer, Name: "Revolvedora", Available: 1}

	start, due := rentalPeriod(1)
	doc := NewRental(id.New(), id.New(), start, due)
	doc.AddLine(mixer, 1, types.MustMoney("350"))
	require.NoError(t, svc.Create(context.Background(), doc))

	_, err := svc.Return(context.Background(), doc.ID)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), doc.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRentalNotActive, appErr.Code)

	// The double return must not credit stock twice.
	assert.Equal(t, int64(1), stockRepo.products[mixer].Available)
}

func TestReturn_UnknownRental(t *testing.T) {
	svc, _, _, _ := newRentalFixture()

	_, err := svc.Return(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestAddLine_MinimumOneDayCharge(t *testing.T) {
	start, _ := rentalPeriod(0)
	doc := NewRental(id.New(), id.New(), start, start)
	doc.AddLine(id.New(), 2, types.MustMoney("100"))

	assert.True(t, types.MustMoney("200").Equal(doc.Total), "same-day rental charges one day, got %s", doc.Total)
}
