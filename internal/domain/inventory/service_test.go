package inventory

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distrisur/internal/core/apperror"
	"distrisur/internal/core/id"
	"distrisur/internal/core/types"
	"distrisur/internal/domain/catalogs/product"
	"distrisur/internal/domain/catalogs/warehouse"
)

// --- fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLedgerRepo struct {
	batches []*Batch
	entries []Transaction
	low     []LowStockItem
}

func (r *fakeLedgerRepo) find(key BatchKey) *Batch {
	for _, b := range r.batches {
		if b.Key() == key {
			return b
		}
	}
	return nil
}

func (r *fakeLedgerRepo) UpsertBatch(_ context.Context, key BatchKey, quantity int64, expiration *time.Time) (*Batch, error) {
	if b := r.find(key); b != nil {
		b.Quantity += quantity
		b.UpdatedAt = time.Now().UTC()
		return b, nil
	}
	now := time.Now().UTC()
	b := &Batch{
		ID:             id.New(),
		ProductID:      key.ProductID,
		WarehouseID:    key.WarehouseID,
		BatchNumber:    key.BatchNumber,
		LocationZone:   key.LocationZone,
		Quantity:       quantity,
		ExpirationDate: expiration,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.batches = append(r.batches, b)
	return b, nil
}

func (r *fakeLedgerRepo) matching(productID id.ID, filter BatchFilter) []*Batch {
	var out []*Batch
	for _, b := range r.batches {
		if b.ProductID != productID {
			continue
		}
		if filter.WarehouseID != nil && b.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.BatchNumber != nil && b.BatchNumber != *filter.BatchNumber {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (r *fakeLedgerRepo) LockBatchesForAllocation(_ context.Context, productID id.ID, filter BatchFilter) ([]*Batch, error) {
	var out []*Batch
	for _, b := range r.matching(productID, filter) {
		if b.Quantity > 0 {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ExpirationDate == nil && b.ExpirationDate == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ExpirationDate == nil:
			return false
		case b.ExpirationDate == nil:
			return true
		case a.ExpirationDate.Equal(*b.ExpirationDate):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ExpirationDate.Before(*b.ExpirationDate)
		}
	})
	return out, nil
}

func (r *fakeLedgerRepo) LockExactBatch(_ context.Context, key BatchKey) (*Batch, error) {
	if b := r.find(key); b != nil {
		return b, nil
	}
	return nil, apperror.NewNotFound("batch", key.BatchNumber)
}

func (r *fakeLedgerRepo) DeductBatch(_ context.Context, batchID id.ID, quantity int64) error {
	for _, b := range r.batches {
		if b.ID == batchID {
			if b.Quantity < quantity {
				return apperror.NewConflict("batch quantity changed concurrently")
			}
			b.Quantity -= quantity
			return nil
		}
	}
	return apperror.NewNotFound("batch", batchID)
}

func (r *fakeLedgerRepo) TotalAvailable(_ context.Context, productID id.ID, filter BatchFilter) (int64, error) {
	var total int64
	for _, b := range r.matching(productID, filter) {
		total += b.Quantity
	}
	return total, nil
}

func (r *fakeLedgerRepo) ListBatchesByProduct(_ context.Context, productID id.ID) ([]*Batch, error) {
	return r.matching(productID, BatchFilter{}), nil
}

func (r *fakeLedgerRepo) ListActiveBatches(_ context.Context, warehouseID *id.ID) ([]*Batch, error) {
	var out []*Batch
	for _, b := range r.batches {
		if b.Quantity <= 0 {
			continue
		}
		if warehouseID != nil && b.WarehouseID != *warehouseID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeLedgerRepo) LowStockItems(_ context.Context, _ int64) ([]LowStockItem, error) {
	return r.low, nil
}

func (r *fakeLedgerRepo) AppendTransactions(_ context.Context, txs []Transaction) error {
	r.entries = append(r.entries, txs...)
	return nil
}

func (r *fakeLedgerRepo) ListTransactions(_ context.Context, productID id.ID, filter TransactionFilter) ([]Transaction, error) {
	var out []Transaction
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.ProductID != productID {
			continue
		}
		if filter.Type != nil && e.Type != *filter.Type {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeLedgerRepo) entriesOfType(txType TransactionType) []Transaction {
	var out []Transaction
	for _, e := range r.entries {
		if e.Type == txType {
			out = append(out, e)
		}
	}
	return out
}

type fakeProductRepo struct {
	products map[id.ID]*product.Product
}

func (r *fakeProductRepo) Create(_ context.Context, p *product.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *product.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	if p, ok := r.products[productID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", productID)
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*product.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", sku)
}

func (r *fakeProductRepo) List(_ context.Context, _ product.ListFilter) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

type fakeWarehouseRepo struct {
	warehouses []*warehouse.Warehouse
}

func (r *fakeWarehouseRepo) Create(_ context.Context, w *warehouse.Warehouse) error {
	r.warehouses = append(r.warehouses, w)
	return nil
}

func (r *fakeWarehouseRepo) GetByID(_ context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	for _, w := range r.warehouses {
		if w.ID == warehouseID {
			return w, nil
		}
	}
	return nil, apperror.NewNotFound("warehouse", warehouseID)
}

func (r *fakeWarehouseRepo) List(_ context.Context) ([]*warehouse.Warehouse, error) {
	return r.warehouses, nil
}

func (r *fakeWarehouseRepo) FirstByType(_ context.Context, whType warehouse.Type) (*warehouse.Warehouse, error) {
	for _, w := range r.warehouses {
		if w.Type == whType {
			return w, nil
		}
	}
	return nil, apperror.NewNotFound("warehouse", string(whType))
}

func (r *fakeWarehouseRepo) EnsureDepot(_ context.Context, name string) (*warehouse.Warehouse, error) {
	w := warehouse.NewWarehouse(name, warehouse.TypeDepot)
	r.warehouses = append(r.warehouses, w)
	return w, nil
}

type fakeNotifier struct {
	alerts chan []LowStockItem
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{alerts: make(chan []LowStockItem, 8)}
}

func (n *fakeNotifier) SendLowStockAlert(_ context.Context, items []LowStockItem) error {
	n.alerts <- items
	return nil
}

func (n *fakeNotifier) SendAlert(_ context.Context, _ string) error { return nil }

func (n *fakeNotifier) waitAlert(t *testing.T) []LowStockItem {
	t.Helper()
	select {
	case items := <-n.alerts:
		return items
	case <-time.After(time.Second):
		t.Fatal("expected a low stock alert, none arrived")
		return nil
	}
}

func (n *fakeNotifier) assertSilent(t *testing.T) {
	t.Helper()
	select {
	case items := <-n.alerts:
		t.Fatalf("unexpected alert: %v", items)
	case <-time.After(50 * time.Millisecond):
	}
}

// --- test fixture ---

type fixture struct {
	svc      *Service
	repo     *fakeLedgerRepo
	products *fakeProductRepo
	notifier *fakeNotifier

	productID   id.ID
	warehouseID id.ID
}

func newFixture(t *testing.T, threshold int64) *fixture {
	t.Helper()

	repo := &fakeLedgerRepo{}
	products := &fakeProductRepo{products: map[id.ID]*product.Product{}}
	notifier := newFakeNotifier()

	wh := warehouse.NewWarehouse("Depósito Central", warehouse.TypeDepot)
	whRepo := &fakeWarehouseRepo{warehouses: []*warehouse.Warehouse{wh}}

	p := product.NewProduct("AGUA-500", "Agua Mineral 500ml", types.MustMoney("350.00"))
	products.products[p.ID] = p

	svc := NewService(repo, products, warehouse.NewService(whRepo), fakeTxManager{}, notifier, threshold)

	return &fixture{
		svc:         svc,
		repo:        repo,
		products:    products,
		notifier:    notifier,
		productID:   p.ID,
		warehouseID: wh.ID,
	}
}

// addBatch seeds a batch with an explicit creation time so FEFO tie-breaks
// are deterministic.
func (f *fixture) addBatch(number, zone string, quantity int64, expiration *time.Time, createdAt time.Time) *Batch {
	b := &Batch{
		ID:             id.New(),
		ProductID:      f.productID,
		WarehouseID:    f.warehouseID,
		BatchNumber:    number,
		LocationZone:   zone,
		Quantity:       quantity,
		ExpirationDate: expiration,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	f.repo.batches = append(f.repo.batches, b)
	return b
}

func inDays(n int) *time.Time {
	d := time.Now().UTC().Add(time.Duration(n) * 24 * time.Hour)
	return &d
}

// --- Receive ---

func TestReceive_CreatesBatchAndLedgerEntry(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	batch, err := f.svc.Receive(ctx, ReceiveInput{
		ProductID:      f.productID,
		WarehouseID:    &f.warehouseID,
		BatchNumber:    "L-001",
		LocationZone:   "A1",
		Quantity:       100,
		ExpirationDate: inDays(90),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), batch.Quantity)
	assert.NotNil(t, batch.ExpirationDate)

	require.Len(t, f.repo.entries, 1)
	entry := f.repo.entries[0]
	assert.Equal(t, TypePurchaseReceipt, entry.Type)
	assert.Equal(t, int64(100), entry.Quantity)
}

func TestReceive_SameKeyAccumulates(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	in := ReceiveInput{
		ProductID:    f.productID,
		WarehouseID:  &f.warehouseID,
		BatchNumber:  "L-001",
		LocationZone: "A1",
		Quantity:     60,
	}

	_, err := f.svc.Receive(ctx, in)
	require.NoError(t, err)
	batch, err := f.svc.Receive(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, int64(120), batch.Quantity)
	assert.Len(t, f.repo.batches, 1)
	assert.Len(t, f.repo.entries, 2)
}

func TestReceive_Validation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.svc.Receive(ctx, ReceiveInput{
		ProductID: f.productID, BatchNumber: "L-001", LocationZone: "A1", Quantity: 0,
	})
	assert.Error(t, err)

	_, err = f.svc.Receive(ctx, ReceiveInput{
		ProductID: f.productID, BatchNumber: "", LocationZone: "A1", Quantity: 5,
	})
	assert.Error(t, err)

	_, err = f.svc.Receive(ctx, ReceiveInput{
		ProductID: id.New(), BatchNumber: "L-001", LocationZone: "A1", Quantity: 5,
	})
	assert.True(t, apperror.IsNotFound(err))
}

// --- Allocate ---

func TestAllocate_FollowsFEFOAcrossBatches(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	base := time.Now().UTC()

	// Insertion order is deliberately not FEFO order.
	noExpiry := f.addBatch("L-C", "A1", 50, nil, base)
	late := f.addBatch("L-B", "A1", 30, inDays(10), base.Add(time.Second))
	early := f.addBatch("L-A", "A1", 20, inDays(5), base.Add(2*time.Second))

	res, err := f.svc.Allocate(ctx, f.productID, 60, BatchFilter{}, TypeSaleDeduction, "sale POS-000001")
	require.NoError(t, err)

	require.Len(t, res.Deductions, 3)
	assert.Equal(t, early.ID, res.Deductions[0].BatchID)
	assert.Equal(t, int64(20), res.Deductions[0].Quantity)
	assert.Equal(t, late.ID, res.Deductions[1].BatchID)
	assert.Equal(t, int64(30), res.Deductions[1].Quantity)
	assert.Equal(t, noExpiry.ID, res.Deductions[2].BatchID)
	assert.Equal(t, int64(10), res.Deductions[2].Quantity)

	assert.Equal(t, int64(100), res.TotalBefore)
	assert.Equal(t, int64(40), res.TotalAfter)

	assert.Equal(t, int64(0), early.Quantity)
	assert.Equal(t, int64(0), late.Quantity)
	assert.Equal(t, int64(40), noExpiry.Quantity)

	// One negative ledger entry per batch touched.
	entries := f.repo.entriesOfType(TypeSaleDeduction)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(-20), entries[0].Quantity)
	assert.Equal(t, int64(-30), entries[1].Quantity)
	assert.Equal(t, int64(-10), entries[2].Quantity)
	assert.Equal(t, "sale POS-000001", entries[0].ReferenceID)
}

func TestAllocate_CreationTimeBreaksTies(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	base := time.Now().UTC()

	older := f.addBatch("L-OLD", "A1", 10, nil, base)
	newer := f.addBatch("L-NEW", "A1", 10, nil, base.Add(time.Minute))

	res, err := f.svc.Allocate(ctx, f.productID, 5, BatchFilter{}, TypeSaleDeduction, "ref")
	require.NoError(t, err)

	require.Len(t, res.Deductions, 1)
	assert.Equal(t, older.ID, res.Deductions[0].BatchID)
	assert.Equal(t, int64(5), older.Quantity)
	assert.Equal(t, int64(10), newer.Quantity)
}

func TestAllocate_InsufficientStockLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	f.addBatch("L-A", "A1", 20, inDays(5), time.Now().UTC())
	f.addBatch("L-B", "A1", 10, inDays(10), time.Now().UTC())

	_, err := f.svc.Allocate(ctx, f.productID, 31, BatchFilter{}, TypeSaleDeduction, "ref")
	require.True(t, apperror.IsInsufficientStock(err))

	for _, b := range f.repo.batches {
		assert.Positive(t, b.Quantity)
	}
	assert.Empty(t, f.repo.entries)
}

func TestAllocate_RejectsInvalidType(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.svc.Allocate(context.Background(), f.productID, 1, BatchFilter{}, TypeTransfer, "ref")
	assert.Error(t, err)
}

func TestAllocate_WarehouseFilterScopesBatches(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	otherWh := id.New()

	f.addBatch("L-A", "A1", 5, nil, time.Now().UTC())
	other := &Batch{
		ID: id.New(), ProductID: f.productID, WarehouseID: otherWh,
		BatchNumber: "L-X", LocationZone: "A1", Quantity: 100,
		CreatedAt: time.Now().UTC(),
	}
	f.repo.batches = append(f.repo.batches, other)

	_, err := f.svc.Allocate(ctx, f.productID, 10, BatchFilter{WarehouseID: &f.warehouseID}, TypeSaleDeduction, "ref")
	assert.True(t, apperror.IsInsufficientStock(err))
}

// --- Adjust ---

func TestAdjust_PositiveLandsInPseudoBatch(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	f.addBatch("L-A", "A1", 10, nil, time.Now().UTC())

	res, err := f.svc.Adjust(ctx, AdjustInput{
		ProductID:   f.productID,
		Delta:       15,
		Reason:      ReasonConteo,
		Notes:       "cycle count week 34",
		WarehouseID: &f.warehouseID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.Adjustment)
	assert.Equal(t, int64(25), res.CurrentStock)

	adj := f.repo.find(BatchKey{
		ProductID:    f.productID,
		WarehouseID:  f.warehouseID,
		BatchNumber:  AdjustLocationZone,
		LocationZone: AdjustLocationZone,
	})
	require.NotNil(t, adj)
	assert.Equal(t, int64(15), adj.Quantity)
	assert.Nil(t, adj.ExpirationDate)

	entries := f.repo.entriesOfType(TypeAdjustment)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(15), entries[0].Quantity)
	assert.Equal(t, "CONTEO: cycle count week 34", entries[0].ReferenceID)
}

func TestAdjust_NegativeFollowsFEFO(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	base := time.Now().UTC()

	early := f.addBatch("L-A", "A1", 8, inDays(3), base)
	late := f.addBatch("L-B", "A1", 8, inDays(30), base)

	res, err := f.svc.Adjust(ctx, AdjustInput{
		ProductID: f.productID,
		Delta:     -10,
		Reason:    ReasonRotura,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-10), res.Adjustment)
	assert.Equal(t, int64(6), res.CurrentStock)

	assert.Equal(t, int64(0), early.Quantity)
	assert.Equal(t, int64(6), late.Quantity)

	entries := f.repo.entriesOfType(TypeAdjustment)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].ID, res.TransactionID)
}

func TestAdjust_Validation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.svc.Adjust(ctx, AdjustInput{ProductID: f.productID, Delta: 0, Reason: ReasonOtro})
	assert.Error(t, err)

	_, err = f.svc.Adjust(ctx, AdjustInput{ProductID: f.productID, Delta: 1, Reason: "BECAUSE"})
	assert.Error(t, err)
}

// --- Transfer ---

func TestTransfer_PreservesExpiration(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	exp := inDays(45)

	source := f.addBatch("L-A", "A1", 40, exp, time.Now().UTC())

	err := f.svc.Transfer(ctx, TransferInput{
		ProductID:       f.productID,
		Quantity:        15,
		BatchNumber:     "L-A",
		FromZone:        "A1",
		ToZone:          "B2",
		FromWarehouseID: &f.warehouseID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(25), source.Quantity)

	dest := f.repo.find(BatchKey{
		ProductID:    f.productID,
		WarehouseID:  f.warehouseID,
		BatchNumber:  "L-A",
		LocationZone: "B2",
	})
	require.NotNil(t, dest)
	assert.Equal(t, int64(15), dest.Quantity)
	require.NotNil(t, dest.ExpirationDate)
	assert.True(t, dest.ExpirationDate.Equal(*exp))

	entries := f.repo.entriesOfType(TypeTransfer)
	require.Len(t, entries, 1)
	assert.Equal(t, "A1 -> B2", entries[0].ReferenceID)
}

func TestTransfer_ShortSourceFails(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	f.addBatch("L-A", "A1", 5, nil, time.Now().UTC())

	err := f.svc.Transfer(ctx, TransferInput{
		ProductID:       f.productID,
		Quantity:        6,
		BatchNumber:     "L-A",
		FromZone:        "A1",
		ToZone:          "B2",
		FromWarehouseID: &f.warehouseID,
	})
	assert.True(t, apperror.IsInsufficientStock(err))

	// Missing source batch reads the same as a short one.
	err = f.svc.Transfer(ctx, TransferInput{
		ProductID:       f.productID,
		Quantity:        1,
		BatchNumber:     "NOPE",
		FromZone:        "A1",
		ToZone:          "B2",
		FromWarehouseID: &f.warehouseID,
	})
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestTransfer_SameLocationRejected(t *testing.T) {
	f := newFixture(t, 0)

	err := f.svc.Transfer(context.Background(), TransferInput{
		ProductID:       f.productID,
		Quantity:        1,
		BatchNumber:     "L-A",
		FromZone:        "A1",
		ToZone:          "A1",
		FromWarehouseID: &f.warehouseID,
		ToWarehouseID:   &f.warehouseID,
	})
	assert.Error(t, err)
}

// --- Restore ---

func TestRestore_UsesReturnPseudoBatch(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	batch, err := f.svc.Restore(ctx, f.productID, &f.warehouseID, 3, "void POS-000007: damaged")
	require.NoError(t, err)

	assert.Equal(t, ReturnBatchNumber, batch.BatchNumber)
	assert.Equal(t, ReturnLocationZone, batch.LocationZone)
	assert.Equal(t, int64(3), batch.Quantity)
	assert.Nil(t, batch.ExpirationDate)

	entries := f.repo.entriesOfType(TypeReturn)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].Quantity)
	assert.Equal(t, "void POS-000007: damaged", entries[0].ReferenceID)
}

// --- Low-stock alerting ---

func TestLowStockAlert_FiresOnlyOnCrossing(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	f.addBatch("L-A", "A1", 12, nil, time.Now().UTC())

	// 12 -> 9 crosses the threshold.
	res, err := f.svc.Allocate(ctx, f.productID, 3, BatchFilter{}, TypeSaleDeduction, "ref")
	require.NoError(t, err)
	f.svc.EmitLowStockAlert(ctx, res)

	items := f.notifier.waitAlert(t)
	require.Len(t, items, 1)
	assert.Equal(t, f.productID, items[0].ProductID)
	assert.Equal(t, "AGUA-500", items[0].SKU)
	assert.Equal(t, int64(9), items[0].Quantity)

	// 9 -> 7 stays below: already alerted, stay silent.
	res, err = f.svc.Allocate(ctx, f.productID, 2, BatchFilter{}, TypeSaleDeduction, "ref")
	require.NoError(t, err)
	f.svc.EmitLowStockAlert(ctx, res)

	f.notifier.assertSilent(t)
}

func TestLowStockAlert_NotFiredAboveThreshold(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	f.addBatch("L-A", "A1", 50, nil, time.Now().UTC())

	res, err := f.svc.Allocate(ctx, f.productID, 5, BatchFilter{}, TypeSaleDeduction, "ref")
	require.NoError(t, err)
	f.svc.EmitLowStockAlert(ctx, res)

	f.notifier.assertSilent(t)
}

func TestCrossedThreshold(t *testing.T) {
	tests := []struct {
		name    string
		before  int64
		after   int64
		crossed bool
	}{
		{"crosses", 12, 9, true},
		{"lands exactly on threshold", 12, 10, false},
		{"already below", 9, 7, false},
		{"stays above", 50, 45, false},
		{"from threshold to below", 10, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &AllocationResult{TotalBefore: tt.before, TotalAfter: tt.after}
			assert.Equal(t, tt.crossed, r.CrossedThreshold(10))
		})
	}
}

// --- Expiration ---

func TestIsProductFullyExpired(t *testing.T) {
	ctx := context.Background()
	yesterday := inDays(-1)

	t.Run("all stock expired", func(t *testing.T) {
		f := newFixture(t, 0)
		f.addBatch("L-A", "A1", 10, yesterday, time.Now().UTC())
		f.addBatch("L-B", "A1", 5, inDays(-30), time.Now().UTC())

		expired, err := f.svc.IsProductFullyExpired(ctx, f.productID)
		require.NoError(t, err)
		assert.True(t, expired)
	})

	t.Run("one fresh batch is enough", func(t *testing.T) {
		f := newFixture(t, 0)
		f.addBatch("L-A", "A1", 10, yesterday, time.Now().UTC())
		f.addBatch("L-B", "A1", 1, inDays(30), time.Now().UTC())

		expired, err := f.svc.IsProductFullyExpired(ctx, f.productID)
		require.NoError(t, err)
		assert.False(t, expired)
	})

	t.Run("no expiration date never expires", func(t *testing.T) {
		f := newFixture(t, 0)
		f.addBatch("L-A", "A1", 10, nil, time.Now().UTC())

		expired, err := f.svc.IsProductFullyExpired(ctx, f.productID)
		require.NoError(t, err)
		assert.False(t, expired)
	})

	t.Run("no stock at all is not expired", func(t *testing.T) {
		f := newFixture(t, 0)

		expired, err := f.svc.IsProductFullyExpired(ctx, f.productID)
		require.NoError(t, err)
		assert.False(t, expired)
	})

	t.Run("emptied expired batches are ignored", func(t *testing.T) {
		f := newFixture(t, 0)
		f.addBatch("L-A", "A1", 0, yesterday, time.Now().UTC())
		f.addBatch("L-B", "A1", 10, inDays(30), time.Now().UTC())

		expired, err := f.svc.IsProductFullyExpired(ctx, f.productID)
		require.NoError(t, err)
		assert.False(t, expired)
	})
}

func TestExpiringItems_WindowFiltering(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	f.addBatch("L-EXPIRED", "A1", 5, inDays(-1), time.Now().UTC())
	inWindow := f.addBatch("L-SOON", "A1", 5, inDays(10), time.Now().UTC())
	f.addBatch("L-LATER", "A1", 5, inDays(90), time.Now().UTC())
	f.addBatch("L-NEVER", "A1", 5, nil, time.Now().UTC())

	items, err := f.svc.ExpiringItems(ctx, 30)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, inWindow.ID, items[0].BatchID)
	require.NotNil(t, items[0].DaysUntilExpiry)
}

func TestExpiredItems(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	expired := f.addBatch("L-OLD", "A1", 5, inDays(-3), time.Now().UTC())
	f.addBatch("L-FRESH", "A1", 5, inDays(3), time.Now().UTC())

	items, err := f.svc.ExpiredItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, expired.ID, items[0].BatchID)
	assert.Equal(t, StatusExpired, items[0].Status)
	require.NotNil(t, items[0].DaysExpired)
}

// --- Stock view ---

func TestStock_SumsBatches(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	f.addBatch("L-A", "A1", 30, nil, time.Now().UTC())
	f.addBatch("L-B", "B2", 12, nil, time.Now().UTC())
	f.addBatch("L-EMPTY", "A1", 0, nil, time.Now().UTC())

	snapshot, err := f.svc.Stock(ctx, f.productID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), snapshot.Total)
	assert.Len(t, snapshot.Batches, 3)
}
