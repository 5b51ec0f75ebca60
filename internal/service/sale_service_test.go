package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tallypos/internal/dto"
	"tallypos/internal/model"
	"tallypos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory ProductRepository stub ─────────────────────────────────────────
// DeductStockTx mirrors the production primitive: the availability check and
// the decrement happen under one lock, so concurrent callers serialize exactly
// like they would on the database row lock.

type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(p)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) DeductStockTx(_ *gorm.DB, id uuid.UUID, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if p.StockOnHand < qty {
		return 0, repository.ErrStockConflict
	}
	p.StockOnHand -= qty
	return p.StockOnHand, nil
}

func (r *stubProductRepo) RestoreStockTx(_ *gorm.DB, id uuid.UUID, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	p.StockOnHand += qty
	return p.StockOnHand, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].StockOnHand
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── In-memory SaleRepository stub ────────────────────────────────────────────

type stubSaleRepo struct {
	mu       sync.Mutex
	sales    map[uuid.UUID]*model.SaleTransaction
	byNumber map[string]uuid.UUID
	seqs     map[uuid.UUID]int64
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{
		sales:    make(map[uuid.UUID]*model.SaleTransaction),
		byNumber: make(map[string]uuid.UUID),
		seqs:     make(map[uuid.UUID]int64),
	}
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.SaleTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.sales[s.ID] = &clone
	r.byNumber[s.Number] = s.ID
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SaleTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubSaleRepo) FindByNumber(_ context.Context, number string) (*model.SaleTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *r.sales[id]
	return &clone, nil
}

func (r *stubSaleRepo) UpdateVoidTx(_ *gorm.DB, s *model.SaleTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sales[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// Check and flip under one lock, like the conditional UPDATE.
	if stored.Status != model.SaleStatusCompleted {
		return repository.ErrVoidConflict
	}
	stored.Status = s.Status
	stored.VoidedBy = s.VoidedBy
	stored.VoidReason = s.VoidReason
	stored.VoidedAt = s.VoidedAt
	return nil
}

func (r *stubSaleRepo) NextNumberTx(_ context.Context, _ *gorm.DB, terminalID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs[terminalID]++
	return r.seqs[terminalID], nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sales)
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Terminal / customer / movement stubs ─────────────────────────────────────

type stubTerminalRepo struct {
	terminals map[uuid.UUID]*model.Terminal
}

func newStubTerminalRepo() *stubTerminalRepo {
	return &stubTerminalRepo{terminals: make(map[uuid.UUID]*model.Terminal)}
}

func (r *stubTerminalRepo) add(code string, active bool) *model.Terminal {
	t := &model.Terminal{ID: uuid.New(), Code: code, Name: "Register " + code, Active: active}
	r.terminals[t.ID] = t
	return t
}

func (r *stubTerminalRepo) Create(_ context.Context, t *model.Terminal) error {
	r.terminals[t.ID] = t
	return nil
}

func (r *stubTerminalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Terminal, error) {
	t, ok := r.terminals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTerminalRepo) FindByCode(_ context.Context, code string) (*model.Terminal, error) {
	for _, t := range r.terminals {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.TerminalRepository = (*stubTerminalRepo)(nil)

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) byProduct(id uuid.UUID) []model.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == id {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// declineGateway rejects every electronic tender.
type declineGateway struct{}

func (declineGateway) Authorize(context.Context, string, decimal.Decimal, string) error {
	return errors.New("card declined")
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type saleFixture struct {
	svc       SaleService
	products  *stubProductRepo
	sales     *stubSaleRepo
	terminals *stubTerminalRepo
	customers *stubCustomerRepo
	movements *stubMovementRepo
	terminal  *model.Terminal
	cashierID uuid.UUID
}

func newSaleFixture(gateway PaymentGateway) *saleFixture {
	products := newStubProductRepo()
	sales := newStubSaleRepo()
	terminals := newStubTerminalRepo()
	customers := newStubCustomerRepo()
	movements := &stubMovementRepo{}
	stock := NewStockService(products, movements)

	return &saleFixture{
		svc:       NewSaleService(sales, products, terminals, customers, stock, gateway, nil),
		products:  products,
		sales:     sales,
		terminals: terminals,
		customers: customers,
		movements: movements,
		terminal:  terminals.add("01", true),
		cashierID: uuid.New(),
	}
}

func (f *saleFixture) addProduct(name string, price, taxRate string, stock int) *model.Product {
	return f.products.add(&model.Product{
		SKU:         "SKU-" + name,
		Name:        name,
		UnitPrice:   d(price),
		TaxRatePct:  d(taxRate),
		StockOnHand: stock,
		Active:      true,
	})
}

func saleReq(terminalID uuid.UUID, items []dto.SaleItemRequest, tenders []dto.TenderRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		TerminalID: terminalID.String(),
		Items:      items,
		Tenders:    tenders,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreateSale_TotalsNumberAndChange(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "25.00", "10", 5)

	resp, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 2, Discount: d("5.00")}},
		[]dto.TenderRequest{cashTender("49.50", "50.00")},
	))
	require.NoError(t, err)

	assert.Equal(t, "T01-000001", resp.Number)
	assert.Equal(t, model.SaleStatusCompleted, resp.Status)
	assert.True(t, resp.Subtotal.Equal(d("50.00")), "subtotal = %s", resp.Subtotal)
	assert.True(t, resp.TaxTotal.Equal(d("4.50")))
	assert.True(t, resp.DiscountTotal.Equal(d("5.00")))
	assert.True(t, resp.GrandTotal.Equal(d("49.50")))

	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].LineTotal.Equal(d("49.50")))
	assert.True(t, resp.Items[0].UnitPrice.Equal(d("25.00")))

	require.Len(t, resp.Tenders, 1)
	require.NotNil(t, resp.Tenders[0].ChangeGiven)
	assert.True(t, resp.Tenders[0].ChangeGiven.Equal(d("0.50")))

	// Stock deducted and one ledger row written.
	assert.Equal(t, 3, f.products.stock(p.ID))
	movs := f.movements.byProduct(p.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, "sale", movs[0].Type)
	assert.Equal(t, -2, movs[0].Quantity)
	assert.Equal(t, 5, movs[0].StockBefore)
	assert.Equal(t, 3, movs[0].StockAfter)
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Scarce", "10.00", "0", 1)

	_, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 2}},
		[]dto.TenderRequest{cashTender("20.00", "20.00")},
	))

	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, p.ID, noStock.ProductID)
	assert.Equal(t, 1, noStock.Available)
	assert.Equal(t, 2, noStock.Requested)

	assert.Equal(t, 0, f.sales.count(), "failed sale must not be persisted")
	assert.Equal(t, 1, f.products.stock(p.ID), "conditional deduct must not fire")
}

func TestCreateSale_SecondItemFailureLeavesNoTransaction(t *testing.T) {
	f := newSaleFixture(nil)
	a := f.addProduct("Plenty", "2.00", "0", 5)
	b := f.addProduct("Scarce", "3.00", "0", 3)

	_, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{
			{ProductID: a.ID.String(), Quantity: 2},
			{ProductID: b.ID.String(), Quantity: 10},
		},
		[]dto.TenderRequest{cashTender("34.00", "34.00")},
	))

	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	assert.Equal(t, b.ID, noStock.ProductID)
	assert.Equal(t, 0, f.sales.count())
}

func TestCreateSale_AmountMismatch(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Gadget", "22.25", "0", 10)

	// total 44.50, tendered 40.00
	_, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 2}},
		[]dto.TenderRequest{cashTender("40.00", "40.00")},
	))

	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Expected.Equal(d("44.50")))
	assert.Equal(t, 0, f.sales.count())
}

func TestCreateSale_InactiveProduct(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Retired", "5.00", "0", 10)
	p.Active = false

	_, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		[]dto.TenderRequest{cashTender("5.00", "5.00")},
	))

	var inactive *ProductInactiveError
	require.ErrorAs(t, err, &inactive)
	assert.Equal(t, 10, f.products.stock(p.ID))
}

func TestCreateSale_TerminalValidation(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "5.00", "0", 10)
	items := []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}}
	tenders := []dto.TenderRequest{cashTender("5.00", "5.00")}

	_, err := f.svc.Create(context.Background(), f.cashierID, saleReq(uuid.New(), items, tenders))
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "terminal", notFound.Kind)

	disabled := f.terminals.add("99", false)
	_, err = f.svc.Create(context.Background(), f.cashierID, saleReq(disabled.ID, items, tenders))
	var invalid *InvalidRequestError
	require.ErrorAs(t, err, &invalid)
}

func TestCreateSale_GatewayDeclineConsumesNoNumber(t *testing.T) {
	f := newSaleFixture(declineGateway{})
	p := f.addProduct("Widget", "10.00", "0", 5)

	_, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		[]dto.TenderRequest{cardTender("10.00", "4242")},
	))
	var declined *PaymentAuthError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, model.TenderCard, declined.Method)
	assert.Equal(t, 5, f.products.stock(p.ID))

	// The decline happened before the unit of work — the next sale still gets
	// the first number on this terminal.
	resp, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		[]dto.TenderRequest{cashTender("10.00", "10.00")},
	))
	require.NoError(t, err)
	assert.Equal(t, "T01-000001", resp.Number)
}

func TestCreateSale_NumbersMonotonicPerTerminal(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "1.00", "0", 100)
	other := f.terminals.add("02", true)

	for i, want := range []string{"T01-000001", "T01-000002", "T01-000003"} {
		resp, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
			[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
			[]dto.TenderRequest{cashTender("1.00", "1.00")},
		))
		require.NoError(t, err, "sale %d", i)
		assert.Equal(t, want, resp.Number)
	}

	resp, err := f.svc.Create(context.Background(), f.cashierID, saleReq(other.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		[]dto.TenderRequest{cashTender("1.00", "1.00")},
	))
	require.NoError(t, err)
	assert.Equal(t, "T02-000001", resp.Number, "terminals have independent sequences")
}

func TestCreateSale_ConcurrentLastUnit(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("LastOne", "9.99", "0", 1)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
				[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
				[]dto.TenderRequest{cashTender("9.99", "9.99")},
			))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, stockFailures int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var noStock *InsufficientStockError
		require.ErrorAs(t, err, &noStock)
		stockFailures++
	}
	assert.Equal(t, 1, successes, "exactly one sale wins the last unit")
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, f.products.stock(p.ID))
	assert.Equal(t, 1, f.sales.count())
}

func TestCreateSale_SnapshotSurvivesCatalogChange(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "25.00", "10", 5)

	resp, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		[]dto.TenderRequest{cashTender("27.50", "27.50")},
	))
	require.NoError(t, err)

	// Reprice and rename after the sale.
	p.UnitPrice = d("99.00")
	p.Name = "Widget v2"

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	got, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(d("25.00")), "snapshot price must not follow the catalog")
	assert.Equal(t, "Widget", got.Items[0].Name)
	assert.True(t, got.GrandTotal.Equal(d("27.50")))
}

// ── Void ─────────────────────────────────────────────────────────────────────

func createCompletedSale(t *testing.T, f *saleFixture, p *model.Product, qty int, total string) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.cashierID, saleReq(f.terminal.ID,
		[]dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: qty}},
		[]dto.TenderRequest{cashTender(total, total)},
	))
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

func TestVoidSale_RestoresExactQuantityAdditively(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "10.00", "0", 5)
	saleID := createCompletedSale(t, f, p, 2, "20.00")
	require.Equal(t, 3, f.products.stock(p.ID))

	// Interim manual correction: shrink stock by one. The void must still add
	// back exactly what the sale took, not recompute from a snapshot.
	_, err := f.products.DeductStockTx(nil, p.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 2, f.products.stock(p.ID))

	actor := uuid.New()
	require.NoError(t, f.svc.Void(context.Background(), saleID, actor, "customer returned order"))
	assert.Equal(t, 4, f.products.stock(p.ID))

	got, err := f.svc.GetByID(context.Background(), saleID)
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusVoided, got.Status)
	require.NotNil(t, got.VoidReason)
	assert.Equal(t, "customer returned order", *got.VoidReason)
	assert.NotNil(t, got.VoidedAt)

	// Ledger: one deduction, one interim-free restore.
	movs := f.movements.byProduct(p.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, "void_restore", movs[1].Type)
	assert.Equal(t, 2, movs[1].Quantity)
}

func TestVoidSale_PreservesItemsAndPayments(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "10.00", "0", 5)
	saleID := createCompletedSale(t, f, p, 1, "10.00")

	require.NoError(t, f.svc.Void(context.Background(), saleID, uuid.New(), "mischarge"))

	got, err := f.svc.GetByID(context.Background(), saleID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1, "void keeps the historical lines")
	assert.Len(t, got.Tenders, 1, "void keeps the recorded payments")
	assert.True(t, got.GrandTotal.Equal(d("10.00")), "totals are not rewritten")
}

func TestVoidSale_DoubleVoidRejected(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "10.00", "0", 5)
	saleID := createCompletedSale(t, f, p, 1, "10.00")

	require.NoError(t, f.svc.Void(context.Background(), saleID, uuid.New(), "first void"))

	err := f.svc.Void(context.Background(), saleID, uuid.New(), "second void")
	var badTransit *InvalidStateTransitionError
	require.ErrorAs(t, err, &badTransit)
	assert.Equal(t, model.SaleStatusVoided, badTransit.From)

	// Stock restored once, not twice.
	assert.Equal(t, 5, f.products.stock(p.ID))
}

func TestVoidSale_ConcurrentVoidsRestoreOnce(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "10.00", "0", 5)
	saleID := createCompletedSale(t, f, p, 2, "20.00")
	require.Equal(t, 3, f.products.stock(p.ID))

	// Two voiders race on the same completed transaction. The conditional
	// flip inside UpdateVoidTx decides the winner; the loser must not
	// restore a second time.
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.svc.Void(context.Background(), saleID, uuid.New(), "duplicate void attempt")
		}()
	}
	wg.Wait()
	close(results)

	var successes, transitions int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var badTransit *InvalidStateTransitionError
		require.ErrorAs(t, err, &badTransit)
		assert.Equal(t, model.SaleStatusVoided, badTransit.From)
		transitions++
	}
	assert.Equal(t, 1, successes, "exactly one void wins")
	assert.Equal(t, 1, transitions)

	// Stock is back to exactly where it started, one restore applied.
	assert.Equal(t, 5, f.products.stock(p.ID))
	movs := f.movements.byProduct(p.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, "void_restore", movs[1].Type)
	assert.Equal(t, 2, movs[1].Quantity)
}

func TestVoidSale_RequiresReason(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "10.00", "0", 5)
	saleID := createCompletedSale(t, f, p, 1, "10.00")

	err := f.svc.Void(context.Background(), saleID, uuid.New(), "")
	var invalid *InvalidRequestError
	require.ErrorAs(t, err, &invalid)
}

func TestVoidSale_UnknownTransaction(t *testing.T) {
	f := newSaleFixture(nil)
	err := f.svc.Void(context.Background(), uuid.New(), uuid.New(), "whatever reason")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "transaction", notFound.Kind)
}

// ── Reads ────────────────────────────────────────────────────────────────────

func TestGetByNumber(t *testing.T) {
	f := newSaleFixture(nil)
	p := f.addProduct("Widget", "10.00", "0", 5)
	saleID := createCompletedSale(t, f, p, 1, "10.00")

	got, err := f.svc.GetByNumber(context.Background(), "T01-000001")
	require.NoError(t, err)
	assert.Equal(t, saleID.String(), got.ID)

	_, err = f.svc.GetByNumber(context.Background(), "T01-999999")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}
