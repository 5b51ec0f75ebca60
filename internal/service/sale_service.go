package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tallypos/internal/dto"
	"tallypos/internal/model"
	"tallypos/internal/repository"
	"tallypos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentGateway authorizes electronic tenders before reconciliation. The
// engine treats the result as opaque success/failure; the protocol behind it
// is an external capability.
type PaymentGateway interface {
	Authorize(ctx context.Context, method string, amount decimal.Decimal, reference string) error
}

type SaleService interface {
	Create(ctx context.Context, cashierID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Void(ctx context.Context, id uuid.UUID, actorID uuid.UUID, reason string) error
	GetByID(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	// GetByNumber supports idempotent recovery: after an ambiguous network
	// failure the caller queries by the number it was issued instead of
	// retrying the create.
	GetByNumber(ctx context.Context, number string) (*dto.SaleResponse, error)
}

type saleService struct {
	repo         repository.SaleRepository
	productRepo  repository.ProductRepository
	terminalRepo repository.TerminalRepository
	customerRepo repository.CustomerRepository
	stock        StockService
	gateway      PaymentGateway
	dispatcher   *worker.Dispatcher
}

func NewSaleService(
	repo repository.SaleRepository,
	productRepo repository.ProductRepository,
	terminalRepo repository.TerminalRepository,
	customerRepo repository.CustomerRepository,
	stock StockService,
	gateway PaymentGateway,
	dispatcher *worker.Dispatcher,
) SaleService {
	return &saleService{
		repo:         repo,
		productRepo:  productRepo,
		terminalRepo: terminalRepo,
		customerRepo: customerRepo,
		stock:        stock,
		gateway:      gateway,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// maxStorageRetries bounds retries of the whole unit of work on transient
// serialization/deadlock failures. Retrying is only safe because the failed
// attempt rolled back in full; once committed nothing is ever retried.
const maxStorageRetries = 3

// ── Create ───────────────────────────────────────────────────────────────────
// One atomic unit of work:
//  1. validate request shape, resolve terminal (and customer, if given)
//  2. authorize electronic tenders through the gateway
//  3. inside the tx: allocate the terminal-scoped number; for each item
//     resolve product, deduct stock, snapshot, compute line tax/total;
//     reconcile tenders against the grand total; persist header+items+tenders
//  4. commit — any failure rolls everything back: no partial stock deduction,
//     no orphaned items, no half-recorded payments
//  5. (async) dispatch receipt job, best-effort

func (s *saleService) Create(ctx context.Context, cashierID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, &InvalidRequestError{Reason: "at least one item is required"}
	}
	if len(req.Tenders) == 0 {
		return nil, &InvalidRequestError{Reason: "at least one tender is required"}
	}

	terminalID, err := uuid.Parse(req.TerminalID)
	if err != nil {
		return nil, &InvalidRequestError{Reason: "terminal_id is not a valid UUID"}
	}
	terminal, err := s.terminalRepo.FindByID(ctx, terminalID)
	if err != nil {
		return nil, &NotFoundError{Kind: "terminal", ID: req.TerminalID}
	}
	if !terminal.Active {
		return nil, &InvalidRequestError{Reason: fmt.Sprintf("terminal %s is disabled", terminal.Code)}
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, &InvalidRequestError{Reason: "customer_id is not a valid UUID"}
		}
		if _, err := s.customerRepo.FindByID(ctx, cid); err != nil {
			return nil, &NotFoundError{Kind: "customer", ID: *req.CustomerID}
		}
		customerID = &cid
	}

	for _, t := range req.Tenders {
		if err := ValidateTender(t); err != nil {
			return nil, err
		}
	}

	// Gateway authorization for electronic tenders happens before the unit of
	// work opens — a declined card must not consume a transaction number.
	if s.gateway != nil {
		for _, t := range req.Tenders {
			if t.Method != model.TenderCard && t.Method != model.TenderGiftCard {
				continue
			}
			if err := s.gateway.Authorize(ctx, t.Method, t.Amount, terminal.Code); err != nil {
				return nil, &PaymentAuthError{Method: t.Method, Cause: err}
			}
		}
	}

	var sale model.SaleTransaction
	var txErr error
	for attempt := 0; ; attempt++ {
		sale = model.SaleTransaction{}
		txErr = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.createInTx(ctx, tx, &sale, cashierID, terminal, customerID, req)
		})
		if txErr == nil || attempt >= maxStorageRetries-1 || !isTransient(txErr) {
			break
		}
		log.Warn().Err(txErr).Int("attempt", attempt+1).Msg("sale tx retry after transient storage failure")
	}
	if txErr != nil {
		if isTransient(txErr) {
			return nil, &StorageError{Err: txErr}
		}
		return nil, txErr
	}

	// Async receipt job — best-effort, fire & forget. A receipt failure never
	// affects the committed sale.
	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{SaleID: sale.ID.String()}
		if customerID != nil {
			if c, err := s.customerRepo.FindByID(ctx, *customerID); err == nil && c.Email != nil {
				payload.CustomerEmail = c.Email
			}
		}
		if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Str("sale", sale.Number).Msg("failed to enqueue receipt job")
		}
	}

	return saleToResponse(&sale), nil
}

func (s *saleService) createInTx(
	ctx context.Context,
	tx *gorm.DB,
	sale *model.SaleTransaction,
	cashierID uuid.UUID,
	terminal *model.Terminal,
	customerID *uuid.UUID,
	req dto.CreateSaleRequest,
) error {
	seq, err := s.repo.NextNumberTx(ctx, tx, terminal.ID)
	if err != nil {
		return err
	}
	number := fmt.Sprintf("T%s-%06d", terminal.Code, seq)

	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	discountTotal := decimal.Zero

	sale.ID = uuid.New()
	sale.Number = number
	sale.TerminalID = terminal.ID
	sale.CashierID = cashierID
	sale.CustomerID = customerID
	sale.Status = model.SaleStatusPending

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return &InvalidRequestError{Reason: "product_id is not a valid UUID"}
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return &NotFoundError{Kind: "product", ID: item.ProductID}
		}
		if !p.Active {
			return &ProductInactiveError{ProductID: p.ID, Name: p.Name}
		}

		if err := s.stock.DeductTx(tx, p, item.Quantity, sale.ID, number); err != nil {
			return err
		}

		snap := SnapshotProduct(p)
		tax, lineTotal, err := ComputeLine(item.Quantity, snap.UnitPrice, item.Discount, snap.TaxRatePct)
		if err != nil {
			return err
		}

		lineSubtotal := snap.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		taxTotal = taxTotal.Add(tax)
		discountTotal = discountTotal.Add(item.Discount)

		sale.Items = append(sale.Items, model.SaleItem{
			TransactionID:   sale.ID,
			ProductID:       p.ID,
			ProductSnapshot: snap,
			Quantity:        item.Quantity,
			Discount:        item.Discount,
			TaxAmount:       tax,
			LineTotal:       lineTotal,
		})
	}

	grandTotal := subtotal.Add(taxTotal).Sub(discountTotal).Round(2)
	if grandTotal.IsNegative() {
		return &InvalidRequestError{Reason: "grand total must not be negative"}
	}

	if err := ReconcileTenders(req.Tenders, grandTotal); err != nil {
		return err
	}

	sale.Subtotal = subtotal.Round(2)
	sale.TaxTotal = taxTotal.Round(2)
	sale.DiscountTotal = discountTotal.Round(2)
	sale.GrandTotal = grandTotal
	for _, t := range req.Tenders {
		sale.Payments = append(sale.Payments, buildPayment(sale.ID, t))
	}

	// The header is persisted already completed: completion and the stock
	// deductions above are one atomic unit.
	now := time.Now().UTC()
	sale.Status = model.SaleStatusCompleted
	sale.CompletedAt = &now

	return s.repo.Create(ctx, tx, sale)
}

func buildPayment(saleID uuid.UUID, t dto.TenderRequest) model.SalePayment {
	p := model.SalePayment{
		TransactionID: saleID,
		Method:        t.Method,
		Amount:        t.Amount,
	}
	switch {
	case t.Cash != nil:
		received := t.Cash.Received
		change := received.Sub(t.Amount)
		p.CashReceived = &received
		p.ChangeGiven = &change
	case t.Card != nil:
		lastFour := t.Card.LastFour
		p.CardLastFour = &lastFour
	case t.Check != nil:
		number := t.Check.Number
		p.CheckNumber = &number
	case t.GiftCard != nil:
		code := t.GiftCard.Code
		p.GiftCardCode = &code
	}
	return p
}

// ── Void ─────────────────────────────────────────────────────────────────────
// completed → voided is the only legal entry. Stock is restored additively,
// one inverse movement per line; the historical record (items, payments) is
// preserved untouched.

func (s *saleService) Void(ctx context.Context, id uuid.UUID, actorID uuid.UUID, reason string) error {
	if reason == "" {
		return &InvalidRequestError{Reason: "void reason is required"}
	}

	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return &NotFoundError{Kind: "transaction", ID: id.String()}
	}
	if sale.Status != model.SaleStatusCompleted {
		return &InvalidStateTransitionError{From: sale.Status, To: model.SaleStatusVoided}
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		now := time.Now().UTC()
		sale.Status = model.SaleStatusVoided
		sale.VoidedBy = &actorID
		sale.VoidReason = &reason
		sale.VoidedAt = &now

		// The conditional flip is the authoritative guard: it only matches a
		// completed row, so of two concurrent voids exactly one reaches the
		// restores below. The loser rolls back having restored nothing.
		if err := s.repo.UpdateVoidTx(tx, sale); err != nil {
			if errors.Is(err, repository.ErrVoidConflict) {
				from := model.SaleStatusVoided
				if cur, ferr := s.repo.FindByID(ctx, id); ferr == nil {
					from = cur.Status
				}
				return &InvalidStateTransitionError{From: from, To: model.SaleStatusVoided}
			}
			return err
		}

		for _, item := range sale.Items {
			restoreReason := fmt.Sprintf("void of sale %s: %s", sale.Number, reason)
			if err := s.stock.RestoreTx(tx, item.ProductID, item.Quantity, sale.ID, restoreReason); err != nil {
				return err
			}
		}
		return nil
	})
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *saleService) GetByID(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Kind: "transaction", ID: id.String()}
	}
	return saleToResponse(sale), nil
}

func (s *saleService) GetByNumber(ctx context.Context, number string) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, &NotFoundError{Kind: "transaction", ID: number}
	}
	return saleToResponse(sale), nil
}

func saleToResponse(s *model.SaleTransaction) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			SKU:       item.SKU,
			Name:      item.Name,
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			TaxAmount: item.TaxAmount,
			LineTotal: item.LineTotal,
		})
	}
	tenders := make([]dto.TenderResponse, 0, len(s.Payments))
	for _, p := range s.Payments {
		tenders = append(tenders, dto.TenderResponse{
			Method:       p.Method,
			Amount:       p.Amount,
			CashReceived: p.CashReceived,
			ChangeGiven:  p.ChangeGiven,
			CardLastFour: p.CardLastFour,
			CheckNumber:  p.CheckNumber,
			GiftCardCode: p.GiftCardCode,
		})
	}

	resp := &dto.SaleResponse{
		ID:            s.ID.String(),
		Number:        s.Number,
		TerminalID:    s.TerminalID.String(),
		CashierID:     s.CashierID.String(),
		Items:         items,
		Tenders:       tenders,
		Subtotal:      s.Subtotal,
		TaxTotal:      s.TaxTotal,
		DiscountTotal: s.DiscountTotal,
		GrandTotal:    s.GrandTotal,
		Status:        s.Status,
		VoidReason:    s.VoidReason,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
	if s.CustomerID != nil {
		cid := s.CustomerID.String()
		resp.CustomerID = &cid
	}
	if s.VoidedAt != nil {
		t := s.VoidedAt.Format(time.RFC3339)
		resp.VoidedAt = &t
	}
	return resp
}
