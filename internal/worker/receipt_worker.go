package worker

// receipt_worker.go
// Renders a PDF receipt for a committed sale and, when the customer left an
// email address, chains an email-delivery job. Receipt generation is
// best-effort: the sale is already durable, so failures retry with backoff
// and then land in the DLQ — they never touch the transaction itself.

import (
	"context"
	"encoding/json"
	"fmt"

	"tallypos/internal/infra"
	"tallypos/internal/model"
	"tallypos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipts.
type ReceiptJobPayload struct {
	SaleID        string  `json:"sale_id"`
	CustomerEmail *string `json:"customer_email,omitempty"`
}

type ReceiptWorker struct {
	saleRepo    repository.SaleRepository
	dispatcher  *Dispatcher
	storagePath string
	storeName   string
}

func NewReceiptWorker(saleRepo repository.SaleRepository, dispatcher *Dispatcher, storagePath, storeName string) *ReceiptWorker {
	return &ReceiptWorker{
		saleRepo:    saleRepo,
		dispatcher:  dispatcher,
		storagePath: storagePath,
		storeName:   storeName,
	}
}

// Process handles a single receipt job:
//  1. parse the payload and load the sale (items + payments)
//  2. render the PDF, retrying with backoff on transient failure
//  3. enqueue an email job when a customer address was captured
//
// A malformed payload is dropped (no retry can fix it); a returned error
// sends the job to the DLQ.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}

	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale_id")
		return nil
	}

	var sale *model.SaleTransaction
	var pdfPath string
	jobErr := withRetry(ctx, maxJobAttempts, func(attempt int) error {
		s, err := w.saleRepo.FindByID(ctx, saleID)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("sale_id", payload.SaleID).
				Msg("receipt_worker: load sale failed, retrying")
			return err
		}
		sale = s

		path, err := infra.GenerateReceiptPDF(sale, w.storeName, w.storagePath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("sale", sale.Number).
				Msg("receipt_worker: render failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if jobErr != nil {
		return fmt.Errorf("receipt_worker: sale %s: %w", payload.SaleID, jobErr)
	}
	log.Info().Str("sale", sale.Number).Str("pdf", pdfPath).Msg("receipt_worker: receipt generated")

	if payload.CustomerEmail != nil && *payload.CustomerEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: *payload.CustomerEmail,
			Subject: fmt.Sprintf("Your receipt — %s", sale.Number),
			Body:    fmt.Sprintf("Thank you for your purchase.\nTotal: $%s", sale.GrandTotal.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.CustomerEmail).Msg("receipt_worker: failed to enqueue email")
		}
	}
	return nil
}
