package worker

// orden_compra_worker.go
// Builds the purchase order PDF for a confirmed purchase and, when the
// supplier has an email on file, chains an email job with the document
// attached.

import (
	"context"
	"encoding/json"
	"fmt"

	"provex/internal/infra"
	"provex/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OrdenCompraJobPayload is the job envelope sent to QueueOrdenCompra.
type OrdenCompraJobPayload struct {
	CompraID string `json:"compra_id"`
}

type OrdenCompraWorker struct {
	compraRepo     repository.CompraRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewOrdenCompraWorker(compraRepo repository.CompraRepository, dispatcher *Dispatcher, pdfStoragePath string) *OrdenCompraWorker {
	return &OrdenCompraWorker{
		compraRepo:     compraRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

func (w *OrdenCompraWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload OrdenCompraJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("orden_compra_worker: invalid payload")
		return nil
	}
	compraID, err := uuid.Parse(payload.CompraID)
	if err != nil {
		log.Error().Str("compra_id", payload.CompraID).Msg("orden_compra_worker: invalid compra_id")
		return nil
	}

	compra, err := w.compraRepo.FindByID(ctx, compraID)
	if err != nil {
		return fmt.Errorf("orden_compra_worker: fetch compra: %w", err)
	}

	pdfPath, err := infra.GenerateOrdenCompraPDF(compra, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("orden_compra_worker: generate pdf: %w", err)
	}
	log.Info().Str("compra_id", payload.CompraID).Str("pdf", pdfPath).
		Msg("orden_compra_worker: purchase order generated")

	if compra.Proveedor == nil || compra.Proveedor.Email == nil || *compra.Proveedor.Email == "" {
		return nil
	}
	emailPayload := EmailJobPayload{
		ToEmail: *compra.Proveedor.Email,
		Subject: fmt.Sprintf("Orden de compra %s", compra.ID),
		Body:    fmt.Sprintf("Adjuntamos la orden de compra por %s %s.", compra.Moneda, compra.Total.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailPayload); err != nil {
		log.Error().Err(err).Str("compra_id", payload.CompraID).
			Msg("orden_compra_worker: failed to enqueue email")
	}
	return nil
}
