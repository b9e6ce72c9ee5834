package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

// CancelInvoice anula la factura completa. Solo es legal con cobrado neto
// en cero: primero se devuelve o anula todo pago. Libera la reserva de
// cada línea viva dentro de la misma unidad de trabajo (si una
// liberación falla, nada queda anulado) y fija CANCELLED sin pasar por la
// derivación de estado por pagos.
func (uc *InvoiceUseCase) CancelInvoice(ctx context.Context, actor entity.Actor, invoiceID string, in dto.CancelInvoiceRequest) (*dto.InvoiceResponse, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrReasonRequired
	}

	var resp *dto.InvoiceResponse
	err := uc.txRunner.RunLedger(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.CustomerRepository) error {
		inv, err := uc.lockForMutation(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}
		items, txs, err := loadRows(invoiceRepo, inv.ID)
		if err != nil {
			return err
		}

		// 1) El cobrado neto debe estar en cero
		paid := ledger.SumPayments(txs)
		if !paid.IsZero() {
			return fmt.Errorf("%w: cobrado neto actual %s", domain.ErrCancelRequiresZeroPaid, paid.StringFixed(2))
		}

		// 2) Devolver al inventario las unidades de cada línea viva
		for _, item := range items {
			if item.VoidedAt != nil || item.AssetID == "" {
				continue
			}
			if err := uc.inventory.Release(ctx, item.AssetID, item.Quantity); err != nil {
				return fmt.Errorf("liberar inventario: %w", err)
			}
		}

		// 3) Marcar CANCELLED con sus metadatos y persistir
		now := time.Now()
		inv.Status = entity.InvoiceStatusCancelled
		inv.CancelledAt = &now
		inv.CancelledBy = actor.ID
		inv.CancelReason = in.Reason
		inv.UpdatedAt = now
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}

		resp = toResponse(inv, items, txs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_id", invoiceID).
		Str("reason", in.Reason).
		Str("actor", actor.ID).
		Msg("factura anulada")
	return resp, nil
}
