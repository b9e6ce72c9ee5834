package ledger

import (
	"context"
	"time"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

// SetInvoiceDiscount fija el descriptor de descuento a nivel factura y
// recalcula. Un monto fijo mayor al subtotal vigente es legal: el cálculo
// lo acota a la base en cada recálculo, de modo que si después se agregan
// líneas el descuento vuelve a crecer hasta su valor nominal.
func (uc *InvoiceUseCase) SetInvoiceDiscount(ctx context.Context, actor entity.Actor, invoiceID string, in dto.DiscountRequest) (*dto.InvoiceResponse, error) {
	if err := validateDiscount(in); err != nil {
		return nil, err
	}

	var resp *dto.InvoiceResponse
	err := uc.txRunner.RunLedger(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.CustomerRepository) error {
		inv, err := uc.lockForMutation(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}

		inv.DiscountType = normalizeDiscountType(in.Type)
		inv.DiscountValue = in.Value

		items, txs, err := loadRows(invoiceRepo, inv.ID)
		if err != nil {
			return err
		}
		resp, err = uc.settle(invoiceRepo, inv, items, txs, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
