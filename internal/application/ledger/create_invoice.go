package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

// CreateInvoice crea una factura vacía en UNPAID con el siguiente
// consecutivo del comercio. CustomerID vacío es venta de mostrador.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, actor entity.Actor, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	currency := in.Currency
	if currency == "" {
		currency = uc.cfg.BaseCurrency
	}
	if !uc.supportsCurrency(currency) {
		return nil, domain.ErrUnsupportedCurrency
	}

	issuedAt := time.Now()
	if in.IssuedAt != "" {
		parsed, err := time.Parse(time.RFC3339, in.IssuedAt)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		issuedAt = parsed
	}

	// Validar cliente cuando viene referencia (fuera de la tx, solo lectura)
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(in.CustomerID)
		if err != nil || customer == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	var inv *entity.Invoice
	err := uc.txRunner.RunLedger(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.CustomerRepository) error {
		seq, err := invoiceRepo.NextSequence()
		if err != nil {
			return err
		}
		inv = &entity.Invoice{
			ID:           uuid.New().String(),
			Number:       fmt.Sprintf("%s-%06d", uc.cfg.NumberPrefix, seq),
			CustomerID:   in.CustomerID,
			Currency:     currency,
			IssuedAt:     issuedAt,
			DiscountType: entity.DiscountTypeNone,
			Status:       entity.InvoiceStatusUnpaid,
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		ledger.Recalculate(inv, nil)
		return invoiceRepo.Create(inv)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_id", inv.ID).
		Str("number", inv.Number).
		Str("actor", actor.ID).
		Msg("factura creada")
	return toResponse(inv, nil, nil), nil
}

// GetInvoice obtiene la factura completa. Los derivados se recalculan
// desde las filas al responder; jamás se confía en un campo almacenado a
// mano.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	items, txs, err := loadRows(uc.invoiceRepo, id)
	if err != nil {
		return nil, err
	}
	inv.AmountPaid = ledger.SumPayments(txs)
	ledger.Recalculate(inv, items)
	inv.Status = ledger.DeriveStatus(inv.Status, inv.AmountPaid, inv.TotalAmount)
	return toResponse(inv, items, txs), nil
}

// ListInvoices pagina las cabeceras de facturas no borradas.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, limit, offset int) ([]*dto.InvoiceSummaryResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.invoiceRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceSummaryResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toSummary(inv))
	}
	return out, nil
}

// DeleteInvoice marca la factura como borrada (borrado lógico). Legal en
// cualquier estado salvo ya borrada; desaparece de listados y rechaza
// mutaciones posteriores.
func (uc *InvoiceUseCase) DeleteInvoice(ctx context.Context, actor entity.Actor, id string) error {
	err := uc.txRunner.RunLedger(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.CustomerRepository) error {
		inv, err := invoiceRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if inv == nil || inv.DeletedAt != nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		inv.DeletedAt = &now
		inv.DeletedBy = actor.ID
		inv.UpdatedAt = now
		return invoiceRepo.Update(inv)
	})
	if err != nil {
		return err
	}

	log.Info().Str("invoice_id", id).Str("actor", actor.ID).Msg("factura borrada")
	return nil
}
