package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

// AddItem agrega una línea a la factura. Con AssetID presente reserva las
// unidades en el servicio de inventario dentro de la misma unidad de
// trabajo: si la reserva falla no queda nada escrito.
func (uc *InvoiceUseCase) AddItem(ctx context.Context, actor entity.Actor, invoiceID string, in dto.AddItemRequest) (*dto.InvoiceResponse, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: la cantidad mínima es 1", domain.ErrQuantityOutOfRange)
	}
	if in.UnitPrice.IsNegative() || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.AssetID == "" && strings.TrimSpace(in.Description) == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateDiscount(in.Discount); err != nil {
		return nil, err
	}

	var resp *dto.InvoiceResponse
	err := uc.txRunner.RunLedger(ctx, func(invoiceRepo repository.InvoiceRepository, _ repository.CustomerRepository) error {
		inv, err := uc.lockForMutation(invoiceRepo, invoiceID)
		if err != nil {
			return err
		}

		// 1) Reservar unidades antes de tocar el libro
		if in.AssetID != "" {
			if err := uc.inventory.Reserve(ctx, in.AssetID, in.Quantity); err != nil {
				return fmt.Errorf("reservar inventario: %w", err)
			}
		}

		// 2) Construir la línea y recalcular su total
		now := time.Now()
		item := &entity.InvoiceItem{
			ID:              uuid.New().String(),
			InvoiceID:       inv.ID,
			AssetID:         in.AssetID,
			Description:     in.Description,
			Quantity:        in.Quantity,
			UnitPriceAmount: in.UnitPrice,
			UnitCostAmount:  in.UnitCost,
			DiscountType:    normalizeDiscountType(in.Discount.Type),
			DiscountValue:   in.Discount.Value,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		ledger.RecalculateLine(item)
		if err := invoiceRepo.CreateItem(item); err != nil {
			return err
		}

		// 3) Recalcular la factura completa y persistir
		items, txs, err := loadRows(invoiceRepo, inv.ID)
		if err != nil {
			return err
		}
		resp, err = uc.settle(invoiceRepo, inv, items, txs, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateItem cambia cantidad, precio o descuento de una línea viva y
// ajusta la reserva de inventario por la diferencia de cantidad.
func (uc *InvoiceUseCase) UpdateItem(ctx context.Context, actor entity.Actor, invoiceID, itemID string, in dto.UpdateItemRequest) (*dto.InvoiceResponse, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: la cantidad mínima es 1", domain.ErrQuantityOutOfRange)
	}
	if in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := validateDiscount(in.Discount); err != nil {
		return nil, err
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
		item := findItem(items, itemID)
		if item == nil {
			return domain.ErrNotFound
		}
		if item.VoidedAt != nil {
			return domain.ErrAlreadyVoided
		}

		// 1) Ajustar la reserva por la diferencia de cantidad
		if item.AssetID != "" {
			delta := in.Quantity - item.Quantity
			if delta > 0 {
				if err := uc.inventory.Reserve(ctx, item.AssetID, delta); err != nil {
					return fmt.Errorf("reservar inventario: %w", err)
				}
			} else if delta < 0 {
				if err := uc.inventory.Release(ctx, item.AssetID, -delta); err != nil {
					return fmt.Errorf("liberar inventario: %w", err)
				}
			}
		}

		// 2) Aplicar cambios y recalcular la línea
		now := time.Now()
		item.Quantity = in.Quantity
		item.UnitPriceAmount = in.UnitPrice
		item.DiscountType = normalizeDiscountType(in.Discount.Type)
		item.DiscountValue = in.Discount.Value
		item.UpdatedAt = now
		ledger.RecalculateLine(item)
		if err := invoiceRepo.UpdateItem(item); err != nil {
			return err
		}

		// 3) Recalcular la factura completa y persistir
		resp, err = uc.settle(invoiceRepo, inv, items, txs, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveItem elimina físicamente una línea viva y libera su reserva.
// Es la corrección de borrador; para excluir con rastro está VoidItem.
func (uc *InvoiceUseCase) RemoveItem(ctx context.Context, actor entity.Actor, invoiceID, itemID string) (*dto.InvoiceResponse, error) {
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
		item := findItem(items, itemID)
		if item == nil {
			return domain.ErrNotFound
		}
		if item.VoidedAt != nil {
			// Una línea anulada es rastro de auditoría: no se elimina.
			return domain.ErrAlreadyVoided
		}

		if item.AssetID != "" {
			if err := uc.inventory.Release(ctx, item.AssetID, item.Quantity); err != nil {
				return fmt.Errorf("liberar inventario: %w", err)
			}
		}
		if err := invoiceRepo.DeleteItem(item.ID); err != nil {
			return err
		}

		remaining := make([]*entity.InvoiceItem, 0, len(items)-1)
		for _, it := range items {
			if it.ID != item.ID {
				remaining = append(remaining, it)
			}
		}
		resp, err = uc.settle(invoiceRepo, inv, remaining, txs, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// VoidItem anula unidades de una línea con motivo obligatorio. Cantidad
// cero o igual a la de la línea anula la línea completa; una cantidad
// menor divide la línea: la viva conserva el resto con el descuento
// recalculado sobre la nueva base y la cantidad anulada queda en una
// línea nueva que nace anulada, como rastro. El cobrado no se toca: un
// saldo negativo (sobrepago) se reporta, no se corrige solo.
func (uc *InvoiceUseCase) VoidItem(ctx context.Context, actor entity.Actor, invoiceID, itemID string, in dto.VoidItemRequest) (*dto.InvoiceResponse, error) {
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
		item := findItem(items, itemID)
		if item == nil {
			return domain.ErrNotFound
		}
		if item.VoidedAt != nil {
			return domain.ErrAlreadyVoided
		}

		qtyToVoid := in.Quantity
		if qtyToVoid == 0 {
			qtyToVoid = item.Quantity
		}
		if qtyToVoid < 1 || qtyToVoid > item.Quantity {
			return fmt.Errorf("%w: máximo anulable %d", domain.ErrQuantityOutOfRange, item.Quantity)
		}

		// 1) Liberar en inventario las unidades que se anulan
		if item.AssetID != "" {
			if err := uc.inventory.Release(ctx, item.AssetID, qtyToVoid); err != nil {
				return fmt.Errorf("liberar inventario: %w", err)
			}
		}

		now := time.Now()
		if qtyToVoid == item.Quantity {
			// 2a) Anulación total: marcar la línea
			item.VoidedAt = &now
			item.VoidReason = in.Reason
			item.VoidedBy = actor.ID
			item.UpdatedAt = now
			if err := invoiceRepo.UpdateItem(item); err != nil {
				return err
			}
		} else {
			// 2b) Anulación parcial: dividir la línea
			voidedRow := &entity.InvoiceItem{
				ID:              uuid.New().String(),
				InvoiceID:       inv.ID,
				AssetID:         item.AssetID,
				Description:     item.Description,
				Quantity:        qtyToVoid,
				UnitPriceAmount: item.UnitPriceAmount,
				UnitCostAmount:  item.UnitCostAmount,
				DiscountType:    item.DiscountType,
				DiscountValue:   item.DiscountValue,
				VoidedAt:        &now,
				VoidReason:      in.Reason,
				VoidedBy:        actor.ID,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			ledger.RecalculateLine(voidedRow)

			item.Quantity -= qtyToVoid
			item.UpdatedAt = now
			ledger.RecalculateLine(item)

			if err := invoiceRepo.UpdateItem(item); err != nil {
				return err
			}
			if err := invoiceRepo.CreateItem(voidedRow); err != nil {
				return err
			}
			items = append(items, voidedRow)
		}

		// 3) Recalcular la factura completa; AmountPaid queda intacto
		resp, err = uc.settle(invoiceRepo, inv, items, txs, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_id", invoiceID).
		Str("item_id", itemID).
		Str("reason", in.Reason).
		Str("actor", actor.ID).
		Msg("línea anulada")
	return resp, nil
}

func findItem(items []*entity.InvoiceItem, id string) *entity.InvoiceItem {
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	return nil
}
