package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

// AddPayment registra un pago sobre la factura. El monto no puede llevar
// el cobrado neto por encima del total: el rechazo informa el máximo
// aceptable calculado en el momento.
func (uc *InvoiceUseCase) AddPayment(ctx context.Context, actor entity.Actor, invoiceID string, in dto.AddTransactionRequest) (*dto.InvoiceResponse, error) {
	return uc.addTransaction(ctx, actor, invoiceID, entity.TransactionTypePayment, in)
}

// AddRefund registra una devolución. Simétrica al pago: el monto no puede
// superar el cobrado neto vigente.
func (uc *InvoiceUseCase) AddRefund(ctx context.Context, actor entity.Actor, invoiceID string, in dto.AddTransactionRequest) (*dto.InvoiceResponse, error) {
	return uc.addTransaction(ctx, actor, invoiceID, entity.TransactionTypeRefund, in)
}

func (uc *InvoiceUseCase) addTransaction(ctx context.Context, actor entity.Actor, invoiceID, txType string, in dto.AddTransactionRequest) (*dto.InvoiceResponse, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, domain.ErrCommentRequired
	}
	if err := validateMethod(in.Method, in.MethodOther); err != nil {
		return nil, err
	}

	receivedAt := time.Now()
	if in.ReceivedAt != "" {
		parsed, err := time.Parse(time.RFC3339, in.ReceivedAt)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		receivedAt = parsed
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

		// 1) Cota contra el estado fresco, no contra la cabecera guardada
		paid := ledger.SumPayments(txs)
		ledger.Recalculate(inv, items)
		switch txType {
		case entity.TransactionTypePayment:
			maxAllowed := inv.TotalAmount.Sub(paid)
			if in.Amount.GreaterThan(maxAllowed) {
				return fmt.Errorf("%w: máximo permitido %s", domain.ErrPaymentExceedsBalance, maxAllowed.StringFixed(2))
			}
		case entity.TransactionTypeRefund:
			maxAllowed := paid
			if maxAllowed.IsNegative() {
				maxAllowed = decimal.Zero
			}
			if in.Amount.GreaterThan(maxAllowed) {
				return fmt.Errorf("%w: máximo permitido %s", domain.ErrRefundExceedsPaid, maxAllowed.StringFixed(2))
			}
		}

		// 2) Registrar la transacción
		now := time.Now()
		tx := &entity.Transaction{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			Type:        txType,
			Amount:      in.Amount,
			Method:      in.Method,
			MethodOther: in.MethodOther,
			Comment:     in.Comment,
			ReceivedBy:  actor.ID,
			ReceivedAt:  receivedAt,
			CreatedAt:   now,
		}
		if err := invoiceRepo.CreateTransaction(tx); err != nil {
			return err
		}
		txs = append(txs, tx)

		// 3) Re-derivar cobrado, saldo y estado, y persistir
		resp, err = uc.settle(invoiceRepo, inv, items, txs, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_id", invoiceID).
		Str("type", txType).
		Str("amount", in.Amount.StringFixed(2)).
		Str("method", in.Method).
		Str("actor", actor.ID).
		Msg("transacción registrada")
	return resp, nil
}

// VoidTransaction anula un pago o devolución con motivo obligatorio. La
// transacción se conserva con sus metadatos y el cobrado neto se
// reconstruye por resumación completa de las restantes. Permanente: no
// existe des-anular.
func (uc *InvoiceUseCase) VoidTransaction(ctx context.Context, actor entity.Actor, invoiceID, txID string, in dto.VoidTransactionRequest) (*dto.InvoiceResponse, error) {
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

		var target *entity.Transaction
		for _, tx := range txs {
			if tx.ID == txID {
				target = tx
				break
			}
		}
		if target == nil {
			return domain.ErrNotFound
		}
		if target.VoidedAt != nil {
			return domain.ErrAlreadyVoided
		}

		now := time.Now()
		target.VoidedAt = &now
		target.VoidReason = in.Reason
		target.VoidedBy = actor.ID
		if err := invoiceRepo.UpdateTransaction(target); err != nil {
			return err
		}

		resp, err = uc.settle(invoiceRepo, inv, items, txs, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_id", invoiceID).
		Str("tx_id", txID).
		Str("reason", in.Reason).
		Str("actor", actor.ID).
		Msg("transacción anulada")
	return resp, nil
}
