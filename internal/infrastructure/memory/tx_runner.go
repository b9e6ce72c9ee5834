package memory

import (
	"context"
	"sync"

	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

var _ ledger.LedgerTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta mutaciones del libro contra el Store en memoria.
//
// Aquí no hay transacción real que revertir. La serialización por factura
// se logra con el mutex que GetForUpdate adquiere y que se libera al
// terminar el cierre; los casos de uso ordenan sus pasos de modo que las
// validaciones y las llamadas externas ocurren antes de la primera
// escritura, así un error no deja estado a medias.
type TxRunner struct {
	store *Store
}

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) RunLedger(ctx context.Context, fn func(invoices repository.InvoiceRepository, customers repository.CustomerRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess := newSession(r.store)
	defer sess.release()
	return fn(&InvoiceRepo{store: r.store, session: sess}, &CustomerRepo{store: r.store})
}

// session registra los mutex de factura adquiridos durante un RunLedger
// para liberarlos todos al final de la unidad de trabajo.
type session struct {
	store *Store
	held  map[string]*sync.Mutex
}

func newSession(store *Store) *session {
	return &session{store: store, held: make(map[string]*sync.Mutex)}
}

func (s *session) lock(invoiceID string) {
	if s == nil {
		return
	}
	if _, ok := s.held[invoiceID]; ok {
		return
	}
	mu := s.store.invoiceLock(invoiceID)
	mu.Lock()
	s.held[invoiceID] = mu
}

func (s *session) release() {
	for _, mu := range s.held {
		mu.Unlock()
	}
	s.held = nil
}
