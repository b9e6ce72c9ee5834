package memory

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
)

// Store mantiene el estado completo del libro en memoria. Es el adaptador
// de persistencia para desarrollo y pruebas: cumple los mismos contratos
// que el de Postgres sin requerir una base de datos.
//
// Toda lectura devuelve copias profundas, así los casos de uso nunca
// comparten punteros con el estado interno. La escritura de cabeceras
// compara Version contra lo guardado y rechaza versiones obsoletas con
// domain.ErrConflict.
type Store struct {
	mu        sync.RWMutex
	invoices  map[string]*entity.Invoice
	items     map[string][]*entity.InvoiceItem // por factura, en orden de creación
	txs       map[string][]*entity.Transaction // por factura, en orden de creación
	customers map[string]*entity.Customer
	seq       int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex // un mutex por factura para serializar mutaciones
}

func NewStore() *Store {
	return &Store{
		invoices:  make(map[string]*entity.Invoice),
		items:     make(map[string][]*entity.InvoiceItem),
		txs:       make(map[string][]*entity.Transaction),
		customers: make(map[string]*entity.Customer),
		locks:     make(map[string]*sync.Mutex),
	}
}

// invoiceLock devuelve el mutex asociado a una factura, creándolo la
// primera vez que se pide.
func (s *Store) invoiceLock(invoiceID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[invoiceID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[invoiceID] = mu
	}
	return mu
}

func cloneInvoice(src *entity.Invoice) *entity.Invoice {
	if src == nil {
		return nil
	}
	dst := *src
	dst.MarginPercent = cloneDecimalPtr(src.MarginPercent)
	dst.CancelledAt = cloneTimePtr(src.CancelledAt)
	dst.DeletedAt = cloneTimePtr(src.DeletedAt)
	return &dst
}

func cloneItem(src *entity.InvoiceItem) *entity.InvoiceItem {
	if src == nil {
		return nil
	}
	dst := *src
	dst.VoidedAt = cloneTimePtr(src.VoidedAt)
	return &dst
}

func cloneTransaction(src *entity.Transaction) *entity.Transaction {
	if src == nil {
		return nil
	}
	dst := *src
	dst.VoidedAt = cloneTimePtr(src.VoidedAt)
	return &dst
}

func cloneCustomer(src *entity.Customer) *entity.Customer {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneDecimalPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
