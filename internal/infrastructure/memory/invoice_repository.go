package memory

import (
	"sort"

	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementa repository.InvoiceRepository sobre el Store.
type InvoiceRepo struct {
	store   *Store
	session *session // nil fuera de un RunLedger; GetForUpdate entonces no serializa
}

func NewInvoiceRepository(store *Store) *InvoiceRepo {
	return &InvoiceRepo{store: store}
}

func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.invoices[inv.ID]; ok {
		return domain.ErrDuplicate
	}
	r.store.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	inv, ok := r.store.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneInvoice(inv), nil
}

// GetForUpdate toma el mutex de la factura antes de leerla; el mutex queda
// retenido hasta que el runner cierre la unidad de trabajo.
func (r *InvoiceRepo) GetForUpdate(id string) (*entity.Invoice, error) {
	r.session.lock(id)
	return r.GetByID(id)
}

func (r *InvoiceRepo) Update(inv *entity.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != inv.Version {
		return domain.ErrConflict
	}
	inv.Version++
	r.store.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *InvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*entity.Invoice, 0, len(r.store.invoices))
	for _, inv := range r.store.invoices {
		if inv.DeletedAt != nil {
			continue
		}
		all = append(all, cloneInvoice(inv))
	}
	// El consecutivo tiene ancho fijo, así que el orden lexicográfico del
	// número coincide con el cronológico.
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })

	if offset >= len(all) {
		return []*entity.Invoice{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *InvoiceRepo) NextSequence() (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.seq++
	return r.store.seq, nil
}

func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.items[item.InvoiceID] = append(r.store.items[item.InvoiceID], cloneItem(item))
	return nil
}

func (r *InvoiceRepo) UpdateItem(item *entity.InvoiceItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows := r.store.items[item.InvoiceID]
	for i, row := range rows {
		if row.ID == item.ID {
			rows[i] = cloneItem(item)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *InvoiceRepo) DeleteItem(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for invoiceID, rows := range r.store.items {
		for i, row := range rows {
			if row.ID == id {
				r.store.items[invoiceID] = append(rows[:i], rows[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *InvoiceRepo) ListItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := r.store.items[invoiceID]
	out := make([]*entity.InvoiceItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneItem(row))
	}
	return out, nil
}

func (r *InvoiceRepo) CreateTransaction(tx *entity.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.txs[tx.InvoiceID] = append(r.store.txs[tx.InvoiceID], cloneTransaction(tx))
	return nil
}

func (r *InvoiceRepo) UpdateTransaction(tx *entity.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rows := r.store.txs[tx.InvoiceID]
	for i, row := range rows {
		if row.ID == tx.ID {
			rows[i] = cloneTransaction(tx)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *InvoiceRepo) ListTransactionsByInvoiceID(invoiceID string) ([]*entity.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := r.store.txs[invoiceID]
	out := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneTransaction(row))
	}
	return out, nil
}
