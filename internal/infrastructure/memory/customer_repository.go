package memory

import (
	"sort"

	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementa repository.CustomerRepository sobre el Store.
type CustomerRepo struct {
	store *Store
}

func NewCustomerRepository(store *Store) *CustomerRepo {
	return &CustomerRepo{store: store}
}

func (r *CustomerRepo) Create(customer *entity.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.customers[customer.ID]; ok {
		return domain.ErrDuplicate
	}
	r.store.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	customer, ok := r.store.customers[id]
	if !ok {
		return nil, nil
	}
	return cloneCustomer(customer), nil
}

func (r *CustomerRepo) GetByTaxID(taxID string) (*entity.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, customer := range r.store.customers {
		if customer.TaxID == taxID {
			return cloneCustomer(customer), nil
		}
	}
	return nil, nil
}

func (r *CustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*entity.Customer, 0, len(r.store.customers))
	for _, customer := range r.store.customers {
		all = append(all, cloneCustomer(customer))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	if offset >= len(all) {
		return []*entity.Customer{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *CustomerRepo) Update(customer *entity.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.customers[customer.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (r *CustomerRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.customers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.customers, id)
	return nil
}
