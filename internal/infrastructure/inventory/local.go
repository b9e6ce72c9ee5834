package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain"
)

var _ ledger.InventoryService = (*Local)(nil)

// Local implementa el puerto de inventario con contadores en proceso.
// Es el adaptador de desarrollo y demo: un activo sin existencia
// sembrada se considera ilimitado; con SetStock la reserva respeta la
// existencia disponible.
type Local struct {
	mu       sync.Mutex
	stock    map[string]int64 // existencia sembrada; ausente = ilimitada
	reserved map[string]int64
}

func NewLocal() *Local {
	return &Local{
		stock:    make(map[string]int64),
		reserved: make(map[string]int64),
	}
}

// SetStock siembra la existencia total de un activo.
func (l *Local) SetStock(assetID string, quantity int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[assetID] = quantity
}

// Reserve aparta unidades; falla si la existencia sembrada no alcanza.
func (l *Local) Reserve(_ context.Context, assetID string, quantity int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if total, ok := l.stock[assetID]; ok {
		available := total - l.reserved[assetID]
		if quantity > available {
			return fmt.Errorf("%w: disponibles %d de %s", domain.ErrInsufficientStock, available, assetID)
		}
	}
	l.reserved[assetID] += quantity
	return nil
}

// Release devuelve unidades apartadas; nunca deja el contador negativo.
func (l *Local) Release(_ context.Context, assetID string, quantity int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reserved[assetID] -= quantity
	if l.reserved[assetID] < 0 {
		l.reserved[assetID] = 0
	}
	return nil
}

// Reserved devuelve las unidades apartadas de un activo.
func (l *Local) Reserved(assetID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserved[assetID]
}
