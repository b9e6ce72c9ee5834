package currency

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Clock inyecta la fuente de tiempo; en tests se fija manualmente para
// controlar la expiración sin esperas reales.
type Clock func() time.Time

// RateCache guarda tasas de cambio con TTL. Es estado compartido de solo
// lectura en la práctica: los refrescos concurrentes de la misma clave
// son idempotentes y gana la última escritura.
type RateCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     Clock
	entries map[string]rateEntry
}

type rateEntry struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// NewRateCache construye la caché con su TTL y reloj. Un reloj nil usa
// time.Now.
func NewRateCache(ttl time.Duration, now Clock) *RateCache {
	if now == nil {
		now = time.Now
	}
	return &RateCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]rateEntry),
	}
}

// Get devuelve la tasa vigente para base→quote, o false si no existe o
// ya expiró.
func (c *RateCache) Get(base, quote string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[rateKey(base, quote)]
	if !ok || !c.now().Before(e.expiresAt) {
		return decimal.Zero, false
	}
	return e.rate, true
}

// Put guarda la tasa para base→quote con vigencia de un TTL desde ahora.
func (c *RateCache) Put(base, quote string, rate decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[rateKey(base, quote)] = rateEntry{
		rate:      rate,
		expiresAt: c.now().Add(c.ttl),
	}
}

func rateKey(base, quote string) string {
	return base + "_" + quote
}
