package market

import (
	"sync"
	"time"

	"market-dashboard/src/models"
)

// State is the process-wide market state shared by the poller, the detail
// service and the servers. Tests build a fresh one per case.
type State struct {
	Quotes   *QuoteBook
	Statuses *StatusRegistry
}

func NewState() *State {
	return &State{
		Quotes:   NewQuoteBook(),
		Statuses: NewStatusRegistry(),
	}
}

// -----------------------------------------------------------------------------
// QuoteBook
// -----------------------------------------------------------------------------

// QuoteBook keeps the latest snapshot per symbol in first-seen order.
type QuoteBook struct {
	mu        sync.RWMutex
	order     []string
	quotes    map[string]models.MQuoteSnapshot
	updatedAt time.Time
}

func NewQuoteBook() *QuoteBook {
	return &QuoteBook{quotes: make(map[string]models.MQuoteSnapshot)}
}

// Merge upserts a whole batch under one lock so readers never see half a tick.
func (b *QuoteBook) Merge(batch []models.MQuoteSnapshot) {
	if len(batch) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, q := range batch {
		if _, ok := b.quotes[q.Symbol]; !ok {
			b.order = append(b.order, q.Symbol)
		}
		b.quotes[q.Symbol] = q
	}
	b.updatedAt = time.Now()
}

// Values returns every known quote. Never nil.
func (b *QuoteBook) Values() []models.MQuoteSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.MQuoteSnapshot, 0, len(b.order))
	for _, symbol := range b.order {
		out = append(out, b.quotes[symbol])
	}
	return out
}

func (b *QuoteBook) Get(symbol string) (models.MQuoteSnapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[symbol]
	return q, ok
}

func (b *QuoteBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.quotes)
}

// LatestUpdate is the time of the last merge, zero before the first one.
func (b *QuoteBook) LatestUpdate() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}

// -----------------------------------------------------------------------------
// StatusRegistry
// -----------------------------------------------------------------------------

// StatusRegistry holds the last-known status per symbol. Entries are only
// ever overwritten.
type StatusRegistry struct {
	mu       sync.RWMutex
	statuses map[string]models.MSymbolStatus
	now      func() time.Time
}

func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{
		statuses: make(map[string]models.MSymbolStatus),
		now:      time.Now,
	}
}

func (r *StatusRegistry) Set(symbol string, status models.SymbolState, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[symbol] = models.MSymbolStatus{
		Status:    status,
		Message:   message,
		UpdatedAt: r.now().UTC(),
	}
}

// SetAll applies the same status to every symbol.
func (r *StatusRegistry) SetAll(symbols []string, status models.SymbolState, message string) {
	for _, symbol := range symbols {
		r.Set(symbol, status, message)
	}
}

func (r *StatusRegistry) Get(symbol string) (models.MSymbolStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.statuses[symbol]
	return s, ok
}

// Snapshot copies the registry.
func (r *StatusRegistry) Snapshot() map[string]models.MSymbolStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.MSymbolStatus, len(r.statuses))
	for k, v := range r.statuses {
		out[k] = v
	}
	return out
}
