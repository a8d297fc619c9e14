package market

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
)

// SessionChecker reports whether any tracked exchange is in session.
type SessionChecker interface {
	AnyMarketOpen() bool
}

// PollingScheduler polls the whole watchlist on a fixed interval, merges the
// results into the quote book and pushes them to subscribers.
type PollingScheduler struct {
	Fetcher         *QuoteFetcher
	State           *State
	Symbols         []string
	Broadcaster     interfaces.IBroadcaster
	Sessions        SessionChecker
	Interval        time.Duration
	PauseWhenClosed bool
	Logger          *logger.Logger

	isRunning atomic.Bool
	trigger   chan struct{}
	pollMu    sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewPollingScheduler(fetcher *QuoteFetcher, state *State, symbols []string, b interfaces.IBroadcaster, interval time.Duration, log *logger.Logger) *PollingScheduler {
	return &PollingScheduler{
		Fetcher:     fetcher,
		State:       state,
		Symbols:     symbols,
		Broadcaster: b,
		Interval:    interval,
		Logger:      log,
		trigger:     make(chan struct{}, 1),
	}
}

// -----------------------------------------------------------------------------

// Start polls once immediately and then on every tick. A second call while
// running is a no-op and returns false.
func (p *PollingScheduler) Start(parentCtx context.Context) bool {
	if !p.isRunning.CompareAndSwap(false, true) {
		return false
	}

	ctx, cancel := context.WithCancel(parentCtx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.runLoop(ctx)
	p.Logger.Info("Starting FYERS polling every %s", p.Interval)
	return true
}

// Stop ends the loop and waits for an in-flight poll to finish.
func (p *PollingScheduler) Stop() {
	if !p.isRunning.CompareAndSwap(true, false) {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.Logger.Info("Polling stopped")
}

func (p *PollingScheduler) IsRunning() bool {
	return p.isRunning.Load()
}

// TriggerNow asks the loop for an extra poll without waiting for it. When
// the loop is not running a single poll runs in its own goroutine.
func (p *PollingScheduler) TriggerNow() {
	if !p.isRunning.Load() {
		go p.PollOnce(context.Background())
		return
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// -----------------------------------------------------------------------------

// PollOnce fetches the watchlist, merges and broadcasts a non-empty result.
// Concurrent calls are serialized. Returns the number of quotes received.
func (p *PollingScheduler) PollOnce(ctx context.Context) int {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	quotes := p.Fetcher.Fetch(ctx, p.Symbols)
	if len(quotes) == 0 {
		return 0
	}

	p.State.Quotes.Merge(quotes)
	if p.Broadcaster != nil {
		p.Broadcaster.Broadcast(p.State.Quotes.Values())
	}
	return len(quotes)
}

// -----------------------------------------------------------------------------

func (p *PollingScheduler) runLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	p.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.trigger:
			p.PollOnce(ctx)
		case <-ticker.C:
			if p.PauseWhenClosed && p.Sessions != nil && !p.Sessions.AnyMarketOpen() {
				p.Logger.Debug("All markets closed, skipping poll")
				continue
			}
			p.PollOnce(ctx)
		}
	}
}
