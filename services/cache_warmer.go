package services

import (
	"context"
	"rally-metrics-go/logging"
	"sync"
	"time"
)

// CacheWarmer periodically reloads the full player list so page loads hit a
// warm cache, and notifies listeners when the stats changed
type CacheWarmer struct {
	playerService PlayerService
	interval      time.Duration
	onChange      func()
	logger        *logging.Logger

	mu       sync.Mutex
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     sync.WaitGroup
}

// NewCacheWarmer creates a new cache warmer. onChange may be nil.
func NewCacheWarmer(playerService PlayerService, interval time.Duration, onChange func()) *CacheWarmer {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &CacheWarmer{
		playerService: playerService,
		interval:      interval,
		onChange:      onChange,
		logger:        logging.WithPrefix("CacheWarmer"),
	}
}

// Start begins the refresh loop with an immediate first refresh
func (cw *CacheWarmer) Start() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		cw.logger.Info("Already running")
		return
	}

	cw.logger.Infof("Starting with interval %v", cw.interval)
	cw.running = true
	cw.ticker = time.NewTicker(cw.interval)
	cw.stopChan = make(chan struct{})

	ticker, stop := cw.ticker, cw.stopChan
	cw.done.Add(1)
	go func() {
		defer cw.done.Done()
		cw.refresh()
		for {
			select {
			case <-ticker.C:
				cw.refresh()
			case <-stop:
				cw.logger.Info("Stopping background refreshes")
				return
			}
		}
	}()
}

// Stop halts the refresh loop and waits for an in-flight refresh to finish
func (cw *CacheWarmer) Stop() {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return
	}
	cw.running = false
	cw.ticker.Stop()
	close(cw.stopChan)
	cw.mu.Unlock()

	cw.done.Wait()
}

// IsRunning reports whether the loop is active
func (cw *CacheWarmer) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

func (cw *CacheWarmer) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	changed, err := cw.playerService.Refresh(ctx)
	if err != nil {
		cw.logger.Errorf("Refresh failed: %v", err)
		return
	}
	cw.logger.Debugf("Refresh finished in %v (changed=%t)", time.Since(start), changed)

	if changed && cw.onChange != nil {
		cw.onChange()
	}
}
