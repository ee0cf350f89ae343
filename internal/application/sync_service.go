package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrRateLimited is returned when the sync API rate limit is exceeded.
var ErrRateLimited = errors.New("rate limit exceeded")

// SyncCooldown is the minimum time between API-triggered syncs.
const SyncCooldown = 30 * time.Second

// SyncResult contains the result of a sync operation.
type SyncResult struct {
	DatasetsAdded    int       `json:"datasets_added"`
	DatasetsReloaded int       `json:"datasets_reloaded"`
	DatasetsRemoved  int       `json:"datasets_removed"`
	DatasetsTotal    int       `json:"datasets_total"`
	SyncedAt         time.Time `json:"synced_at"`
	NextScheduledAt  time.Time `json:"next_scheduled_at,omitempty"`
}

// SyncService manages periodic synchronization with dataset storage.
type SyncService struct {
	registry *DatasetRegistry
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	lastAPISync time.Time
	apiMutex    sync.Mutex

	// Serializes sync operations.
	syncOpMutex sync.Mutex

	nextSync time.Time
	syncMu   sync.RWMutex
}

// NewSyncService creates a new sync service.
func NewSyncService(registry *DatasetRegistry, interval time.Duration, logger *slog.Logger) *SyncService {
	return &SyncService{
		registry: registry,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sync scheduler. A non-positive interval disables
// scheduled syncs; TriggerSync still works.
func (s *SyncService) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("scheduled sync disabled")
		return
	}
	s.logger.Info("starting sync service", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *SyncService) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.setNextSync(s.now().Add(s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync service stopped: context canceled")
			return
		case <-s.stopCh:
			s.logger.Info("sync service stopped")
			return
		case <-ticker.C:
			s.logger.Debug("scheduled sync triggered")
			if _, err := s.doSync(ctx); err != nil {
				s.logger.Error("sync failed", "error", err)
			}
			s.setNextSync(s.now().Add(s.interval))
		}
	}
}

// Stop gracefully stops the sync service. It is safe to call more than once.
func (s *SyncService) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("stopping sync service")
		close(s.stopCh)
	})
	s.wg.Wait()
}

// TriggerSync runs a sync on request. Calls within SyncCooldown of the
// previous one return ErrRateLimited.
func (s *SyncService) TriggerSync(ctx context.Context) (SyncResult, error) {
	s.apiMutex.Lock()
	defer s.apiMutex.Unlock()

	now := s.now()
	if !s.lastAPISync.IsZero() && now.Sub(s.lastAPISync) < SyncCooldown {
		return SyncResult{}, ErrRateLimited
	}
	s.lastAPISync = now

	return s.doSync(ctx)
}

func (s *SyncService) doSync(ctx context.Context) (SyncResult, error) {
	s.syncOpMutex.Lock()
	defer s.syncOpMutex.Unlock()

	stats, err := s.registry.Sync(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	return SyncResult{
		DatasetsAdded:    stats.Added,
		DatasetsReloaded: stats.Reloaded,
		DatasetsRemoved:  stats.Removed,
		DatasetsTotal:    s.registry.DatasetCount(),
		SyncedAt:         s.now(),
		NextScheduledAt:  s.getNextSync(),
	}, nil
}

func (s *SyncService) setNextSync(t time.Time) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	s.nextSync = t
}

func (s *SyncService) getNextSync() time.Time {
	s.syncMu.RLock()
	defer s.syncMu.RUnlock()
	return s.nextSync
}

// Interval returns the sync interval.
func (s *SyncService) Interval() time.Duration {
	return s.interval
}
