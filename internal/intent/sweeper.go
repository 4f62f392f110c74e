package intent

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ExpireStale persists the expiry of every lapsed pending intent and returns
// how many were expired by this call. A failing intent does not stop the
// sweep; the last failure is returned.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	pending, err := s.store.List(ctx, Filter{Statuses: []Status{StatusPending}})
	if err != nil {
		return 0, err
	}

	now := s.now()
	expired := 0
	var lastErr error
	for _, pi := range pending {
		if !pi.LapsedAt(now) {
			continue
		}
		_, swapped, err := s.transition(ctx, pi.ID, StatusPending, StatusExpired, nil)
		if err != nil {
			log.Error().Err(err).Str("intent_id", pi.ID).Msg("Failed to expire stale intent")
			lastErr = err
			continue
		}
		if swapped {
			expired++
		}
	}

	return expired, lastErr
}

// Sweeper runs ExpireStale on a fixed interval.
type Sweeper struct {
	service  *Service
	interval time.Duration
}

func NewSweeper(service *Service, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

func (s *Sweeper) Enabled() bool {
	return s != nil && s.interval > 0
}

// Run blocks until ctx is done. A disabled sweeper returns immediately.
func (s *Sweeper) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("Starting intent expiry sweeper")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping intent expiry sweeper")
			return
		case <-ticker.C:
			n, err := s.service.ExpireStale(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Intent expiry sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int("expired", n).Msg("Expired stale intents")
			}
		}
	}
}
