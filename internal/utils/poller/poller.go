package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller runs a poll method on a fixed interval. A failed run is logged and
// retried on the next tick.
type Poller struct {
	name       string
	interval   time.Duration
	quit       chan struct{}
	stopOnce   sync.Once
	pollMethod func(ctx context.Context) error
}

func NewPoller(name string, interval time.Duration, pollMethod func(ctx context.Context) error) *Poller {
	return &Poller{
		name:       name,
		interval:   interval,
		quit:       make(chan struct{}),
		pollMethod: pollMethod,
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logger := log.Ctx(ctx).With().Str("poller", p.name).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Dur("interval", p.interval).Msg("starting poller")

	failures := 0
	for {
		select {
		case <-ticker.C:
			if err := p.pollMethod(ctx); err != nil {
				failures++
				logger.Error().Err(err).Int("consecutive_failures", failures).Msg("poll failed")
				continue
			}
			if failures > 0 {
				logger.Info().Int("consecutive_failures", failures).Msg("poll recovered")
			}
			failures = 0
		case <-ctx.Done():
			logger.Info().Msg("poller stopped due to context cancellation")
			return
		case <-p.quit:
			logger.Info().Msg("poller stopped")
			return
		}
	}
}

// Stop may be called more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.quit) })
}
