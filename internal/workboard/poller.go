package workboard

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"barpos/internal/api"
)

// Poller re-reads the workboard from the server on a fixed interval.
// SingletonMode skips a tick while the previous refresh is still in flight,
// so slow cycles never overlap. Failures are logged and the timer keeps
// going (best-effort); the circuit breaker keeps a dead backend from
// stacking timed-out requests.
type Poller struct {
	board    *Board
	breaker  *api.CircuitBreaker
	interval time.Duration
	sched    *gocron.Scheduler
}

func NewPoller(board *Board, breaker *api.CircuitBreaker, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{board: board, breaker: breaker, interval: interval}
}

// Start schedules the recurring refresh. Call after the initial load.
func (p *Poller) Start(ctx context.Context) error {
	p.sched = gocron.NewScheduler(time.UTC)
	_, err := p.sched.Every(p.interval).SingletonMode().Do(func() {
		err := p.breaker.Execute(func() error {
			return p.board.Refresh(ctx)
		})
		switch {
		case err == nil:
		case errors.Is(err, api.ErrCircuitOpen):
			log.Warn().Msg("workboard refresh skipped: backend circuit open")
		default:
			log.Warn().Err(err).Msg("workboard refresh failed")
		}
	})
	if err != nil {
		return err
	}
	p.sched.StartAsync()
	log.Info().Dur("interval", p.interval).Msg("workboard poller started")
	return nil
}

// Stop tears the timer down; called when the view is left or on shutdown.
func (p *Poller) Stop() {
	if p.sched != nil {
		p.sched.Stop()
	}
}
