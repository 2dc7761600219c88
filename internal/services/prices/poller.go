package prices

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultInterval is the refresh period of the poller
const DefaultInterval = 60 * time.Second

// Fetcher returns current prices keyed by asset id
type Fetcher interface {
	Fetch(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Clock abstracts time for the poller
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the part of time.Ticker the poller uses
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock is the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// Poller refreshes a Board from a Fetcher
type Poller struct {
	fetcher  Fetcher
	board    *Board
	clock    Clock
	interval time.Duration
	logger   zerolog.Logger
}

// NewPoller creates a poller. A non-positive interval uses DefaultInterval.
func NewPoller(f Fetcher, b *Board, clock Clock, interval time.Duration, logger zerolog.Logger) *Poller {
	if clock == nil {
		clock = SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{fetcher: f, board: b, clock: clock, interval: interval, logger: logger}
}

// Refresh fetches once and updates the board. Failures only mark the board.
func (p *Poller) Refresh(ctx context.Context) {
	quotes, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("price fetch failed")
		p.board.Fail(err)
		return
	}
	p.board.Update(quotes, p.clock.Now())
	p.logger.Debug().Int("quotes", len(quotes)).Msg("prices updated")
}

// Run refreshes immediately, then on every tick until ctx is cancelled
func (p *Poller) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			p.Refresh(ctx)
		}
	}
}
