package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/draftops/draft-engine/internal/models"
)

// PoolProvider supplies the live player pool with ADP/tier/projection data.
// Upstream fetches go through a circuit breaker and rate limiter; when the
// upstream is unavailable (or unconfigured) a deterministic synthesized pool
// keeps the engine usable.
type PoolProvider struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	logger     *logrus.Logger

	mu          sync.RWMutex
	pool        []models.Player
	lastRefresh time.Time
}

// Config tunes the provider.
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	RequestsPerMinute  int
	BreakerMaxRequests int
}

// NewPoolProvider creates a provider seeded with the synthesized pool so the
// engine has data before the first upstream refresh lands.
func NewPoolProvider(cfg Config, logger *logrus.Logger) *PoolProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	if cfg.BreakerMaxRequests <= 0 {
		cfg.BreakerMaxRequests = 5
	}

	settings := gobreaker.Settings{
		Name:        "player-pool",
		MaxRequests: uint32(cfg.BreakerMaxRequests),
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &PoolProvider{
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		breaker:     gobreaker.NewCircuitBreaker(settings),
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		logger:      logger,
		pool:        SynthesizePool(),
		lastRefresh: time.Now(),
	}
}

// Players returns a copy of the current pool in rank order.
func (p *PoolProvider) Players() []models.Player {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Player, len(p.pool))
	copy(out, p.pool)
	return out
}

// LastRefresh reports when the pool last changed.
func (p *PoolProvider) LastRefresh() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRefresh
}

// Refresh pulls the latest pool from upstream. Without a configured upstream
// the synthesized pool stays in place.
func (p *PoolProvider) Refresh(ctx context.Context) error {
	if p.baseURL == "" {
		p.logger.Debug("No player pool upstream configured, keeping synthesized pool")
		return nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetch(ctx)
	})
	if err != nil {
		p.logger.WithError(err).Warn("Player pool refresh failed, serving last known pool")
		return fmt.Errorf("failed to refresh player pool: %w", err)
	}

	players := result.([]models.Player)
	if len(players) == 0 {
		return fmt.Errorf("upstream returned an empty player pool")
	}

	p.mu.Lock()
	p.pool = players
	p.lastRefresh = time.Now()
	p.mu.Unlock()

	p.logger.WithField("players", len(players)).Info("Refreshed player pool")
	return nil
}

func (p *PoolProvider) fetch(ctx context.Context) ([]models.Player, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/players", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pool request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pool request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pool upstream returned status %d", resp.StatusCode)
	}

	var players []models.Player
	if err := json.NewDecoder(resp.Body).Decode(&players); err != nil {
		return nil, fmt.Errorf("failed to decode pool response: %w", err)
	}
	return players, nil
}

// StartScheduler refreshes the pool on the given cron spec until the context
// is cancelled.
func (p *PoolProvider) StartScheduler(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := p.Refresh(refreshCtx); err != nil {
			p.logger.WithError(err).Warn("Scheduled pool refresh failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid pool refresh schedule %q: %w", spec, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	p.logger.WithField("schedule", spec).Info("Player pool refresh scheduled")
	return c, nil
}
