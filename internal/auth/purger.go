package auth

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	purgedGrants = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_grants_purged_total", Help: "Ended grants deleted by the purger",
	})
	purgeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_purge_errors_total", Help: "Failed purge runs",
	})
	purgeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "auth_purge_duration_seconds", Help: "Purge run duration",
		Buckets: prometheus.DefBuckets,
	})
)

// EndedGrantDeleter is implemented by GormTokenStore
type EndedGrantDeleter interface {
	DeleteEnded(ctx context.Context) (int64, error)
}

// Purger periodically deletes grants that can no longer be renewed
type Purger struct {
	Store    EndedGrantDeleter
	Interval time.Duration
	Log      *logrus.Logger
}

func NewPurger(store EndedGrantDeleter, interval time.Duration, log *logrus.Logger) *Purger {
	return &Purger{Store: store, Interval: interval, Log: log}
}

// Tick runs one purge and returns the number of deleted grants
func (p *Purger) Tick(ctx context.Context) (int64, error) {
	start := time.Now()
	defer func() { purgeDuration.Observe(time.Since(start).Seconds()) }()

	n, err := p.Store.DeleteEnded(ctx)
	if err != nil {
		purgeErrors.Inc()
		p.Log.WithError(err).Warn("Purge failed")
		return 0, err
	}
	if n > 0 {
		purgedGrants.Add(float64(n))
		p.Log.WithField("deleted", n).Info("Purged ended grants")
	}
	return n, nil
}

// Run purges once, then every Interval until ctx is done
func (p *Purger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	p.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}
