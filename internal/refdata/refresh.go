package refdata

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"payments-register/pkg/logger"
)

// Refresher reloads the reference cache on a cron schedule so the first
// request after expiry does not pay for reading the spreadsheets.
type Refresher struct {
	cron    *cron.Cron
	cache   *Cache
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewRefresher(cache *Cache, schedule string, log logrus.FieldLogger) (*Refresher, error) {
	r := &Refresher{
		cron:    cron.New(),
		cache:   cache,
		timeout: time.Minute,
		log:     logger.Component(log, "refdata"),
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.cache.Refresh(ctx); err != nil {
		return
	}
	r.log.Debug("scheduled reference refresh completed")
}

func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
