package refdata

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"payments-register/internal/domain"
	"payments-register/pkg/logger"
)

// DefaultTTL is how long a loaded snapshot is served before it is re-read.
const DefaultTTL = 5 * time.Minute

type Paths struct {
	Advisors      string
	Obligations   string
	PaymentPoints string
}

type Loader interface {
	Load(ctx context.Context) (*domain.Reference, error)
}

// FileLoader reads the three reference tables from disk and resolves their
// columns.
type FileLoader struct {
	paths   Paths
	aliases Aliases
}

func NewFileLoader(paths Paths, aliases Aliases) *FileLoader {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &FileLoader{paths: paths, aliases: aliases}
}

func (l *FileLoader) Load(ctx context.Context) (*domain.Reference, error) {
	ref := &domain.Reference{}
	sources := []struct {
		name string
		path string
		dst  *domain.Table
	}{
		{"advisors", l.paths.Advisors, &ref.Advisors},
		{"obligations", l.paths.Obligations, &ref.Obligations},
		{"payment_points", l.paths.PaymentPoints, &ref.PaymentPoints},
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := ReadTable(src.name, src.path)
		if err != nil {
			return nil, err
		}
		*src.dst = t
	}

	cols, err := ResolveColumns(l.aliases, ref.Advisors, ref.Obligations, ref.PaymentPoints)
	if err != nil {
		return nil, err
	}
	ref.Columns = cols
	return ref, nil
}

// Cache holds the last loaded snapshot with its load time and reloads it once
// the TTL has elapsed.
type Cache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time
	log    logrus.FieldLogger

	mu       sync.Mutex
	ref      *domain.Reference
	loadedAt time.Time
}

func NewCache(loader Loader, ttl time.Duration, log logrus.FieldLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
		log:    logger.Component(log, "refdata"),
	}
}

// Get returns the cached snapshot, reloading it when missing or expired. A
// failed reload is returned as is; the stale snapshot is not served.
func (c *Cache) Get(ctx context.Context) (*domain.Reference, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ref != nil && c.now().Sub(c.loadedAt) < c.ttl {
		return c.ref, nil
	}

	ref, err := c.loader.Load(ctx)
	if err != nil {
		c.ref = nil
		return nil, err
	}
	c.store(ref)
	return ref, nil
}

// Refresh forces a reload. On failure the previous snapshot stays in place.
func (c *Cache) Refresh(ctx context.Context) error {
	ref, err := c.loader.Load(ctx)
	if err != nil {
		c.log.WithError(err).Warn("reference refresh failed, keeping previous snapshot")
		return err
	}

	c.mu.Lock()
	c.store(ref)
	c.mu.Unlock()
	return nil
}

func (c *Cache) store(ref *domain.Reference) {
	c.ref = ref
	c.loadedAt = c.now()
	c.log.WithFields(logrus.Fields{
		"advisors":       len(ref.Advisors.Rows),
		"obligations":    len(ref.Obligations.Rows),
		"payment_points": len(ref.PaymentPoints.Rows),
	}).Info("reference data loaded")
}

func (c *Cache) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt
}
