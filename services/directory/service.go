// Package directory is the read path tenant resolution runs on: it maps
// subdomains and school ids to directory records, caching results so the
// per-request lookup does not hit Postgres on every call.
package directory

import (
	"context"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneclass/platform/config"
	"github.com/oneclass/platform/models"
	"github.com/oneclass/platform/repositories"
	"github.com/oneclass/platform/services"
)

// Record is a read-only snapshot of a school and its enabled modules.
// Records are shared across requests through the cache; callers must not
// mutate them.
type Record struct {
	School  models.School
	Modules []string
}

// ModuleEnabled returns true when the named module is enabled for the school
func (r *Record) ModuleEnabled(name string) bool {
	for _, m := range r.Modules {
		if m == name {
			return true
		}
	}
	return false
}

// Service looks up directory records with a TTL read cache in front of the
// school repository. Suspended and inactive schools are returned like any
// other record: deciding what an operability state means is the caller's job.
type Service struct {
	schools repositories.SchoolRepository
	cache   *ristretto.Cache[string, *Record]
	cfg     config.DirectoryConfig
	logger  *zap.Logger
}

// NewService creates a new directory service
func NewService(schools repositories.SchoolRepository, cfg config.DirectoryConfig, logger *zap.Logger) (*Service, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *Record]{
		NumCounters: int64(cfg.CacheMaxEntries) * 10, // ~10x expected items
		MaxCost:     int64(cfg.CacheMaxEntries),
		BufferItems: 64,
	})
	if err != nil {
		return nil, services.WrapInternal("failed to create directory cache", err)
	}

	return &Service{
		schools: schools,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// BySubdomain retrieves the directory record for a subdomain,
// case-insensitively. Unknown subdomains return services.ErrSchoolNotFound;
// storage failures come back as internal errors, never conflated with
// not-found.
func (s *Service) BySubdomain(ctx context.Context, subdomain string) (*Record, error) {
	subdomain = strings.TrimSpace(subdomain)
	key := subdomainKey(subdomain)

	if record, found := s.cache.Get(key); found {
		s.logger.Debug("directory cache hit", zap.String("key", key))
		return record, nil
	}

	school, err := s.schools.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}

	return s.load(ctx, school)
}

// ByID retrieves the directory record for a school id
func (s *Service) ByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	key := idKey(id)

	if record, found := s.cache.Get(key); found {
		s.logger.Debug("directory cache hit", zap.String("key", key))
		return record, nil
	}

	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.load(ctx, school)
}

// load builds the record for a freshly fetched school and caches it under
// both of its keys so the next lookup hits regardless of which identifier
// it uses.
func (s *Service) load(ctx context.Context, school *models.School) (*Record, error) {
	modules, err := s.schools.EnabledModules(ctx, school.ID)
	if err != nil {
		return nil, err
	}

	if len(modules) == 0 {
		configured, err := s.schools.ModulesConfigured(ctx, school.ID)
		if err != nil {
			return nil, err
		}
		if !configured {
			// No configuration rows at all. Falling back to the default set
			// keeps unconfigured schools usable, but it grants
			// sis+finance+academic without anyone having chosen that, so it
			// is logged loudly. A school whose admin disabled every module
			// has rows and does not fall through here.
			modules = models.DefaultModules()
			s.logger.Warn("school has no module configuration, applying default set",
				zap.String("school_id", school.ID.String()),
				zap.String("subdomain", school.Subdomain),
				zap.Strings("modules", modules))
		}
	}

	record := &Record{
		School:  *school,
		Modules: modules,
	}

	s.cache.SetWithTTL(subdomainKey(school.Subdomain), record, 1, s.cfg.CacheTTL)
	s.cache.SetWithTTL(idKey(school.ID), record, 1, s.cfg.CacheTTL)

	s.logger.Debug("directory cache miss, loaded from storage",
		zap.String("school_id", school.ID.String()),
		zap.String("subdomain", school.Subdomain),
		zap.Int("modules", len(modules)))

	return record, nil
}

// Invalidate evicts a school from the cache. Every admin mutation of a
// school record must call this so the next request observes the change
// instead of riding out the TTL.
func (s *Service) Invalidate(id uuid.UUID, subdomain string) {
	s.cache.Del(idKey(id))
	s.cache.Del(subdomainKey(strings.TrimSpace(subdomain)))
	s.logger.Debug("invalidated directory cache",
		zap.String("school_id", id.String()),
		zap.String("subdomain", subdomain))
}

// Close shuts down the cache and releases resources
func (s *Service) Close() {
	s.cache.Close()
}

// subdomainKey canonicalizes to lowercase so lookups, loads, and
// invalidations all land on the same entry.
func subdomainKey(subdomain string) string {
	return "sub:" + strings.ToLower(subdomain)
}

func idKey(id uuid.UUID) string {
	return "id:" + id.String()
}
