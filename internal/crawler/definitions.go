package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/bungie"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

const UnknownActivityName = "Unknown Activity"

// DefinitionService caches the bulk activity definition table with a TTL
// and resolves individual hashes against it. A hash missing from a fresh
// table falls back to a direct single-item fetch, which covers
// definitions newer than the bulk table. Resolution never fails: both
// paths exhausted yields a sentinel definition instead.
type DefinitionService struct {
	api     BungieAPI
	ttl     time.Duration
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	mu       sync.RWMutex
	table    map[uint32]*bungie.ActivityDefinition
	loadedAt time.Time

	now func() time.Time
}

func NewDefinitionService(conf *structures.Config, api BungieAPI, logger providers.Logger, metrics providers.MetricsProviderInterface) *DefinitionService {
	return &DefinitionService{
		api:     api,
		ttl:     conf.Crawler.DefinitionTTL,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *DefinitionService) lookup(hash uint32) (*bungie.ActivityDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil || s.now().Sub(s.loadedAt) >= s.ttl {
		return nil, false
	}
	def, ok := s.table[hash]
	return def, ok
}

// refresh refetches the bulk table. Concurrent misses may trigger
// overlapping refreshes; the fetch is idempotent and the last writer
// simply overwrites the same slot.
func (s *DefinitionService) refresh(ctx context.Context) {
	table, err := s.api.GetManifestDefinitionTable(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeCrawler, "Definition table refresh failed: %s", err)
		return
	}

	s.mu.Lock()
	s.table = table
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.logger.Infof(providers.TypeCrawler, "Cached %d activity definitions", len(table))
}

// Resolve returns the definition for a hash, the sentinel unknown
// definition when neither the bulk table nor the direct lookup knows it.
func (s *DefinitionService) Resolve(ctx context.Context, hash uint32) *bungie.ActivityDefinition {
	if def, ok := s.lookup(hash); ok {
		s.metrics.IncDefinitionCacheHits()
		return def
	}
	s.metrics.IncDefinitionCacheMisses()

	expired := func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.table == nil || s.now().Sub(s.loadedAt) >= s.ttl
	}()
	if expired {
		s.refresh(ctx)
		if def, ok := s.lookup(hash); ok {
			return def
		}
	}

	def, err := s.api.GetDefinition(ctx, hash)
	if err != nil {
		s.logger.Warnf(providers.TypeCrawler, "No definition for hash %d: %s", hash, err)
		return UnknownDefinition(hash)
	}
	return def
}

// UnknownDefinition is the sentinel returned when a definition cannot be
// resolved; it classifies as "other" so ingestion keeps moving.
func UnknownDefinition(hash uint32) *bungie.ActivityDefinition {
	def := &bungie.ActivityDefinition{Hash: hash}
	def.DisplayProperties.Name = UnknownActivityName
	return def
}
