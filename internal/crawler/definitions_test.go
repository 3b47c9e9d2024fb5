package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/bungie"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/testutil"
)

func definitionConfig(ttl time.Duration) *structures.Config {
	return &structures.Config{
		Crawler: structures.CrawlerConfig{DefinitionTTL: ttl},
	}
}

func TestDefinitionService_BulkTableServesLookups(t *testing.T) {
	bulkFetches := 0
	api := &testutil.StubBungie{
		ManifestFn: func(_ context.Context) (map[uint32]*bungie.ActivityDefinition, error) {
			bulkFetches++
			return map[uint32]*bungie.ActivityDefinition{
				100: raidDef(100, "Last Wish"),
				200: dungeonDef(200, 103, "Shattered Throne"),
			}, nil
		},
	}

	metrics := &testutil.MockMetrics{}
	s := NewDefinitionService(definitionConfig(6*time.Hour), api, &testutil.MockLogger{}, metrics)

	def := s.Resolve(context.Background(), 100)
	assert.Equal(t, "Last Wish", def.DisplayProperties.Name)

	def = s.Resolve(context.Background(), 200)
	assert.Equal(t, "Shattered Throne", def.DisplayProperties.Name)

	// One cold-start refetch covers both lookups.
	assert.Equal(t, 1, bulkFetches)
	assert.Equal(t, 1, metrics.DefinitionCacheHits)
	assert.Equal(t, 1, metrics.DefinitionCacheMisses)
}

func TestDefinitionService_ExpiredTableRefetchesOnce(t *testing.T) {
	bulkFetches := 0
	api := &testutil.StubBungie{
		ManifestFn: func(_ context.Context) (map[uint32]*bungie.ActivityDefinition, error) {
			bulkFetches++
			return map[uint32]*bungie.ActivityDefinition{100: raidDef(100, "Last Wish")}, nil
		},
	}

	s := NewDefinitionService(definitionConfig(6*time.Hour), api, &testutil.MockLogger{}, &testutil.MockMetrics{})

	current := time.Now()
	s.now = func() time.Time { return current }

	s.Resolve(context.Background(), 100)
	assert.Equal(t, 1, bulkFetches)

	// Within the TTL the table is reused.
	current = current.Add(5 * time.Hour)
	s.Resolve(context.Background(), 100)
	assert.Equal(t, 1, bulkFetches)

	// Past the TTL the next lookup refetches, exactly once.
	current = current.Add(2 * time.Hour)
	s.Resolve(context.Background(), 100)
	s.Resolve(context.Background(), 100)
	assert.Equal(t, 2, bulkFetches)
}

func TestDefinitionService_FreshTableMissFallsBackToDirectFetch(t *testing.T) {
	bulkFetches := 0
	api := &testutil.StubBungie{
		ManifestFn: func(_ context.Context) (map[uint32]*bungie.ActivityDefinition, error) {
			bulkFetches++
			return map[uint32]*bungie.ActivityDefinition{100: raidDef(100, "Last Wish")}, nil
		},
		DefinitionFn: func(_ context.Context, hash uint32) (*bungie.ActivityDefinition, error) {
			return raidDef(hash, "Crota's End"), nil
		},
	}

	s := NewDefinitionService(definitionConfig(6*time.Hour), api, &testutil.MockLogger{}, &testutil.MockMetrics{})

	s.Resolve(context.Background(), 100)

	// Hash 999 is newer than the bulk table; a fresh table is not
	// refetched for it.
	def := s.Resolve(context.Background(), 999)
	assert.Equal(t, "Crota's End", def.DisplayProperties.Name)
	assert.Equal(t, 1, bulkFetches)
}

func TestDefinitionService_BothPathsExhaustedYieldsSentinel(t *testing.T) {
	api := &testutil.StubBungie{
		ManifestFn: func(_ context.Context) (map[uint32]*bungie.ActivityDefinition, error) {
			return nil, errors.New("manifest unavailable")
		},
		DefinitionFn: func(_ context.Context, _ uint32) (*bungie.ActivityDefinition, error) {
			return nil, errors.New("not found")
		},
	}

	s := NewDefinitionService(definitionConfig(6*time.Hour), api, &testutil.MockLogger{}, &testutil.MockMetrics{})

	def := s.Resolve(context.Background(), 12345)
	assert.NotNil(t, def)
	assert.Equal(t, UnknownActivityName, def.DisplayProperties.Name)
	assert.Equal(t, uint32(12345), def.Hash)
	assert.Equal(t, models.CategoryOther, Category(def))
}

func TestUnknownDefinition_ClassifiesAsOther(t *testing.T) {
	def := UnknownDefinition(7)
	assert.Equal(t, uint32(7), def.Hash)
	assert.False(t, def.IsRaid)
	assert.Equal(t, models.CategoryOther, Category(def))
}
