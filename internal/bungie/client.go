package bungie

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

// Client talks to the Bungie Platform API. Every request takes one key
// from the rotating pool and passes through a shared rate limiter, so
// concurrent batch handlers stay inside the remote quota together.
type Client struct {
	platformURL string
	contentURL  string
	keys        []string
	keyCursor   atomic.Uint64
	pageSize    int
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Client {
	return &Client{
		platformURL: conf.Bungie.PlatformURL,
		contentURL:  conf.Bungie.ContentURL,
		keys:        conf.Bungie.APIKeys,
		pageSize:    conf.Crawler.PageSize,
		httpClient:  &http.Client{Timeout: conf.Bungie.RequestTimeout},
		limiter:     rate.NewLimiter(rate.Limit(conf.Bungie.RequestsPerSecond), 1),
		logger:      logger,
		metrics:     metrics,
	}
}

func (c *Client) nextKey() string {
	idx := c.keyCursor.Inc() - 1
	return c.keys[idx%uint64(len(c.keys))]
}

// fetch issues one authenticated GET and returns the raw body. endpoint
// is the metrics label, url the full request target.
func (c *Client) fetch(ctx context.Context, endpoint, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.nextKey())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncBungieRequests(endpoint, 0)
		return nil, fmt.Errorf("bungie request %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.metrics.IncBungieRequests(endpoint, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bungie response %s read failed: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bungie request %s returned status %d", endpoint, resp.StatusCode)
	}
	return body, nil
}

func decodeEnvelope[T any](body []byte) (T, error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("bungie envelope decode failed: %w", err)
	}
	return env.Response, nil
}

// GetProfileCharacters returns the characters owned by a membership,
// sorted by character id so the enumeration order is identical on every
// call. The resume cursor assumes a stable fetch sequence across runs.
func (c *Client) GetProfileCharacters(ctx context.Context, membershipType int, membershipID string) ([]CharacterComponent, error) {
	url := fmt.Sprintf("%s/Destiny2/%d/Profile/%s/?components=Characters", c.platformURL, membershipType, membershipID)
	body, err := c.fetch(ctx, "profile", url)
	if err != nil {
		return nil, err
	}

	profile, err := decodeEnvelope[profileResponse](body)
	if err != nil {
		return nil, err
	}

	characters := make([]CharacterComponent, 0, len(profile.Characters.Data))
	for id, character := range profile.Characters.Data {
		if character.CharacterID == "" {
			character.CharacterID = id
		}
		characters = append(characters, character)
	}
	sort.Slice(characters, func(i, j int) bool {
		return characters[i].CharacterID < characters[j].CharacterID
	})
	return characters, nil
}

// ListActivityPage returns one page of a character's activity history,
// empty when the history is exhausted.
func (c *Client) ListActivityPage(ctx context.Context, membershipType int, membershipID, characterID string, page int) ([]ActivityHistoryItem, error) {
	url := fmt.Sprintf("%s/Destiny2/%d/Account/%s/Character/%s/Stats/Activities/?count=%d&page=%d",
		c.platformURL, membershipType, membershipID, characterID, c.pageSize, page)
	body, err := c.fetch(ctx, "activities", url)
	if err != nil {
		return nil, err
	}

	history, err := decodeEnvelope[activityHistoryResponse](body)
	if err != nil {
		return nil, err
	}
	c.metrics.IncPagesFetched()
	return history.Activities, nil
}

// GetPGCR fetches the carnage report for one instance. The raw response
// body is returned alongside the decoded report for archival.
func (c *Client) GetPGCR(ctx context.Context, instanceID string) (*PGCR, []byte, error) {
	url := fmt.Sprintf("%s/Destiny2/Stats/PostGameCarnageReport/%s/", c.platformURL, instanceID)
	body, err := c.fetch(ctx, "pgcr", url)
	if err != nil {
		return nil, nil, err
	}

	report, err := decodeEnvelope[*PGCR](body)
	if err != nil {
		return nil, nil, err
	}
	if report == nil {
		return nil, nil, fmt.Errorf("empty carnage report for instance %s", instanceID)
	}
	return report, body, nil
}

// GetDefinition fetches a single activity definition directly by hash.
func (c *Client) GetDefinition(ctx context.Context, hash uint32) (*ActivityDefinition, error) {
	url := fmt.Sprintf("%s/Destiny2/Manifest/DestinyActivityDefinition/%d/", c.platformURL, hash)
	body, err := c.fetch(ctx, "definition", url)
	if err != nil {
		return nil, err
	}

	def, err := decodeEnvelope[*ActivityDefinition](body)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("no definition for hash %d", hash)
	}
	return def, nil
}

// GetManifestDefinitionTable downloads the full activity definition table
// referenced by the current manifest.
func (c *Client) GetManifestDefinitionTable(ctx context.Context) (map[uint32]*ActivityDefinition, error) {
	url := c.platformURL + "/Destiny2/Manifest/"
	body, err := c.fetch(ctx, "manifest", url)
	if err != nil {
		return nil, err
	}

	manifest, err := decodeEnvelope[manifestResponse](body)
	if err != nil {
		return nil, err
	}

	paths, ok := manifest.JSONWorldComponentContentPaths["en"]
	if !ok {
		return nil, fmt.Errorf("manifest has no english component paths")
	}
	tablePath, ok := paths["DestinyActivityDefinition"]
	if !ok {
		return nil, fmt.Errorf("manifest has no activity definition path")
	}

	tableBody, err := c.fetch(ctx, "manifest_table", c.contentURL+tablePath)
	if err != nil {
		return nil, err
	}

	var raw map[string]*ActivityDefinition
	if err := json.Unmarshal(tableBody, &raw); err != nil {
		return nil, fmt.Errorf("definition table decode failed: %w", err)
	}

	table := make(map[uint32]*ActivityDefinition, len(raw))
	for key, def := range raw {
		hash, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			c.logger.Warnf(providers.TypeBungie, "Skipping malformed definition key %q", key)
			continue
		}
		table[uint32(hash)] = def
	}
	return table, nil
}
