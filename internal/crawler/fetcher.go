package crawler

import (
	"context"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/bungie"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
)

// BungieAPI is the slice of the Platform API the crawler consumes.
// Implemented by bungie.Client.
type BungieAPI interface {
	GetProfileCharacters(ctx context.Context, membershipType int, membershipID string) ([]bungie.CharacterComponent, error)
	ListActivityPage(ctx context.Context, membershipType int, membershipID, characterID string, page int) ([]bungie.ActivityHistoryItem, error)
	GetPGCR(ctx context.Context, instanceID string) (*bungie.PGCR, []byte, error)
	GetDefinition(ctx context.Context, hash uint32) (*bungie.ActivityDefinition, error)
	GetManifestDefinitionTable(ctx context.Context) (map[uint32]*bungie.ActivityDefinition, error)
}

// Fetcher walks a player's full activity history: every character, page
// by page, until a page comes back empty.
type Fetcher struct {
	api    BungieAPI
	logger providers.Logger
}

func NewFetcher(api BungieAPI, logger providers.Logger) *Fetcher {
	return &Fetcher{api: api, logger: logger}
}

// FetchAll returns the concatenated history for one player, ordered per
// character in page order, together with the character list for profile
// refresh. Any request failure aborts the whole fetch and discards
// partial pages; the caller must treat an error as "no data obtained,
// retry later", never as an empty history.
func (f *Fetcher) FetchAll(ctx context.Context, player *models.Player) ([]bungie.ActivityHistoryItem, []bungie.CharacterComponent, error) {
	characters, err := f.api.GetProfileCharacters(ctx, player.MembershipType, player.MembershipID)
	if err != nil {
		return nil, nil, err
	}

	var activities []bungie.ActivityHistoryItem
	for _, character := range characters {
		for page := 0; ; page++ {
			items, err := f.api.ListActivityPage(ctx, player.MembershipType, player.MembershipID, character.CharacterID, page)
			if err != nil {
				return nil, nil, err
			}
			if len(items) == 0 {
				break
			}
			activities = append(activities, items...)
		}
	}

	f.logger.Infof(providers.TypeCrawler, "Fetched %d activities for %s across %d characters",
		len(activities), player.MembershipID, len(characters))
	return activities, characters, nil
}
