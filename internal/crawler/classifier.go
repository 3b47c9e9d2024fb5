package crawler

import (
	"github.com/aidengarrett501/tr3-vrcrawler/internal/bungie"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
)

// Activity type hashes the manifest tags dungeons with. Raids carry an
// explicit isRaid flag instead.
var dungeonTypeHashes = map[uint32]struct{}{
	103: {},
	105: {},
}

// Category classifies a definition as raid, dungeon or other.
func Category(def *bungie.ActivityDefinition) string {
	if def == nil {
		return models.CategoryOther
	}
	if def.IsRaid {
		return models.CategoryRaid
	}
	if _, ok := dungeonTypeHashes[def.ActivityTypeHash]; ok {
		return models.CategoryDungeon
	}
	return models.CategoryOther
}

// IsTracked reports whether the category qualifies for persistence.
func IsTracked(category string) bool {
	return category == models.CategoryRaid || category == models.CategoryDungeon
}

// IsCompleted reports whether the player's entry marks the run as
// completed.
func IsCompleted(entry *bungie.PGCREntry) bool {
	return entry.Value("completed") == 1
}

// IsFlawless reports whether no fireteam member died. An empty roster is
// not flawless; there is nobody the claim could hold for.
func IsFlawless(report *bungie.PGCR) bool {
	if len(report.Entries) == 0 {
		return false
	}
	for i := range report.Entries {
		if report.Entries[i].Value("deaths") != 0 {
			return false
		}
	}
	return true
}

// EntryStats extracts the per-player slice of a report entry.
func EntryStats(entry *bungie.PGCREntry) models.ActivityStats {
	return models.ActivityStats{
		Kills:   int(entry.Value("kills")),
		Deaths:  int(entry.Value("deaths")),
		KDRatio: entry.Value("killsDeathsRatio"),
	}
}

// FindEntry locates a player's entry within a report, nil when absent.
func FindEntry(report *bungie.PGCR, membershipID string) *bungie.PGCREntry {
	for i := range report.Entries {
		if report.Entries[i].Player.DestinyUserInfo.MembershipID == membershipID {
			return &report.Entries[i]
		}
	}
	return nil
}
