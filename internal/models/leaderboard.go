package models

import "time"

// LeaderboardRow holds the cumulative totals for one player. All updates
// are increments or running maxima, so applying activities in any order
// converges to the same row.
type LeaderboardRow struct {
	PlayerID      string    `json:"playerId" gorm:"primaryKey"`
	DisplayName   string    `json:"displayName"`
	TotalRaids    int       `json:"totalRaids"`
	TotalDungeons int       `json:"totalDungeons"`
	FlawlessRuns  int       `json:"flawlessRuns"`
	TotalKills    int       `json:"totalKills"`
	TotalDeaths   int       `json:"totalDeaths"`
	BestKD        float64   `json:"bestKD"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RankedRow is a leaderboard row with its 1-based rank, as served by the
// API and published to Discord.
type RankedRow struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"displayName"`
	BestKD      string `json:"bestKD"`
}
