package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CategoryRaid    = "raid"
	CategoryDungeon = "dungeon"
	CategoryOther   = "other"
)

// ActivityRecord is one completed raid or dungeon run, keyed by the PGCR
// instance id. Records are write-once; the primary key doubles as the
// dedup boundary for concurrent handlers.
type ActivityRecord struct {
	InstanceID      string         `json:"instanceId" gorm:"primaryKey"`
	Name            string         `json:"name"`
	Category        string         `json:"category" gorm:"index"`
	Kills           int            `json:"kills"`
	Deaths          int            `json:"deaths"`
	KDRatio         float64        `json:"kdRatio"`
	Timestamp       time.Time      `json:"timestamp"`
	ActivityHash    uint32         `json:"activityHash"`
	UserID          string         `json:"userId" gorm:"index"`
	Completed       bool           `json:"completed"`
	Flawless        bool           `json:"isFlawless"`
	DurationSeconds int            `json:"durationSeconds"`
	FireteamSize    int            `json:"fireteamSize"`
	StartTime       time.Time      `json:"startTime"`
	EndTime         time.Time      `json:"endTime"`
	Fireteam        datatypes.JSON `json:"fireteam"`
}

// FireteamMember is one roster entry embedded as JSON on ActivityRecord.
type FireteamMember struct {
	MembershipID   string  `json:"membershipId"`
	DisplayName    string  `json:"displayName"`
	MembershipType int     `json:"membershipType"`
	Platform       string  `json:"platform"`
	Kills          int     `json:"kills"`
	Deaths         int     `json:"deaths"`
	KDRatio        float64 `json:"kdRatio"`
}

// ActivityStats is the per-player slice of a report that feeds the
// leaderboard fold.
type ActivityStats struct {
	Kills   int
	Deaths  int
	KDRatio float64
}
