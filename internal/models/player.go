package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Player is one Destiny membership tracked by the crawler. The record is
// created on first sighting (seed list or fireteam discovery) and never
// deleted; LastProcessedActivityID is the durable resume cursor.
type Player struct {
	MembershipID            string         `json:"membershipId" gorm:"primaryKey"`
	DisplayName             string         `json:"displayName"`
	MembershipType          int            `json:"membershipType"`
	LastProcessedActivityID string         `json:"lastProcessedActivityId"`
	LastUpdated             time.Time      `json:"lastUpdated"`
	Guardians               datatypes.JSON `json:"guardians"`
}

// Guardian is one character owned by a player, embedded as JSON on Player.
type Guardian struct {
	CharacterID string `json:"characterId"`
	Class       int    `json:"class"`
	LightLevel  int    `json:"lightLevel"`
}

// NewPlaceholderPlayer builds the minimal record stored for a fireteam
// member discovered before their profile was ever crawled.
func NewPlaceholderPlayer(membershipID string, membershipType int) *Player {
	return &Player{
		MembershipID:   membershipID,
		DisplayName:    fmt.Sprintf("Unknown#%s", membershipID),
		MembershipType: membershipType,
		LastUpdated:    time.Now().UTC(),
	}
}
