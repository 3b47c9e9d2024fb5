package bungie

import "time"

// envelope is the outer wrapper every Platform endpoint returns.
type envelope[T any] struct {
	Response        T      `json:"Response"`
	ErrorCode       int    `json:"ErrorCode"`
	ErrorStatus     string `json:"ErrorStatus"`
	Message         string `json:"Message"`
	ThrottleSeconds int    `json:"ThrottleSeconds"`
}

type profileResponse struct {
	Characters struct {
		Data map[string]CharacterComponent `json:"data"`
	} `json:"characters"`
}

type CharacterComponent struct {
	CharacterID string `json:"characterId"`
	ClassType   int    `json:"classType"`
	Light       int    `json:"light"`
}

type activityHistoryResponse struct {
	Activities []ActivityHistoryItem `json:"activities"`
}

// ActivityHistoryItem is one row of a character's activity history page.
type ActivityHistoryItem struct {
	Period          time.Time       `json:"period"`
	ActivityDetails ActivityDetails `json:"activityDetails"`
}

type ActivityDetails struct {
	ReferenceID uint32 `json:"referenceId"`
	InstanceID  string `json:"instanceId"`
	Mode        int    `json:"mode"`
}

// PGCR is a post game carnage report: the per-player breakdown of one
// activity instance.
type PGCR struct {
	Period                  time.Time       `json:"period"`
	ActivityDetails         ActivityDetails `json:"activityDetails"`
	ActivityDurationSeconds int             `json:"activityDurationSeconds"`
	Entries                 []PGCREntry     `json:"entries"`
}

type PGCREntry struct {
	Player struct {
		DestinyUserInfo struct {
			MembershipID   string `json:"membershipId"`
			MembershipType int    `json:"membershipType"`
			DisplayName    string `json:"displayName"`
		} `json:"destinyUserInfo"`
	} `json:"player"`
	Values map[string]StatValue `json:"values"`
}

type StatValue struct {
	Basic struct {
		Value        float64 `json:"value"`
		DisplayValue string  `json:"displayValue"`
	} `json:"basic"`
}

// Value returns the basic numeric value of a named stat, zero when the
// stat is absent from the entry.
func (e *PGCREntry) Value(stat string) float64 {
	if v, ok := e.Values[stat]; ok {
		return v.Basic.Value
	}
	return 0
}

// ActivityDefinition is the manifest metadata for one activity type.
type ActivityDefinition struct {
	Hash              uint32 `json:"hash"`
	DisplayProperties struct {
		Name string `json:"name"`
	} `json:"displayProperties"`
	IsRaid           bool   `json:"isRaid"`
	ActivityTypeHash uint32 `json:"activityTypeHash"`
}

type manifestResponse struct {
	JSONWorldComponentContentPaths map[string]map[string]string `json:"jsonWorldComponentContentPaths"`
}

// PlatformName maps a membership type to the label stored on fireteam
// roster entries.
func PlatformName(membershipType int) string {
	switch membershipType {
	case 1:
		return "Xbox"
	case 2:
		return "PlayStation"
	case 3:
		return "Steam"
	case 5:
		return "Stadia"
	case 6:
		return "Epic"
	default:
		return "Unknown"
	}
}
