package storage

import "time"

const ProfileKey = "main_user"

// Profile holds cumulative XP for the overall level and the three stats.
// Levels are always derived from XP, never stored.
type Profile struct {
	Key         string
	TotalXP     int
	XPStrength  int
	XPCareer    int
	XPWillpower int
}

// AppliedBoost is the snapshot of a boost contribution captured when a quest
// is completed. Stored as JSON on the quest and on its history entry.
type AppliedBoost struct {
	StatType   string `json:"statType"`
	Percentage int    `json:"percentage"`
	SourceText string `json:"sourceText"`
}

// Quest is a recurring daily task. AwardedXP, AppliedBoosts and
// HistoryEntryID are set iff Completed is true.
type Quest struct {
	ID             string
	Text           string
	BaseXP         int
	StatTypes      []string
	Completed      bool
	AwardedXP      *int
	AppliedBoosts  []AppliedBoost
	HistoryEntryID *string
	CreatedAt      time.Time
}

// LifeTask is a one-off task whose completion mints a boost. Completion is
// terminal. BoostExpiresAt is display-only; the boosts table is authoritative.
type LifeTask struct {
	ID             string
	Text           string
	Difficulty     int
	BoostStat      string
	Completed      bool
	BoostExpiresAt *time.Time
	CreatedAt      time.Time
}

// Boost is a time-limited percentage bonus. It back-references its source
// life task by id only, so revocation works by id-matching.
type Boost struct {
	ID           string
	SourceTaskID string
	StatType     string
	Percentage   int
	ExpiresAt    time.Time
	SourceText   string
}

type HistoryEntry struct {
	ID            string
	Text          string
	BaseXP        int
	BoostXP       int
	TotalXP       int
	StatTypes     []string
	AppliedBoosts []AppliedBoost
	CompletedAt   time.Time
}
