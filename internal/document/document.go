// Package document is the serialized-document boundary of the tracker: the
// current JSON schema, the migration chain that upgrades legacy saves, and
// the adapters between the document and the SQLite store. The document is
// the transfer format (export/import, legacy saves); the store is canonical
// at runtime.
package document

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Document is the full persisted record, current schema.
type Document struct {
	TotalXP   int            `json:"totalXP"`
	Stats     Stats          `json:"stats"`
	Todos     []Quest        `json:"todos"`
	MiscTodos []LifeTask     `json:"miscTodos"`
	Boosts    []Boost        `json:"boosts"`
	History   []HistoryEntry `json:"history"`
	LastReset string         `json:"lastReset"`
}

type Stats struct {
	Strength  StatXP `json:"strength"`
	Career    StatXP `json:"career"`
	Willpower StatXP `json:"willpower"`
}

type StatXP struct {
	TotalXP int `json:"totalXP"`
}

type Quest struct {
	ID             string         `json:"id"`
	Text           string         `json:"text"`
	BaseXP         int            `json:"baseXP"`
	StatTypes      []string       `json:"statTypes"`
	Completed      bool           `json:"completed"`
	AwardedXP      *int           `json:"awardedXP,omitempty"`
	AppliedBoosts  []AppliedBoost `json:"appliedBoosts,omitempty"`
	HistoryEntryID *string        `json:"historyEntryId,omitempty"`
}

type AppliedBoost struct {
	StatType   string `json:"statType"`
	Percentage int    `json:"percentage"`
	SourceText string `json:"sourceText"`
}

type LifeTask struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	Difficulty     int        `json:"difficultyLevel"`
	BoostStat      string     `json:"boostStatType"`
	Completed      bool       `json:"completed"`
	BoostExpiresAt *time.Time `json:"boostExpiresAt,omitempty"`
}

type Boost struct {
	ID           string    `json:"id"`
	SourceTaskID string    `json:"sourceTaskId"`
	StatType     string    `json:"statType"`
	Percentage   int       `json:"percentage"`
	ExpiresAt    time.Time `json:"expiresAt"`
	SourceText   string    `json:"sourceText"`
}

type HistoryEntry struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	BaseXP        int            `json:"baseXP"`
	BoostXP       int            `json:"boostXP"`
	TotalXP       int            `json:"totalXP"`
	StatTypes     []string       `json:"statTypes"`
	AppliedBoosts []AppliedBoost `json:"appliedBoosts,omitempty"`
	CompletedAt   time.Time      `json:"completedAt"`
}

// Default returns the empty first-run document.
func Default(now time.Time) *Document {
	return &Document{
		Todos:     []Quest{},
		MiscTodos: []LifeTask{},
		Boosts:    []Boost{},
		History:   []HistoryEntry{},
		LastReset: now.Format(dateLayout),
	}
}

// Marshal renders the document as the pretty-printed export artifact.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// ExportFileName is the datestamped name of the export artifact.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("soloquest-%s.json", now.Format(dateLayout))
}
