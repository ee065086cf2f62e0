package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soloquest/internal/engine"
)

// rawDocument is the loose decoding of a persisted record of unknown schema
// revision. Each legacy shape gets its own upgrade func below; Load runs
// them in sequence. Every branch is defensive: absent or malformed fields
// default, they never fail the load.
type rawDocument struct {
	TotalXP   *float64                   `json:"totalXP"`
	XP        *float64                   `json:"xp"`
	Level     *float64                   `json:"level"`
	Stats     map[string]json.RawMessage `json:"stats"`
	Todos     []json.RawMessage          `json:"todos"`
	MiscTodos []rawLifeTask              `json:"miscTodos"`
	Boosts    json.RawMessage            `json:"boosts"`
	History   []rawHistoryEntry          `json:"history"`
	LastReset string                     `json:"lastReset"`
}

type rawQuest struct {
	ID             string         `json:"id"`
	Text           string         `json:"text"`
	XP             *int           `json:"xp"`
	BaseXP         *int           `json:"baseXP"`
	StatType       string         `json:"statType"`
	StatTypes      []string       `json:"statTypes"`
	Completed      bool           `json:"completed"`
	AwardedXP      *int           `json:"awardedXP"`
	AppliedBoosts  []AppliedBoost `json:"appliedBoosts"`
	HistoryEntryID *string        `json:"historyEntryId"`
}

type rawLifeTask struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	Difficulty     *int       `json:"difficultyLevel"`
	LegacyDiff     *int       `json:"difficulty"`
	BoostStat      string     `json:"boostStatType"`
	Completed      bool       `json:"completed"`
	BoostExpiresAt *time.Time `json:"boostExpiresAt"`
	LegacyExpires  *time.Time `json:"expiresAt"`
}

type rawHistoryEntry struct {
	ID            json.RawMessage `json:"id"`
	Text          string          `json:"text"`
	XP            *int            `json:"xp"`
	BaseXP        int             `json:"baseXP"`
	BoostXP       int             `json:"boostXP"`
	TotalXP       *int            `json:"totalXP"`
	StatTypes     []string        `json:"statTypes"`
	AppliedBoosts []AppliedBoost  `json:"appliedBoosts"`
	CompletedAt   time.Time       `json:"completedAt"`
}

// legacyBoost is the per-stat boost object from the oldest revision, which
// kept at most one boost per stat in a mapping.
type legacyBoost struct {
	Percentage int             `json:"percentage"`
	ExpiresAt  time.Time       `json:"expiresAt"`
	SourceID   json.RawMessage `json:"sourceId"`
}

// Load normalizes raw stored bytes of any prior schema revision into the
// current document. Malformed input falls back to the empty default: logged,
// never fatal.
func Load(raw []byte, now time.Time, log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	if len(raw) == 0 {
		return Default(now)
	}

	var rd rawDocument
	if err := json.Unmarshal(raw, &rd); err != nil {
		log.Warn("persisted data is malformed, starting from the default document", zap.Error(err))
		return Default(now)
	}

	doc := Default(now)
	upgrades := []func(*rawDocument, *Document){
		upgradeProfileXP,
		upgradeStats,
		upgradeQuests,
		upgradeLifeTasks,
		upgradeBoosts,
		upgradeHistory,
		upgradeLastReset,
	}
	for _, up := range upgrades {
		up(&rd, doc)
	}
	return doc
}

// upgradeProfileXP handles the flat {xp, level} revision: the stored level
// is folded back into cumulative XP.
func upgradeProfileXP(rd *rawDocument, doc *Document) {
	if rd.TotalXP != nil {
		doc.TotalXP = max(0, int(*rd.TotalXP))
		return
	}
	xp := 0
	if rd.XP != nil {
		xp = int(*rd.XP)
	}
	level := 1
	if rd.Level != nil {
		level = int(*rd.Level)
	}
	if level > 1 {
		xp += engine.XPRequiredForLevel(level)
	}
	doc.TotalXP = max(0, xp)
}

// upgradeStats handles per-stat values stored either as {totalXP} or as a
// bare numeric level.
func upgradeStats(rd *rawDocument, doc *Document) {
	read := func(key string) StatXP {
		raw, ok := rd.Stats[key]
		if !ok {
			return StatXP{}
		}
		var cur StatXP
		if err := json.Unmarshal(raw, &cur); err == nil && cur.TotalXP != 0 {
			return StatXP{TotalXP: max(0, cur.TotalXP)}
		}
		var level float64
		if err := json.Unmarshal(raw, &level); err == nil {
			return StatXP{TotalXP: engine.XPRequiredForLevel(int(level))}
		}
		return StatXP{TotalXP: max(0, cur.TotalXP)}
	}
	doc.Stats = Stats{
		Strength:  read("strength"),
		Career:    read("career"),
		Willpower: read("willpower"),
	}
}

// upgradeQuests handles the singular statType revision and the legacy "xp"
// field name, and synthesizes ids where absent.
func upgradeQuests(rd *rawDocument, doc *Document) {
	for _, raw := range rd.Todos {
		var rq rawQuest
		if err := json.Unmarshal(raw, &rq); err != nil {
			continue
		}

		q := Quest{
			ID:             rq.ID,
			Text:           rq.Text,
			StatTypes:      rq.StatTypes,
			Completed:      rq.Completed,
			AwardedXP:      rq.AwardedXP,
			AppliedBoosts:  rq.AppliedBoosts,
			HistoryEntryID: rq.HistoryEntryID,
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		switch {
		case rq.BaseXP != nil:
			q.BaseXP = *rq.BaseXP
		case rq.XP != nil:
			q.BaseXP = *rq.XP
		}
		if q.StatTypes == nil {
			if rq.StatType != "" {
				q.StatTypes = []string{rq.StatType}
			} else {
				q.StatTypes = []string{}
			}
		}
		if !q.Completed {
			q.AwardedXP = nil
			q.AppliedBoosts = nil
			q.HistoryEntryID = nil
		}
		doc.Todos = append(doc.Todos, q)
	}
}

// upgradeLifeTasks synthesizes missing ids and folds legacy field names.
func upgradeLifeTasks(rd *rawDocument, doc *Document) {
	for _, rt := range rd.MiscTodos {
		t := LifeTask{
			ID:             rt.ID,
			Text:           rt.Text,
			BoostStat:      rt.BoostStat,
			Completed:      rt.Completed,
			BoostExpiresAt: rt.BoostExpiresAt,
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		switch {
		case rt.Difficulty != nil:
			t.Difficulty = *rt.Difficulty
		case rt.LegacyDiff != nil:
			t.Difficulty = *rt.LegacyDiff
		default:
			t.Difficulty = 3
		}
		if t.BoostExpiresAt == nil {
			t.BoostExpiresAt = rt.LegacyExpires
		}
		doc.MiscTodos = append(doc.MiscTodos, t)
	}
}

// upgradeBoosts accepts either the current boost array or the legacy
// mapping-per-stat object, which is flattened into the array with
// synthesized ids and a legacy source tag.
func upgradeBoosts(rd *rawDocument, doc *Document) {
	if len(rd.Boosts) == 0 {
		return
	}

	var list []Boost
	if err := json.Unmarshal(rd.Boosts, &list); err == nil {
		for i := range list {
			if list[i].ID == "" {
				list[i].ID = uuid.NewString()
			}
		}
		doc.Boosts = append(doc.Boosts, list...)
		return
	}

	var byStat map[string]*legacyBoost
	if err := json.Unmarshal(rd.Boosts, &byStat); err != nil {
		return
	}
	for stat, lb := range byStat {
		if lb == nil {
			continue
		}
		sourceID := ""
		if len(lb.SourceID) > 0 {
			var s string
			if err := json.Unmarshal(lb.SourceID, &s); err == nil {
				sourceID = s
			} else {
				sourceID = string(lb.SourceID)
			}
		}
		doc.Boosts = append(doc.Boosts, Boost{
			ID:           uuid.NewString(),
			SourceTaskID: sourceID,
			StatType:     stat,
			Percentage:   lb.Percentage,
			ExpiresAt:    lb.ExpiresAt,
			SourceText:   "legacy boost",
		})
	}
}

// upgradeHistory accepts legacy numeric ids and the legacy "xp" total field,
// and trims to the ledger cap keeping the newest entries.
func upgradeHistory(rd *rawDocument, doc *Document) {
	for _, re := range rd.History {
		e := HistoryEntry{
			Text:          re.Text,
			BaseXP:        re.BaseXP,
			BoostXP:       re.BoostXP,
			StatTypes:     re.StatTypes,
			AppliedBoosts: re.AppliedBoosts,
			CompletedAt:   re.CompletedAt,
		}
		if e.StatTypes == nil {
			e.StatTypes = []string{}
		}
		switch {
		case re.TotalXP != nil:
			e.TotalXP = *re.TotalXP
		case re.XP != nil:
			e.TotalXP = *re.XP
		}
		if len(re.ID) > 0 {
			var s string
			if err := json.Unmarshal(re.ID, &s); err == nil && s != "" {
				e.ID = s
			} else {
				e.ID = string(re.ID)
			}
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		doc.History = append(doc.History, e)
	}
	if len(doc.History) > historyCap {
		doc.History = doc.History[len(doc.History)-historyCap:]
	}
}

func upgradeLastReset(rd *rawDocument, doc *Document) {
	if rd.LastReset != "" {
		doc.LastReset = rd.LastReset
	}
}

// ImportError rejects an imported document before anything is replaced.
type ImportError struct {
	Reason string
}

func (e ImportError) Error() string {
	return fmt.Sprintf("import rejected: %s", e.Reason)
}

// ParseImport validates an import payload (totalXP numeric, stats present)
// and normalizes it through the same migration chain. The returned document
// has lastReset moved to today; the caller replaces the store wholesale and
// sweeps expired boosts afterwards.
func ParseImport(raw []byte, now time.Time, log *zap.Logger) (*Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, ImportError{Reason: "not a valid JSON document"}
	}
	var totalXP float64
	if rawXP, ok := probe["totalXP"]; !ok || json.Unmarshal(rawXP, &totalXP) != nil {
		return nil, ImportError{Reason: "totalXP is missing or not a number"}
	}
	if _, ok := probe["stats"]; !ok {
		return nil, ImportError{Reason: "stats section is missing"}
	}

	doc := Load(raw, now, log)
	doc.LastReset = now.Format(dateLayout)
	return doc, nil
}
