package document

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"soloquest/internal/engine"
)

var testNow = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func TestLoadEmptyAndMalformed(t *testing.T) {
	doc := Load(nil, testNow, nil)
	require.Equal(t, 0, doc.TotalXP)
	require.Empty(t, doc.Todos)
	require.Equal(t, "2026-04-10", doc.LastReset)

	doc = Load([]byte("{not json"), testNow, nil)
	require.Equal(t, Default(testNow), doc)
}

func TestLoadLegacyFlatXPAndLevel(t *testing.T) {
	doc := Load([]byte(`{"xp": 450, "level": 3}`), testNow, nil)
	require.Equal(t, 450+engine.XPRequiredForLevel(3), doc.TotalXP)

	// Level 1 adds nothing.
	doc = Load([]byte(`{"xp": 50, "level": 1}`), testNow, nil)
	require.Equal(t, 50, doc.TotalXP)

	// The current field wins when both are present.
	doc = Load([]byte(`{"totalXP": 700, "xp": 450, "level": 3}`), testNow, nil)
	require.Equal(t, 700, doc.TotalXP)
}

func TestLoadLegacyNumericStatLevels(t *testing.T) {
	doc := Load([]byte(`{"totalXP": 0, "stats": {"strength": 4, "career": {"totalXP": 90}, "willpower": 1}}`), testNow, nil)
	require.Equal(t, engine.XPRequiredForLevel(4), doc.Stats.Strength.TotalXP)
	require.Equal(t, 90, doc.Stats.Career.TotalXP)
	require.Equal(t, 0, doc.Stats.Willpower.TotalXP)
}

func TestLoadLegacyQuestShapes(t *testing.T) {
	raw := []byte(`{
		"totalXP": 0,
		"todos": [
			{"text": "old shape", "xp": 60, "statType": "strength"},
			{"id": "q-1", "text": "current", "baseXP": 80, "statTypes": ["career", "willpower"], "completed": false, "awardedXP": 99}
		]
	}`)
	doc := Load(raw, testNow, nil)
	require.Len(t, doc.Todos, 2)

	old := doc.Todos[0]
	require.NotEmpty(t, old.ID)
	require.Equal(t, 60, old.BaseXP)
	require.Equal(t, []string{"strength"}, old.StatTypes)

	cur := doc.Todos[1]
	require.Equal(t, "q-1", cur.ID)
	require.Equal(t, 80, cur.BaseXP)
	// Completion fields are scrubbed off pending quests.
	require.Nil(t, cur.AwardedXP)
}

func TestLoadLegacyLifeTasks(t *testing.T) {
	expiry := testNow.Add(12 * time.Hour)
	raw, err := json.Marshal(map[string]any{
		"totalXP": 0,
		"miscTodos": []map[string]any{
			{"text": "no id, legacy fields", "difficulty": 4, "boostStatType": "career", "completed": true, "expiresAt": expiry},
			{"id": "t-1", "text": "no difficulty", "boostStatType": "strength"},
		},
	})
	require.NoError(t, err)

	doc := Load(raw, testNow, nil)
	require.Len(t, doc.MiscTodos, 2)
	require.NotEmpty(t, doc.MiscTodos[0].ID)
	require.Equal(t, 4, doc.MiscTodos[0].Difficulty)
	require.NotNil(t, doc.MiscTodos[0].BoostExpiresAt)
	require.True(t, doc.MiscTodos[0].BoostExpiresAt.Equal(expiry))
	require.Equal(t, 3, doc.MiscTodos[1].Difficulty)
}

func TestLoadLegacyBoostMapping(t *testing.T) {
	raw := []byte(`{
		"totalXP": 0,
		"boosts": {
			"strength": {"percentage": 15, "expiresAt": "2026-04-11T00:00:00Z", "sourceId": 42},
			"career": {"percentage": 10, "expiresAt": "2026-04-12T00:00:00Z", "sourceId": "task-9"},
			"willpower": null
		}
	}`)
	doc := Load(raw, testNow, nil)
	require.Len(t, doc.Boosts, 2)

	byStat := map[string]Boost{}
	for _, b := range doc.Boosts {
		require.NotEmpty(t, b.ID)
		require.Equal(t, "legacy boost", b.SourceText)
		byStat[b.StatType] = b
	}
	require.Equal(t, 15, byStat["strength"].Percentage)
	require.Equal(t, "42", byStat["strength"].SourceTaskID)
	require.Equal(t, "task-9", byStat["career"].SourceTaskID)
}

func TestLoadCurrentBoostArray(t *testing.T) {
	raw := []byte(`{
		"totalXP": 0,
		"boosts": [{"sourceTaskId": "t-1", "statType": "willpower", "percentage": 20, "expiresAt": "2026-04-11T00:00:00Z", "sourceText": "fix the bike"}]
	}`)
	doc := Load(raw, testNow, nil)
	require.Len(t, doc.Boosts, 1)
	require.NotEmpty(t, doc.Boosts[0].ID)
	require.Equal(t, "fix the bike", doc.Boosts[0].SourceText)
}

func TestLoadHistoryLegacyFieldsAndTrim(t *testing.T) {
	entries := make([]map[string]any, 0, historyCap+10)
	for i := 0; i < historyCap+10; i++ {
		entries = append(entries, map[string]any{
			"id":          i,
			"text":        fmt.Sprintf("entry %d", i),
			"xp":          10,
			"completedAt": testNow.Add(time.Duration(i) * time.Minute),
		})
	}
	raw, err := json.Marshal(map[string]any{"totalXP": 0, "history": entries})
	require.NoError(t, err)

	doc := Load(raw, testNow, nil)
	require.Len(t, doc.History, historyCap)
	// Oldest entries dropped, newest kept, legacy fields folded.
	require.Equal(t, "entry 10", doc.History[0].Text)
	require.Equal(t, "10", doc.History[0].ID)
	require.Equal(t, 10, doc.History[0].TotalXP)
	require.Equal(t, fmt.Sprintf("entry %d", historyCap+9), doc.History[len(doc.History)-1].Text)
}

func TestParseImportRejections(t *testing.T) {
	_, err := ParseImport([]byte("not json"), testNow, nil)
	require.ErrorAs(t, err, &ImportError{})

	_, err = ParseImport([]byte(`{"stats": {}}`), testNow, nil)
	require.ErrorAs(t, err, &ImportError{})

	_, err = ParseImport([]byte(`{"totalXP": "lots", "stats": {}}`), testNow, nil)
	require.ErrorAs(t, err, &ImportError{})

	_, err = ParseImport([]byte(`{"totalXP": 10}`), testNow, nil)
	require.ErrorAs(t, err, &ImportError{})
}

func TestParseImportResetsLastReset(t *testing.T) {
	doc, err := ParseImport([]byte(`{"totalXP": 120, "stats": {}, "lastReset": "2020-01-01"}`), testNow, nil)
	require.NoError(t, err)
	require.Equal(t, 120, doc.TotalXP)
	require.Equal(t, "2026-04-10", doc.LastReset)
}

func TestMarshalRoundTrip(t *testing.T) {
	awarded := 110
	hid := "h-1"
	doc := Default(testNow)
	doc.TotalXP = 360
	doc.Stats.Strength.TotalXP = 200
	doc.Todos = append(doc.Todos, Quest{
		ID: "q-1", Text: "run", BaseXP: 100, StatTypes: []string{"strength"},
		Completed: true, AwardedXP: &awarded, HistoryEntryID: &hid,
		AppliedBoosts: []AppliedBoost{{StatType: "strength", Percentage: 10, SourceText: "stretch"}},
	})

	data, err := doc.Marshal()
	require.NoError(t, err)

	got := Load(data, testNow, nil)
	require.Equal(t, doc, got)
}

func TestExportFileName(t *testing.T) {
	require.Equal(t, "soloquest-2026-04-10.json", ExportFileName(testNow))
}
