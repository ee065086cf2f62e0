package engine

import (
	"fmt"
	"strings"
)

type StatType string

const (
	StatStrength  StatType = "strength"
	StatCareer    StatType = "career"
	StatWillpower StatType = "willpower"
)

// AllStats returns the fixed stat set in display order.
func AllStats() []StatType {
	return []StatType{StatStrength, StatCareer, StatWillpower}
}

func (s StatType) IsValid() bool {
	switch s {
	case StatStrength, StatCareer, StatWillpower:
		return true
	default:
		return false
	}
}

// ParseStatType parses user input to a StatType.
// Supported: strength/str, career/car, willpower/will/wp
func ParseStatType(input string) (StatType, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "strength", "str":
		return StatStrength, nil
	case "career", "car":
		return StatCareer, nil
	case "willpower", "will", "wp":
		return StatWillpower, nil
	default:
		return "", fmt.Errorf("invalid stat: %q", input)
	}
}

// ParseStatTypes parses a comma-separated stat list, deduplicating while
// keeping input order.
func ParseStatTypes(input string) ([]StatType, error) {
	var out []StatType
	seen := map[StatType]bool{}
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		st, err := ParseStatType(part)
		if err != nil {
			return nil, err
		}
		if seen[st] {
			continue
		}
		seen[st] = true
		out = append(out, st)
	}
	return out, nil
}

type Difficulty int

const (
	DifficultyVeryEasy Difficulty = 1
	DifficultyEasy     Difficulty = 2
	DifficultyMedium   Difficulty = 3
	DifficultyHard     Difficulty = 4
	DifficultyVeryHard Difficulty = 5
)

func (d Difficulty) IsValid() bool {
	return d >= DifficultyVeryEasy && d <= DifficultyVeryHard
}

// baseXPByDifficulty is the quest XP preset per difficulty, used by the
// editor surface as a convenience; quests store a plain baseXP.
var baseXPByDifficulty = map[Difficulty]int{
	DifficultyVeryEasy: 30,
	DifficultyEasy:     50,
	DifficultyMedium:   80,
	DifficultyHard:     130,
	DifficultyVeryHard: 220,
}

// BaseXPForDifficulty returns the preset quest XP for a difficulty, falling
// back to the medium preset for out-of-range input.
func BaseXPForDifficulty(d Difficulty) int {
	if xp, ok := baseXPByDifficulty[d]; ok {
		return xp
	}
	return baseXPByDifficulty[DifficultyMedium]
}

// boostPercentByDifficulty maps life-task difficulty to the percentage of
// the boost it mints on completion.
var boostPercentByDifficulty = map[Difficulty]int{
	DifficultyVeryEasy: 5,
	DifficultyEasy:     10,
	DifficultyMedium:   15,
	DifficultyHard:     20,
	DifficultyVeryHard: 25,
}

// BoostPercentForDifficulty returns the boost percentage for a difficulty,
// falling back to the medium boost for out-of-range input.
func BoostPercentForDifficulty(d Difficulty) int {
	if pct, ok := boostPercentByDifficulty[d]; ok {
		return pct
	}
	return boostPercentByDifficulty[DifficultyMedium]
}
