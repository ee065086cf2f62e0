package engine

import "math"

const (
	// XPBase is the XP needed to go from level 1 to 2.
	XPBase = 130.0

	// XPGrowthRate is the per-level growth of the XP curve.
	XPGrowthRate = 1.05
)

// XPRequiredForLevel returns the cumulative XP needed to reach level from
// level 1. The series is rounded per term, not summed in closed form: the
// closed-form sum drifts from the per-term-rounded total and would shift
// level thresholds.
func XPRequiredForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	total := 0
	for i := 1; i < level; i++ {
		total += int(math.Round(XPBase * math.Pow(XPGrowthRate, float64(i-1))))
	}
	return total
}

// LevelInfo is the derived level plus progress within it. MaxXP is always
// positive since the growth rate is above 1.
type LevelInfo struct {
	Level     int
	CurrentXP int
	MaxXP     int
}

// LevelFromTotalXP returns the greatest level whose threshold is at or below
// totalXP. Negative input is clamped to 0.
func LevelFromTotalXP(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	level := 1
	for XPRequiredForLevel(level+1) <= totalXP {
		level++
	}
	return LevelInfo{
		Level:     level,
		CurrentXP: totalXP - XPRequiredForLevel(level),
		MaxXP:     XPRequiredForLevel(level+1) - XPRequiredForLevel(level),
	}
}
