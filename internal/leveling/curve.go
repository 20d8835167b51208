// Package leveling maps cumulative XP to levels and back. The per-level
// requirement is defined iteratively: each step floors the previous
// requirement times the growth factor, so the floor error of every step is
// part of the curve and must not be approximated with a closed form.
package leveling

// Curve defines a level progression. The growth factor is held as an exact
// rational so the per-step floor comes out the same on every platform.
type Curve struct {
	Name      string
	BaseXP    int
	GrowthNum int64
	GrowthDen int64
}

// Progress describes where a total XP value lands on a curve
type Progress struct {
	Level        int `json:"level"`
	XPInLevel    int `json:"xp_in_level"`
	XPToNext     int `json:"xp_to_next"`
	CumulativeXP int `json:"cumulative_xp"`
}

// Secondary is the per-mini-game curve: 100 base XP, 1.5x growth
var Secondary = &Curve{Name: "secondary", BaseXP: 100, GrowthNum: 3, GrowthDen: 2}

// Primary is the account-wide curve: 250 base XP, 2x growth
var Primary = &Curve{Name: "primary", BaseXP: 250, GrowthNum: 2, GrowthDen: 1}

// XPForLevel returns the XP required to get from the given level to the
// next one. Level 1 requires BaseXP; each later level floors the previous
// requirement times the growth factor.
func (c *Curve) XPForLevel(level int) int {
	required := int64(c.BaseXP)
	for l := 1; l < level; l++ {
		required = required * c.GrowthNum / c.GrowthDen
	}
	return int(required)
}

// CumulativeXP returns the total XP needed to reach the start of a level.
// Level 1 starts at 0.
func (c *Curve) CumulativeXP(level int) int {
	total := int64(0)
	required := int64(c.BaseXP)
	for l := 1; l < level; l++ {
		total += required
		required = required * c.GrowthNum / c.GrowthDen
	}
	return int(total)
}

// FromXP resolves a total XP value to the largest level whose cumulative
// requirement it meets, plus the progress within that level
func (c *Curve) FromXP(totalXP int) Progress {
	level := 1
	cumulative := int64(0)
	required := int64(c.BaseXP)

	for cumulative+required <= int64(totalXP) {
		cumulative += required
		required = required * c.GrowthNum / c.GrowthDen
		level++
	}

	return Progress{
		Level:        level,
		XPInLevel:    totalXP - int(cumulative),
		XPToNext:     int(required),
		CumulativeXP: int(cumulative),
	}
}
