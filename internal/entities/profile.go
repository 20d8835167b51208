package entities

import "time"

// CosmeticSlot is one of the profile's equip slots
type CosmeticSlot string

const (
	SlotTitle CosmeticSlot = "title"
	SlotFrame CosmeticSlot = "frame"
	SlotTheme CosmeticSlot = "theme"
)

// IsValid reports whether the slot is one of the known equip slots
func (s CosmeticSlot) IsValid() bool {
	switch s {
	case SlotTitle, SlotFrame, SlotTheme:
		return true
	default:
		return false
	}
}

// ActiveBoost is a timed XP multiplier window on a profile. Expiry is lazy:
// there is no background job, activity is computed on read.
type ActiveBoost struct {
	Multiplier float64    `json:"multiplier"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// IsActive reports whether the boost window is open at the given time
func (b *ActiveBoost) IsActive(now time.Time) bool {
	if b == nil || b.ExpiresAt == nil {
		return false
	}
	return b.ExpiresAt.After(now)
}

// Profile holds the per-owner progression state this engine mutates
type Profile struct {
	OwnerID     string                  `json:"owner_id"`
	TotalXP     int                     `json:"total_xp"`
	ShieldCount int                     `json:"shield_count"`
	Boost       *ActiveBoost            `json:"boost,omitempty"`
	Cosmetics   map[CosmeticSlot]string `json:"cosmetics,omitempty"`
}

// BoostMultiplier returns the active boost multiplier, or 1.0 when no
// boost window is open
func (p *Profile) BoostMultiplier(now time.Time) float64 {
	if p.Boost.IsActive(now) {
		return p.Boost.Multiplier
	}
	return 1.0
}

// Equip writes a cosmetic slot, allocating the map on first use
func (p *Profile) Equip(slot CosmeticSlot, value string) {
	if p.Cosmetics == nil {
		p.Cosmetics = make(map[CosmeticSlot]string)
	}
	p.Cosmetics[slot] = value
}
