package rulebook

// Class keys
const (
	ClassBarbarian = "barbarian"
	ClassBard      = "bard"
	ClassCleric    = "cleric"
	ClassDruid     = "druid"
	ClassFighter   = "fighter"
	ClassMonk      = "monk"
	ClassPaladin   = "paladin"
	ClassRanger    = "ranger"
	ClassRogue     = "rogue"
	ClassSorcerer  = "sorcerer"
	ClassWarlock   = "warlock"
	ClassWizard    = "wizard"
)

// Unlimited is returned by resource formulas that have no cap
const Unlimited = -1

// ClassFeatures are the per-class resource formulas the combat engine needs
type ClassFeatures interface {
	// ExtraAttacks is the number of attacks one Attack action grants
	ExtraAttacks(class string, level int) int
	RageDamageBonus(level int) int
	RageUses(level int) int
	SneakAttackDice(level int) int
	MartialArtsDie(level int) int
	KiPoints(level int) int
	SecondWindUses(level int) int
	ActionSurgeUses(level int) int
	// SpellSlots maps slot level to slots for the class at level
	SpellSlots(class string, level int) map[int]int
}

type srdFeatures struct{}

// NewClassFeatures returns the SRD class formulas
func NewClassFeatures() ClassFeatures {
	return srdFeatures{}
}

func (srdFeatures) ExtraAttacks(class string, level int) int {
	switch class {
	case ClassFighter:
		switch {
		case level >= 20:
			return 4
		case level >= 11:
			return 3
		case level >= 5:
			return 2
		}
	case ClassBarbarian, ClassPaladin, ClassRanger, ClassMonk:
		if level >= 5 {
			return 2
		}
	}
	return 1
}

// RageDamageBonus is +2, rising to +3 at 9th level and +4 at 16th
func (srdFeatures) RageDamageBonus(level int) int {
	switch {
	case level >= 16:
		return 4
	case level >= 9:
		return 3
	}
	return 2
}

func (srdFeatures) RageUses(level int) int {
	switch {
	case level >= 20:
		return Unlimited
	case level >= 17:
		return 6
	case level >= 12:
		return 5
	case level >= 6:
		return 4
	case level >= 3:
		return 3
	case level >= 1:
		return 2
	}
	return 0
}

// SneakAttackDice is one d6 per two rogue levels, rounded up
func (srdFeatures) SneakAttackDice(level int) int {
	if level < 1 {
		return 0
	}
	return (level + 1) / 2
}

func (srdFeatures) MartialArtsDie(level int) int {
	switch {
	case level >= 17:
		return 10
	case level >= 11:
		return 8
	case level >= 5:
		return 6
	}
	return 4
}

// KiPoints equals monk level from 2nd level on
func (srdFeatures) KiPoints(level int) int {
	if level < 2 {
		return 0
	}
	return level
}

func (srdFeatures) SecondWindUses(level int) int {
	if level < 1 {
		return 0
	}
	return 1
}

func (srdFeatures) ActionSurgeUses(level int) int {
	switch {
	case level >= 17:
		return 2
	case level >= 2:
		return 1
	}
	return 0
}

// halfCasterSlots is the paladin and ranger table, indexed by class level
var halfCasterSlots = [21][5]int{
	{}, {},
	{2}, {3}, {3},
	{4, 2}, {4, 2}, {4, 3}, {4, 3}, {4, 3, 2}, {4, 3, 2},
	{4, 3, 3}, {4, 3, 3}, {4, 3, 3, 1}, {4, 3, 3, 1}, {4, 3, 3, 2}, {4, 3, 3, 2},
	{4, 3, 3, 3, 1}, {4, 3, 3, 3, 1}, {4, 3, 3, 3, 2}, {4, 3, 3, 3, 2},
}

func (srdFeatures) SpellSlots(class string, level int) map[int]int {
	if class != ClassPaladin && class != ClassRanger {
		return nil
	}
	level = min(max(level, 0), 20)
	slots := make(map[int]int)
	for i, n := range halfCasterSlots[level] {
		if n > 0 {
			slots[i+1] = n
		}
	}
	return slots
}
