package conditions

import "github.com/KirkDiggler/dnd-tactics/internal/domain/rules"

// AttackContext describes an attack for modifier derivation
type AttackContext struct {
	Attacker           Set
	AttackerExhaustion int
	Target             Set
	// WithinFiveFeet is true when the attacker is adjacent to the target
	WithinFiveFeet bool
}

// Modifiers are advantage and disadvantage flags. Both may be set; the
// roller treats that as a straight roll.
type Modifiers struct {
	Advantage    bool
	Disadvantage bool
}

// SpeedContext describes a mover for effective-speed derivation
type SpeedContext struct {
	Base       int
	Conditions Set
	Exhaustion int
	Encumbered bool
	// ArmorTooHeavy is set when the creature lacks the strength its armor requires
	ArmorTooHeavy bool
}

// SaveModifiers are the condition effects on one saving throw
type SaveModifiers struct {
	Advantage    bool
	Disadvantage bool
	AutoFail     bool
}

// Translator derives mechanical modifiers from condition sets
type Translator interface {
	AttackModifiers(ctx AttackContext) Modifiers
	EffectiveSpeed(ctx SpeedContext) int
	IsIncapacitated(set Set) bool
	SaveModifiers(set Set, exhaustion int, ability rules.Ability) SaveModifiers
}

type standardTranslator struct{}

// NewTranslator returns the 5e condition rules
func NewTranslator() Translator {
	return standardTranslator{}
}

func (standardTranslator) AttackModifiers(ctx AttackContext) Modifiers {
	var m Modifiers
	for _, c := range ctx.Attacker {
		e := EffectOf(c)
		m.Advantage = m.Advantage || e.AttackAdvantage
		m.Disadvantage = m.Disadvantage || e.AttackDisadvantage
	}
	if ctx.AttackerExhaustion >= 3 {
		m.Disadvantage = true
	}

	targetIncapacitated := false
	for _, c := range ctx.Target {
		e := EffectOf(c)
		targetIncapacitated = targetIncapacitated || e.Incapacitated
		m.Advantage = m.Advantage || e.DefenseAdvantage
		if c == Prone {
			if ctx.WithinFiveFeet {
				m.Advantage = true
			} else {
				m.Disadvantage = true
			}
		}
	}
	for _, c := range ctx.Target {
		e := EffectOf(c)
		// A creature that cannot act cannot dodge
		if c == Dodging && targetIncapacitated {
			continue
		}
		m.Disadvantage = m.Disadvantage || e.DefenseDisadvantage
	}
	return m
}

func (t standardTranslator) EffectiveSpeed(ctx SpeedContext) int {
	for _, c := range ctx.Conditions {
		if EffectOf(c).CantMove {
			return 0
		}
	}
	if ctx.Exhaustion >= 5 {
		return 0
	}

	speed := ctx.Base
	if ctx.Encumbered {
		speed -= 10
	}
	if ctx.ArmorTooHeavy {
		speed -= 10
	}
	if ctx.Conditions.Has(Slowed) {
		speed -= 10
	}
	if ctx.Exhaustion >= 2 {
		speed /= 2
	}
	return max(0, speed)
}

func (standardTranslator) IsIncapacitated(set Set) bool {
	for _, c := range set {
		if EffectOf(c).Incapacitated {
			return true
		}
	}
	return false
}

func (standardTranslator) SaveModifiers(set Set, exhaustion int, ability rules.Ability) SaveModifiers {
	var m SaveModifiers
	for _, c := range set {
		e := EffectOf(c)
		m.Advantage = m.Advantage || e.SaveAdvantage[ability]
		m.Disadvantage = m.Disadvantage || e.SaveDisadvantage[ability]
		m.AutoFail = m.AutoFail || e.SaveAutoFail[ability]
	}
	if exhaustion >= 3 {
		m.Disadvantage = true
	}
	return m
}
