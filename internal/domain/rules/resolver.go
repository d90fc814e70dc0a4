package rules

import (
	"github.com/KirkDiggler/dnd-tactics/internal/dice"
)

// AttackInput is everything needed to roll one attack
type AttackInput struct {
	AttackBonus int
	TargetAC    int
	// Damage is the weapon dice plus flat bonus. Critical hits double the dice only.
	Damage     dice.Expression
	DamageType DamageType
	Advantage  bool
	// Disadvantage cancels Advantage when both are set
	Disadvantage bool
	// CriticalThreshold is the lowest natural roll that crits; zero means 20
	CriticalThreshold int
	AutoCritical      bool
}

// AttackOutcome is the result of one attack roll
type AttackOutcome struct {
	Hit         bool       `json:"hit"`
	Critical    bool       `json:"critical"`
	Natural     int        `json:"natural"`
	AttackRolls []int      `json:"attack_rolls"`
	AttackTotal int        `json:"attack_total"`
	Damage      int        `json:"damage"`
	DamageRolls []int      `json:"damage_rolls,omitempty"`
	DamageType  DamageType `json:"damage_type"`
}

// DamageInput describes one damage instance against a creature
type DamageInput struct {
	HP         int
	MaxHP      int
	Damage     int
	Resistant  bool
	Immune     bool
	Vulnerable bool
}

// DamageOutcome is the target's state after damage
type DamageOutcome struct {
	HP    int
	Dealt int
	// Overflow is damage left over after reaching zero hit points
	Overflow    int
	Unconscious bool
}

// SaveInput describes a saving throw or flat check against a DC
type SaveInput struct {
	Modifier     int
	DC           int
	Advantage    bool
	Disadvantage bool
	AutoFail     bool
}

// SaveOutcome is the result of a saving throw
type SaveOutcome struct {
	Success bool
	Natural int
	Total   int
}

// ContestOutcome is the result of an opposed check. Ties go to the defender.
type ContestOutcome struct {
	AttackerTotal int
	DefenderTotal int
	AttackerWins  bool
}

// Resolver performs the dice-driven rules math
type Resolver interface {
	ResolveAttack(in AttackInput) (*AttackOutcome, error)
	RollDamage(expr dice.Expression, critical bool) (*dice.RollResult, error)
	ApplyDamage(in DamageInput) DamageOutcome
	SavingThrow(in SaveInput) (*SaveOutcome, error)
	Contest(attackerModifier, defenderModifier int) (*ContestOutcome, error)
	RollD20(modifier int, advantage, disadvantage bool) (*dice.RollResult, error)
}

type resolver struct {
	roller dice.Roller
}

// NewResolver creates a Resolver that rolls with roller
func NewResolver(roller dice.Roller) Resolver {
	if roller == nil {
		panic("roller is required")
	}
	return &resolver{roller: roller}
}

// RollD20 rolls a d20 with advantage or disadvantage; both cancel
func (r *resolver) RollD20(modifier int, advantage, disadvantage bool) (*dice.RollResult, error) {
	switch {
	case advantage && !disadvantage:
		return r.roller.RollWithAdvantage(20, modifier)
	case disadvantage && !advantage:
		return r.roller.RollWithDisadvantage(20, modifier)
	}
	return r.roller.Roll(1, 20, modifier)
}

// ResolveAttack rolls to hit and, on a hit, rolls damage
func (r *resolver) ResolveAttack(in AttackInput) (*AttackOutcome, error) {
	roll, err := r.RollD20(in.AttackBonus, in.Advantage, in.Disadvantage)
	if err != nil {
		return nil, err
	}

	natural := roll.Natural()
	outcome := &AttackOutcome{
		Natural:     natural,
		AttackRolls: roll.Rolls,
		AttackTotal: roll.Total,
		DamageType:  in.DamageType,
		Hit:         IsHit(natural, roll.Total, in.TargetAC),
		Critical:    IsCritical(natural, in.CriticalThreshold, in.AutoCritical),
	}
	if !outcome.Hit {
		return outcome, nil
	}

	dmg, err := r.RollDamage(in.Damage, outcome.Critical)
	if err != nil {
		return nil, err
	}
	outcome.Damage = max(0, dmg.Total)
	outcome.DamageRolls = dmg.Rolls
	return outcome, nil
}

// IsHit is true on a natural 20, or when the total meets AC and the natural roll is not 1
func IsHit(natural, total, ac int) bool {
	return natural == 20 || (total >= ac && natural != 1)
}

// IsCritical is true when the natural roll reaches the threshold or an auto-critical applies
func IsCritical(natural, threshold int, auto bool) bool {
	if threshold <= 0 || threshold > 20 {
		threshold = 20
	}
	return natural >= threshold || auto
}

// RollDamage rolls expr, doubling the dice on a critical
func (r *resolver) RollDamage(expr dice.Expression, critical bool) (*dice.RollResult, error) {
	if critical {
		expr.Count *= 2
	}
	return dice.RollExpression(r.roller, expr)
}

// ApplyDamage adjusts damage for resistances and removes it from hp
func (r *resolver) ApplyDamage(in DamageInput) DamageOutcome {
	dealt := AdjustDamage(in.Damage, in.Resistant, in.Immune, in.Vulnerable)
	hp := in.HP - dealt
	overflow := 0
	if hp < 0 {
		overflow = -hp
		hp = 0
	}
	if in.MaxHP > 0 {
		hp = min(hp, in.MaxHP)
	}
	return DamageOutcome{HP: hp, Dealt: dealt, Overflow: overflow, Unconscious: hp == 0}
}

// AdjustDamage applies immunity, then resistance, then vulnerability
func AdjustDamage(amount int, resistant, immune, vulnerable bool) int {
	if amount <= 0 || immune {
		return 0
	}
	if resistant {
		amount /= 2
	}
	if vulnerable {
		amount *= 2
	}
	return amount
}

// Heal returns hp after healing, capped at maxHP. A zero maxHP heals nothing.
func Heal(hp, maxHP, amount int) int {
	if maxHP <= 0 || amount <= 0 {
		return hp
	}
	return min(maxHP, hp+amount)
}

// SavingThrow rolls d20 + modifier against DC
func (r *resolver) SavingThrow(in SaveInput) (*SaveOutcome, error) {
	if in.AutoFail {
		return &SaveOutcome{}, nil
	}
	roll, err := r.RollD20(in.Modifier, in.Advantage, in.Disadvantage)
	if err != nil {
		return nil, err
	}
	return &SaveOutcome{
		Success: roll.Total >= in.DC,
		Natural: roll.Natural(),
		Total:   roll.Total,
	}, nil
}

// Contest rolls an opposed d20 check for each side
func (r *resolver) Contest(attackerModifier, defenderModifier int) (*ContestOutcome, error) {
	attacker, err := r.roller.Roll(1, 20, attackerModifier)
	if err != nil {
		return nil, err
	}
	defender, err := r.roller.Roll(1, 20, defenderModifier)
	if err != nil {
		return nil, err
	}
	return &ContestOutcome{
		AttackerTotal: attacker.Total,
		DefenderTotal: defender.Total,
		AttackerWins:  attacker.Total > defender.Total,
	}, nil
}

// ConcentrationDC is max(10, damage/2)
func ConcentrationDC(damage int) int {
	return max(10, damage/2)
}
