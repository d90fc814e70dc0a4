package combat

import (
	"encoding/json"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
)

// Phase is where an encounter is in its lifecycle
type Phase string

const (
	PhaseNotInCombat       Phase = "not_in_combat"
	PhaseRollingInitiative Phase = "rolling_initiative"
	PhaseActive            Phase = "active"
	PhaseEnded             Phase = "ended"
)

// EventType classifies entries in the event log
type EventType string

const (
	EventCombatStarted     EventType = "combat_started"
	EventCombatEnded       EventType = "combat_ended"
	EventTurnStarted       EventType = "turn_started"
	EventTurnEnded         EventType = "turn_ended"
	EventAttack            EventType = "attack"
	EventOpportunityAttack EventType = "opportunity_attack"
	EventMove              EventType = "move"
	EventAction            EventType = "action"
	EventBonusAction       EventType = "bonus_action"
	EventFeature           EventType = "feature"
	EventManeuver          EventType = "maneuver"
	EventMonsterAbility    EventType = "monster_ability"
	EventMultiattack       EventType = "multiattack"
	EventLegendaryAction   EventType = "legendary_action"
	EventRecharge          EventType = "recharge"
	EventDeathSave         EventType = "death_save"
	EventConcentration     EventType = "concentration"
	EventConditionApplied  EventType = "condition_applied"
	EventConditionExpired  EventType = "condition_expired"
	EventCombatantDown     EventType = "combatant_down"
	EventCombatantDied     EventType = "combatant_died"
	EventHazard            EventType = "hazard"
	EventRageEnded         EventType = "rage_ended"
	EventGrappleReleased   EventType = "grapple_released"
)

// Event is one entry in the append-only audit log
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Round       int            `json:"round"`
	CombatantID string         `json:"combatant_id,omitempty"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
}

// Boundary is the point in a turn a timer is checked
type Boundary string

const (
	BoundaryStart Boundary = "start"
	BoundaryEnd   Boundary = "end"
)

// ConditionTimer removes a condition after a number of the source's turn
// boundaries have passed
type ConditionTimer struct {
	TargetID  string          `json:"target_id"`
	Condition conditions.Type `json:"condition"`
	SourceID  string          `json:"source_id"`
	Boundary  Boundary        `json:"boundary"`
	Remaining int             `json:"remaining"`
}

// HitRecord is the most recent hit a combatant landed this turn
type HitRecord struct {
	TargetID string `json:"target_id"`
	Weapon   string `json:"weapon"`
	Critical bool   `json:"critical"`
	Melee    bool   `json:"melee"`
}

// TurnState is the resource ledger for the combatant whose turn it is
type TurnState struct {
	CombatantID   string `json:"combatant_id"`
	Round         int    `json:"round"`
	MovementUsed  int    `json:"movement_used"`
	MovementBonus int    `json:"movement_bonus"`
	// MovementLocked is set by Steady Aim
	MovementLocked bool `json:"movement_locked,omitempty"`

	AttacksMade      int  `json:"attacks_made"`
	MaxAttacks       int  `json:"max_attacks"`
	ActionTaken      bool `json:"action_taken"`
	BonusActionTaken bool `json:"bonus_action_taken"`
	ReactionUsed     bool `json:"reaction_used"`
	// SurgedActions are Action Surge actions waiting for the current one to
	// finish
	SurgedActions int `json:"surged_actions,omitempty"`

	SneakAttackUsed    bool `json:"sneak_attack_used"`
	ActionSurgeUsed    bool `json:"action_surge_used"`
	StunningStrikeUsed bool `json:"stunning_strike_used"`
	CleaveUsed         bool `json:"cleave_used"`
	NickUsed           bool `json:"nick_used,omitempty"`

	OffHandEligible   bool       `json:"off_hand_eligible"`
	MainHandWeapon    string     `json:"main_hand_weapon,omitempty"`
	AttackActionTaken bool       `json:"attack_action_taken"`
	MonkWeaponAttack  bool       `json:"monk_weapon_attack,omitempty"`
	LastHit           *HitRecord `json:"last_hit,omitempty"`
	AttackedHostile   bool       `json:"attacked_hostile"`
	Disengaged        bool       `json:"disengaged"`
}

// drawSurgedAction starts a pending surged action once the current action is
// spent
func (t *TurnState) drawSurgedAction() {
	if !t.ActionTaken || t.SurgedActions == 0 {
		return
	}
	t.SurgedActions--
	t.ActionTaken = false
	t.AttackActionTaken = false
	t.AttacksMade = 0
}

// AttacksRemaining is how many attacks the current Attack action has left
func (t *TurnState) AttacksRemaining() int {
	if t.ActionTaken {
		return 0
	}
	return max(0, t.MaxAttacks-t.AttacksMade)
}

// CombatState is the aggregate root for one encounter
type CombatState struct {
	Phase      Phase                      `json:"phase"`
	Round      int                        `json:"round"`
	Positions  map[string]grid.Position   `json:"positions"`
	Combatants map[string]*CombatantState `json:"combatants"`
	Events     []Event                    `json:"events"`
	// Recharge maps monster id to ability id to availability
	Recharge           map[string]map[string]bool `json:"recharge"`
	LegendaryRemaining map[string]int             `json:"legendary_remaining"`
	ReactionsUsed      map[string]bool            `json:"reactions_used"`
	Turn               *TurnState                 `json:"turn,omitempty"`
	Grid               *grid.Grid                 `json:"grid,omitempty"`
	Timers             []ConditionTimer           `json:"timers,omitempty"`
	Result             string                     `json:"result,omitempty"`
}

func newCombatState() *CombatState {
	return &CombatState{
		Phase:              PhaseNotInCombat,
		Positions:          make(map[string]grid.Position),
		Combatants:         make(map[string]*CombatantState),
		Recharge:           make(map[string]map[string]bool),
		LegendaryRemaining: make(map[string]int),
		ReactionsUsed:      make(map[string]bool),
	}
}

// Clone returns a deep copy
func (s *CombatState) Clone() (*CombatState, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	clone := newCombatState()
	if err := json.Unmarshal(raw, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// ActionResult is the outcome of every action-submission operation. Rule
// rejections come back with Success false and change nothing.
type ActionResult struct {
	Success        bool           `json:"success"`
	Description    string         `json:"description"`
	DamageDealt    int            `json:"damage_dealt"`
	TargetID       string         `json:"target_id,omitempty"`
	EffectsApplied []string       `json:"effects_applied,omitempty"`
	ExtraData      map[string]any `json:"extra_data,omitempty"`
}

// Summary describes a finished encounter
type Summary struct {
	Result     string   `json:"result"`
	Reason     string   `json:"reason"`
	Rounds     int      `json:"rounds"`
	Survivors  []string `json:"survivors"`
	Casualties []string `json:"casualties"`
	EventCount int      `json:"event_count"`
}
