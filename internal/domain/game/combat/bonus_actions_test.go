package combat

import (
	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rulebook"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

func barbarianSheet() *Combatant {
	return &Combatant{
		ID:          "barbarian",
		Name:        "Barbarian",
		Class:       rulebook.ClassBarbarian,
		Level:       1,
		HP:          15,
		AC:          14,
		Abilities:   rules.AbilityScores{Strength: 16, Dexterity: 12, Constitution: 14},
		MainHand:    "greataxe",
		Resistances: []rules.DamageType{rules.Piercing},
	}
}

func monkSheet() *Combatant {
	return &Combatant{
		ID:        "monk",
		Name:      "Monk",
		Class:     rulebook.ClassMonk,
		Level:     5,
		HP:        38,
		AC:        16,
		Abilities: rules.AbilityScores{Dexterity: 16, Wisdom: 14},
	}
}

func (s *EngineTestSuite) startBarbarian() {
	s.start([]*Combatant{barbarianSheet()}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"barbarian": at(1, 1), "ogre": at(2, 1)}, 15, 5)
}

func (s *EngineTestSuite) startMonk() {
	s.start([]*Combatant{monkSheet()}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"monk": at(1, 1), "ogre": at(2, 1)}, 15, 5)
}

func (s *EngineTestSuite) TestRage_AddsResistancesAndDamage() {
	s.startBarbarian()
	s.Equal(2, s.combatant("barbarian").RageUsesRemaining)

	result := s.bonus(Rage{})
	s.Require().True(result.Success)

	barbarian := s.combatant("barbarian")
	s.True(barbarian.Raging)
	s.True(barbarian.has(conditions.Raging))
	s.Equal(1, barbarian.RageUsesRemaining)
	s.ElementsMatch([]rules.DamageType{rules.Piercing, rules.Bludgeoning, rules.Slashing}, barbarian.Resistances)
	s.ElementsMatch([]rules.DamageType{rules.Bludgeoning, rules.Slashing}, barbarian.RageAddedResistances)

	again := s.bonus(Rage{})
	s.False(again.Success)
	s.Equal("Barbarian is already raging", again.Description)
	s.Equal(1, barbarian.RageUsesRemaining)

	// 15+5=20 hits, 1d12 rolls 6 +3 strength +2 rage
	s.rolls(15, 6)
	attack := s.act(Attack{Target: "ogre"})
	s.Require().True(attack.Success)
	s.Equal(11, attack.DamageDealt)
	s.Equal(2, attack.ExtraData["rage_bonus"])
}

func (s *EngineTestSuite) TestRage_EndsWithoutCombat() {
	s.startBarbarian()
	s.Require().True(s.bonus(Rage{}).Success)

	s.rolls(15, 6)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)

	// attacking kept the rage going through the first turn
	s.Equal("ogre", s.endTurn())
	s.True(s.combatant("barbarian").Raging)

	s.Equal("barbarian", s.endTurn())
	s.Equal("ogre", s.endTurn())

	barbarian := s.combatant("barbarian")
	s.False(barbarian.Raging)
	s.False(barbarian.has(conditions.Raging))
	s.Equal([]rules.DamageType{rules.Piercing}, barbarian.Resistances)
	s.Empty(barbarian.RageAddedResistances)
	s.Equal("neither attacked nor took damage", s.lastEvent(EventRageEnded).Data["reason"])
}

func (s *EngineTestSuite) TestRage_RequiresBarbarian() {
	s.duel(fighterSheet(5))

	result := s.bonus(Rage{})
	s.False(result.Success)
	s.Equal("Rage requires a level 1 barbarian", result.Description)
}

func (s *EngineTestSuite) TestSecondWind_Heals() {
	fighter := fighterSheet(5)
	fighter.MaxHP = 44
	fighter.HP = 10
	s.duel(fighter)

	// 1d10 rolls 6 +5
	s.rolls(6)
	result := s.bonus(SecondWind{})
	s.Require().True(result.Success)
	s.Equal(11, result.ExtraData["healed"])
	s.Equal(21, s.combatant("fighter").HP)
	s.Equal(0, s.combatant("fighter").SecondWindRemaining)

	again := s.bonus(SecondWind{})
	s.False(again.Success)
	s.Equal("bonus action already taken", again.Description)
}

func (s *EngineTestSuite) TestActionSurge_GrantsAnotherAction() {
	s.duel(fighterSheet(2))

	s.rolls(15, 5)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)

	blocked := s.act(Attack{Target: "ogre"})
	s.False(blocked.Success)
	s.Equal("no attacks remaining", blocked.Description)

	surge, err := s.engine.UseActionSurge()
	s.Require().NoError(err)
	s.Require().True(surge.Success)
	s.Equal(0, s.combatant("fighter").ActionSurgeRemaining)

	s.rolls(15, 5)
	s.True(s.act(Attack{Target: "ogre"}).Success)

	again, err := s.engine.UseActionSurge()
	s.Require().NoError(err)
	s.False(again.Success)
	s.Equal("Action Surge already used this turn", again.Description)
}

func (s *EngineTestSuite) TestActionSurge_BeforeActingWaitsForTheAction() {
	s.duel(fighterSheet(2))

	surge, err := s.engine.UseActionSurge()
	s.Require().NoError(err)
	s.Require().True(surge.Success)
	s.Equal(1, s.engine.state.Turn.SurgedActions)

	s.rolls(15, 5, 15, 5)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)
	s.Zero(s.engine.state.Turn.SurgedActions)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)

	blocked := s.act(Attack{Target: "ogre"})
	s.False(blocked.Success)
	s.Equal("no attacks remaining", blocked.Description)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestActionSurge_MidExtraAttackKeepsTheSecondSwing() {
	s.duel(fighterSheet(5))

	s.rolls(15, 5)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)

	surge, err := s.engine.UseActionSurge()
	s.Require().NoError(err)
	s.Require().True(surge.Success)
	s.Equal(1, s.engine.state.Turn.AttacksRemaining())

	s.rolls(12, 6, 15, 5, 15, 5)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)
	s.Equal(2, s.engine.state.Turn.AttacksRemaining())
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)

	blocked := s.act(Attack{Target: "ogre"})
	s.False(blocked.Success)
	s.Equal("no attacks remaining", blocked.Description)
	s.Equal(59-33, s.combatant("ogre").HP)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestOffHandAttack_NeedsLightMainHandAttack() {
	fighter := fighterSheet(5)
	fighter.OffHand = "dagger"
	s.duel(fighter)

	result := s.bonus(OffHandAttack{Target: "ogre"})
	s.False(result.Success)
	s.Equal("Fighter has not attacked with a light melee weapon this turn", result.Description)

	// a longsword is not light
	s.rolls(15, 5)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)
	s.False(s.bonus(OffHandAttack{Target: "ogre"}).Success)
}

func (s *EngineTestSuite) TestDivineSmite() {
	paladin := &Combatant{
		ID:        "paladin",
		Name:      "Paladin",
		Class:     rulebook.ClassPaladin,
		Level:     2,
		HP:        20,
		AC:        18,
		Abilities: rules.AbilityScores{Strength: 16},
		MainHand:  "longsword",
	}
	skeleton := ogreSheet()
	skeleton.CreatureType = "undead"
	s.start([]*Combatant{paladin}, []*Combatant{skeleton},
		map[string]grid.Position{"paladin": at(1, 1), "ogre": at(2, 1)}, 15, 5)
	s.Equal(map[int]int{1: 2}, s.combatant("paladin").SpellSlots)

	early, err := s.engine.UseDivineSmite(1, "ogre")
	s.Require().NoError(err)
	s.False(early.Success)
	s.Equal("Divine Smite requires a melee weapon hit on Ogre this turn", early.Description)

	s.rolls(15, 5)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)

	// a first level slot is 2d8, one more against undead
	s.rolls(4, 4, 4)
	smite, err := s.engine.UseDivineSmite(1, "ogre")
	s.Require().NoError(err)
	s.Require().True(smite.Success)
	s.Equal(12, smite.DamageDealt)
	s.Equal(3, smite.ExtraData["dice"])
	s.Equal(1, s.combatant("paladin").SpellSlots[1])
	s.True(s.engine.state.Turn.BonusActionTaken)
	s.Equal(59-8-12, s.combatant("ogre").HP)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestStunningStrike_LastsUntilTheMonksNextTurnEnds() {
	s.startMonk()
	s.Equal(5, s.combatant("monk").KiRemaining)

	// unarmed strike uses the d6 martial arts die with DEX: 15+6 hits, 4+3
	s.rolls(15, 4)
	hit := s.act(Attack{Target: "ogre"})
	s.Require().True(hit.Success)
	s.Equal(7, hit.DamageDealt)

	// the ogre saves 5+3=8 against DC 8+3+2=13
	s.rolls(5)
	result, err := s.engine.UseStunningStrike("ogre")
	s.Require().NoError(err)
	s.Require().True(result.Success)
	s.Equal(13, result.ExtraData["dc"])
	s.Equal(false, result.ExtraData["saved"])
	s.Equal(4, s.combatant("monk").KiRemaining)
	s.True(s.combatant("ogre").has(conditions.Stunned))

	again, err := s.engine.UseStunningStrike("ogre")
	s.Require().NoError(err)
	s.False(again.Success)

	s.Equal("ogre", s.endTurn())
	blocked := s.act(Attack{Target: "monk"})
	s.False(blocked.Success)
	s.Equal("Ogre is incapacitated", blocked.Description)

	s.Equal("monk", s.endTurn())
	s.True(s.combatant("ogre").has(conditions.Stunned))

	s.Equal("ogre", s.endTurn())
	s.False(s.combatant("ogre").has(conditions.Stunned))
	s.Equal(string(conditions.Stunned), s.lastEvent(EventConditionExpired).Data["condition"])
}

func (s *EngineTestSuite) TestFlurryOfBlows() {
	s.startMonk()

	premature := s.bonus(FlurryOfBlows{Target: "ogre"})
	s.False(premature.Success)
	s.Equal("Flurry of Blows requires taking the Attack action first", premature.Description)

	s.rolls(15, 4)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)

	s.rolls(15, 4, 15, 4)
	result := s.bonus(FlurryOfBlows{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(14, result.DamageDealt)
	s.Equal(4, s.combatant("monk").KiRemaining)
	s.Equal(59-21, s.combatant("ogre").HP)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestPatientDefense_SpendsKiToDodge() {
	s.startMonk()

	result := s.bonus(PatientDefense{})
	s.Require().True(result.Success)
	s.Equal(4, s.combatant("monk").KiRemaining)
	s.True(s.combatant("monk").has(conditions.Dodging))

	// the dodge lasts until the start of the monk's next turn
	s.Equal("ogre", s.endTurn())
	s.True(s.combatant("monk").has(conditions.Dodging))
	s.Equal("monk", s.endTurn())
	s.False(s.combatant("monk").has(conditions.Dodging))
}

func (s *EngineTestSuite) TestSteadyAim_LocksMovement() {
	rogue := &Combatant{
		ID:        "rogue",
		Name:      "Rogue",
		Class:     rulebook.ClassRogue,
		Level:     3,
		HP:        20,
		AC:        14,
		Abilities: rules.AbilityScores{Dexterity: 16},
		MainHand:  "shortbow",
	}
	s.start([]*Combatant{rogue}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"rogue": at(1, 1), "ogre": at(6, 1)}, 15, 5)

	s.Require().True(s.bonus(SteadyAim{}).Success)

	move, err := s.engine.MoveCombatant("rogue", 1, 2)
	s.Require().NoError(err)
	s.False(move.Success)
	s.Equal("Rogue cannot move after Steady Aim", move.Description)

	// steady aim grants advantage: keeps the 15, 1d6 rolls 2 +3, sneak attack 2d6
	s.rolls(3, 15, 2, 1, 1)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(true, result.ExtraData["advantage"])
	s.Equal(7, result.DamageDealt)
	s.False(s.combatant("rogue").SteadyAim)
}
