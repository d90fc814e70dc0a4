package dice

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// randomRoller implements Roller on top of a math/rand source. A fixed seed
// makes every roll sequence reproducible.
type randomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRoller creates a roller seeded from the clock
func NewRandomRoller() Roller {
	return NewSeededRoller(time.Now().UnixNano())
}

// NewSeededRoller creates a roller whose sequence is fully determined by seed
func NewSeededRoller(seed int64) Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *randomRoller) next(sides int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(sides) + 1
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	rolls := make([]int, count)
	rawTotal := 0
	for i := range rolls {
		rolls[i] = r.next(sides)
		rawTotal += rolls[i]
	}

	result := &RollResult{
		Total:    rawTotal + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: rawTotal,
	}

	// Check for crit/fumble on d20
	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}

// RollWithAdvantage implements Roller.RollWithAdvantage
func (r *randomRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	return r.rollPair(sides, bonus, func(a, b int) int { return max(a, b) })
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (r *randomRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	return r.rollPair(sides, bonus, func(a, b int) int { return min(a, b) })
}

func (r *randomRoller) rollPair(sides, bonus int, keep func(a, b int) int) (*RollResult, error) {
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	roll1 := r.next(sides)
	roll2 := r.next(sides)
	kept := keep(roll1, roll2)

	return pairResult(roll1, roll2, kept, sides, bonus), nil
}

// pairResult builds the result of a two-dice advantage/disadvantage roll
func pairResult(roll1, roll2, kept, sides, bonus int) *RollResult {
	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    []int{roll1, roll2}, // Show both rolls
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}

	if sides == 20 {
		result.IsCrit = kept == 20
		result.IsFumble = kept == 1
	}

	return result
}
