package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// RollResult is the outcome of a single roll request.
type RollResult struct {
	Total    int   `json:"total"`
	Rolls    []int `json:"rolls"`
	Bonus    int   `json:"bonus"`
	Count    int   `json:"count"`
	Sides    int   `json:"sides"`
	RawTotal int   `json:"raw_total"`
	IsCrit   bool  `json:"is_crit"`
	IsFumble bool  `json:"is_fumble"`
}

// Natural returns the die that counted for a single-die roll. For
// advantage and disadvantage rolls that is the kept die.
func (r *RollResult) Natural() int {
	if r == nil || len(r.Rolls) == 0 {
		return 0
	}
	if r.Count == 1 {
		return r.RawTotal
	}
	return r.Rolls[0]
}

// Roller provides an interface for rolling dice
// This allows us to inject different implementations for testing
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollWithAdvantage rolls with advantage (roll twice, take higher)
	RollWithAdvantage(sides, bonus int) (*RollResult, error)

	// RollWithDisadvantage rolls with disadvantage (roll twice, take lower)
	RollWithDisadvantage(sides, bonus int) (*RollResult, error)
}
