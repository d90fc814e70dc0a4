package equipment

type ArmorCategory string

const (
	ArmorCategoryLight  ArmorCategory = "light"
	ArmorCategoryMedium ArmorCategory = "medium"
	ArmorCategoryHeavy  ArmorCategory = "heavy"
	ArmorCategoryShield ArmorCategory = "shield"
)

// Armor is catalog data for armor the engine cares about in combat
type Armor struct {
	Key                 string        `json:"key" yaml:"key"`
	Name                string        `json:"name" yaml:"name"`
	Category            ArmorCategory `json:"category" yaml:"category"`
	BaseAC              int           `json:"base_ac" yaml:"base_ac"`
	StrengthMinimum     int           `json:"str_minimum,omitempty" yaml:"str_minimum"`
	StealthDisadvantage bool          `json:"stealth_disadvantage,omitempty" yaml:"stealth_disadvantage"`
}

// TooHeavyFor reports whether a wearer with the given strength score is slowed
func (a *Armor) TooHeavyFor(strength int) bool {
	return a.StrengthMinimum > 0 && strength < a.StrengthMinimum
}
