package rulebook

// Subclass keys with combat-relevant features
const (
	SubclassChampion = "champion"
	SubclassAssassin = "assassin"
)

// Subclasses answers subclass-dependent attack questions
type Subclasses interface {
	// CriticalThreshold is the lowest natural d20 that scores a critical hit
	CriticalThreshold(class, subclass string, level int) int
	// Assassinate reports whether the creature has the Assassinate feature
	Assassinate(class, subclass string, level int) bool
}

type srdSubclasses struct{}

// NewSubclasses returns the SRD subclass rules
func NewSubclasses() Subclasses {
	return srdSubclasses{}
}

// CriticalThreshold is 19 for a 3rd-level Champion and 18 from 15th level
func (srdSubclasses) CriticalThreshold(class, subclass string, level int) int {
	if class == ClassFighter && subclass == SubclassChampion {
		switch {
		case level >= 15:
			return 18
		case level >= 3:
			return 19
		}
	}
	return 20
}

func (srdSubclasses) Assassinate(class, subclass string, level int) bool {
	return class == ClassRogue && subclass == SubclassAssassin && level >= 3
}
