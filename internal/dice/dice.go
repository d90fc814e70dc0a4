package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a parsed dice notation such as "2d6+3"
type Expression struct {
	Count int `json:"count" yaml:"count"`
	Sides int `json:"sides" yaml:"sides"`
	Bonus int `json:"bonus" yaml:"bonus"`
}

// IsZero reports whether the expression rolls nothing and adds nothing
func (e Expression) IsZero() bool {
	return e.Count == 0 && e.Bonus == 0
}

func (e Expression) String() string {
	if e.Count == 0 {
		return strconv.Itoa(e.Bonus)
	}
	s := fmt.Sprintf("%dd%d", e.Count, e.Sides)
	switch {
	case e.Bonus > 0:
		s += "+" + strconv.Itoa(e.Bonus)
	case e.Bonus < 0:
		s += strconv.Itoa(e.Bonus)
	}
	return s
}

// MarshalText renders the expression in dice notation
func (e Expression) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses dice notation
func (e *Expression) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Parse reads notation like "1d8", "2d6+3", "1d4-1" or a flat "5".
func Parse(notation string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(notation, " ", ""))
	if s == "" {
		return Expression{}, fmt.Errorf("invalid dice string %q", notation)
	}

	var expr Expression
	dicePart := s
	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		bonus, err := strconv.Atoi(s[i:])
		if err != nil {
			return Expression{}, fmt.Errorf("invalid dice string %q", notation)
		}
		expr.Bonus = bonus
		dicePart = s[:i]
	}

	parts := strings.Split(dicePart, "d")
	switch len(parts) {
	case 1:
		flat, err := strconv.Atoi(parts[0])
		if err != nil {
			return Expression{}, fmt.Errorf("invalid dice string %q", notation)
		}
		expr.Bonus += flat
		return expr, nil
	case 2:
	default:
		return Expression{}, fmt.Errorf("invalid dice string %q", notation)
	}

	count := 1
	if parts[0] != "" {
		c, err := strconv.Atoi(parts[0])
		if err != nil {
			return Expression{}, fmt.Errorf("invalid dice string %q", notation)
		}
		count = c
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil || sides < 1 || count < 0 {
		return Expression{}, fmt.Errorf("invalid dice string %q", notation)
	}

	expr.Count = count
	expr.Sides = sides
	return expr, nil
}

// MustParse is Parse for literals known to be valid
func MustParse(notation string) Expression {
	expr, err := Parse(notation)
	if err != nil {
		panic(err)
	}
	return expr
}

// RollExpression rolls expr with roller. A flat expression rolls nothing.
func RollExpression(roller Roller, expr Expression) (*RollResult, error) {
	if expr.Count == 0 {
		return &RollResult{Total: expr.Bonus, Bonus: expr.Bonus}, nil
	}
	return roller.Roll(expr.Count, expr.Sides, expr.Bonus)
}
