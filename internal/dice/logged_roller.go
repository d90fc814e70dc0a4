package dice

import "go.uber.org/zap"

type loggedRoller struct {
	inner  Roller
	logger *zap.Logger
}

// NewLoggedRoller wraps inner and logs every roll at debug level
func NewLoggedRoller(inner Roller, logger *zap.Logger) Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggedRoller{inner: inner, logger: logger}
}

func (l *loggedRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	result, err := l.inner.Roll(count, sides, bonus)
	l.log("roll", result, err)
	return result, err
}

func (l *loggedRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	result, err := l.inner.RollWithAdvantage(sides, bonus)
	l.log("roll with advantage", result, err)
	return result, err
}

func (l *loggedRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	result, err := l.inner.RollWithDisadvantage(sides, bonus)
	l.log("roll with disadvantage", result, err)
	return result, err
}

func (l *loggedRoller) log(msg string, result *RollResult, err error) {
	if err != nil {
		l.logger.Debug(msg+" failed", zap.Error(err))
		return
	}
	l.logger.Debug(msg,
		zap.Int("count", result.Count),
		zap.Int("sides", result.Sides),
		zap.Ints("rolls", result.Rolls),
		zap.Int("bonus", result.Bonus),
		zap.Int("total", result.Total),
	)
}
